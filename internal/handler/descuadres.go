package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

type DescuadresHandler struct{ svc service.DescuadresService }

func NewDescuadresHandler(svc service.DescuadresService) *DescuadresHandler {
	return &DescuadresHandler{svc: svc}
}

// Top ranks cashiers by accumulated shortage and overage over the range.
// Both lists come back in one response, each capped at limite.
func (h *DescuadresHandler) Top(c *gin.Context) {
	f, ok := filtroDescuadresDesdeQuery(c)
	if !ok {
		return
	}
	forzarAmbitoCajero(c, &f.Restaurante, &f.SucursalIDs)

	// El servicio acota el límite a [1, 100]; aquí solo se parsea.
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "10"))

	top, err := h.svc.Top(c.Request.Context(), limite, f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

// Registros is the drill-down: the raw declarations behind the ranking for
// the requested cashiers, keyed by cedula.
func (h *DescuadresHandler) Registros(c *gin.Context) {
	f, ok := filtroDescuadresDesdeQuery(c)
	if !ok {
		return
	}
	forzarAmbitoCajero(c, &f.Restaurante, &f.SucursalIDs)

	cedulas := listaCadenas(c.Query("cedulas"))
	porCedula, err := h.svc.RegistrosPorCajeros(c.Request.Context(), cedulas, f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registros": porCedula})
}

// DesgloseVentas sums the declared amounts over the range and breaks the
// agreement bucket down by snapshotted agreement name.
func (h *DescuadresHandler) DesgloseVentas(c *gin.Context) {
	f, ok := filtroDescuadresDesdeQuery(c)
	if !ok {
		return
	}
	forzarAmbitoCajero(c, &f.Restaurante, &f.SucursalIDs)

	desglose, err := h.svc.DesgloseVentas(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, desglose)
}

// ResumenTurnos aggregates the declared amounts per shift label.
func (h *DescuadresHandler) ResumenTurnos(c *gin.Context) {
	f, ok := filtroDescuadresDesdeQuery(c)
	if !ok {
		return
	}
	forzarAmbitoCajero(c, &f.Restaurante, &f.SucursalIDs)

	resumen, err := h.svc.ResumenTurnos(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resumen)
}

func filtroDescuadresDesdeQuery(c *gin.Context) (dto.FiltroDescuadres, bool) {
	f := dto.FiltroDescuadres{}

	desde, hasta, ok := rangoFechasDesdeQuery(c)
	if !ok {
		return f, false
	}
	f.Desde, f.Hasta = desde, hasta

	if r := strings.TrimSpace(c.Query("restaurante")); r != "" {
		f.Restaurante = &r
	}
	ids, ok := listaIDs(c, c.Query("sucursal_ids"))
	if !ok {
		return f, false
	}
	f.SucursalIDs = ids
	return f, true
}
