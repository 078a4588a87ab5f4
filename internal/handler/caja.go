package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chucho2278/subvalle-control-caja/internal/apierror"
	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/middleware"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Registrar creates one end-of-shift declaration and returns the derived
// totals so the cashier sees the verdict immediately.
func (h *CajaHandler) Registrar(c *gin.Context) {
	body, ok := bindPayload(c)
	if !ok {
		return
	}

	id, resultado, err := h.svc.Registrar(c.Request.Context(), body, metaDesdeContexto(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"mensaje":   "Registro guardado correctamente",
		"id":        id,
		"resultado": resultado,
	})
}

// Obtener returns one declaration with its agreement line items.
func (h *CajaHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	registro, convenios, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"registro":  registro,
		"convenios": convenios,
	})
}

// Actualizar applies a partial amendment and returns the recomputed totals
// together with the stored row.
func (h *CajaHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	body, ok := bindPayload(c)
	if !ok {
		return
	}

	resultado, registro, err := h.svc.ActualizarParcial(c.Request.Context(), id, body, metaDesdeContexto(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje":   "Registro actualizado correctamente",
		"resultado": resultado,
		"registro":  registro,
	})
}

// Eliminar removes a declaration and its line items.
func (h *CajaHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ok, err := h.svc.Eliminar(c.Request.Context(), id, metaDesdeContexto(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Registro no encontrado"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Registro eliminado correctamente",
		"id":      id,
	})
}

// Listar returns a paginated listing. Cashiers only ever see their own
// branch regardless of what they ask for; admins filter freely.
func (h *CajaHandler) Listar(c *gin.Context) {
	f, ok := filtroCajasDesdeQuery(c)
	if !ok {
		return
	}
	forzarAmbitoCajero(c, &f.Restaurante, &f.SucursalIDs)

	registros, total, err := h.svc.Listar(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"registros": registros,
		"total":     total,
		"page":      f.Page,
		"limit":     f.Limit,
	})
}

// ── Query parsing ─────────────────────────────────────────────────────────────

const formatoDia = "2006-01-02"

func filtroCajasDesdeQuery(c *gin.Context) (dto.FiltroCajas, bool) {
	f := dto.FiltroCajas{}

	desde, hasta, ok := rangoFechasDesdeQuery(c)
	if !ok {
		return f, false
	}
	f.Desde, f.Hasta = desde, hasta

	if r := strings.TrimSpace(c.Query("restaurante")); r != "" {
		f.Restaurante = &r
	}
	f.Turnos = listaCadenas(c.Query("turnos"))

	ids, ok := listaIDs(c, c.Query("sucursal_ids"))
	if !ok {
		return f, false
	}
	f.SucursalIDs = ids

	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	return f, true
}

// rangoFechasDesdeQuery resolves fecha (single day) or from/to (range, capped
// at three calendar months). Without either, it reports yesterday and today.
func rangoFechasDesdeQuery(c *gin.Context) (string, string, bool) {
	if fecha := c.Query("fecha"); fecha != "" {
		if _, err := time.Parse(formatoDia, fecha); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Fecha invalida, use YYYY-MM-DD"))
			return "", "", false
		}
		return fecha, fecha, true
	}

	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		hoy := time.Now()
		return hoy.AddDate(0, 0, -1).Format(formatoDia), hoy.Format(formatoDia), true
	}
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, apierror.New("from y to deben enviarse juntos"))
		return "", "", false
	}

	fDesde, err := time.Parse(formatoDia, from)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Fecha 'from' invalida, use YYYY-MM-DD"))
		return "", "", false
	}
	fHasta, err := time.Parse(formatoDia, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Fecha 'to' invalida, use YYYY-MM-DD"))
		return "", "", false
	}
	if fHasta.Before(fDesde) {
		c.JSON(http.StatusBadRequest, apierror.New("El rango de fechas esta invertido"))
		return "", "", false
	}
	// Cap: to may reach at most the last day of the third month counted
	// from the month of from.
	maxHasta := time.Date(fDesde.Year(), fDesde.Month()+3, 0, 0, 0, 0, 0, time.UTC)
	if fHasta.After(maxHasta) {
		c.JSON(http.StatusBadRequest, apierror.New("El rango maximo de consulta es de 3 meses"))
		return "", "", false
	}
	return from, to, true
}

func listaCadenas(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func listaIDs(c *gin.Context, raw string) ([]uint, bool) {
	if raw == "" {
		return nil, true
	}
	var out []uint
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("sucursal_ids invalido"))
			return nil, false
		}
		out = append(out, uint(id))
	}
	return out, true
}

// forzarAmbitoCajero overwrites the branch filters with the caller's own scope
// when the token carries the cashier role.
func forzarAmbitoCajero(c *gin.Context, restaurante **string, sucursalIDs *[]uint) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Rol != "cajero" {
		return
	}
	*restaurante = claims.Restaurante
	if claims.SucursalID != nil {
		*sucursalIDs = []uint{*claims.SucursalID}
	} else {
		*sucursalIDs = nil
	}
}
