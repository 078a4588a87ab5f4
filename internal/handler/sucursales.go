package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chucho2278/subvalle-control-caja/internal/apierror"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

type SucursalesHandler struct{ svc service.SucursalService }

func NewSucursalesHandler(svc service.SucursalService) *SucursalesHandler {
	return &SucursalesHandler{svc: svc}
}

type sucursalRequest struct {
	Nombre       *string `json:"nombre" validate:"omitempty,min=1,max=120"`
	NumeroTienda *string `json:"numero_tienda" validate:"omitempty,max=20"`
	Direccion    *string `json:"direccion" validate:"omitempty,max=200"`
}

func (h *SucursalesHandler) Crear(c *gin.Context) {
	var req sucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	suc, err := h.svc.Crear(c.Request.Context(), service.SucursalInput(req), metaDesdeContexto(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, suc)
}

func (h *SucursalesHandler) Listar(c *gin.Context) {
	sucursales, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sucursales": sucursales})
}

func (h *SucursalesHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req sucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	suc, err := h.svc.Actualizar(c.Request.Context(), id, service.SucursalInput(req), metaDesdeContexto(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, suc)
}

func (h *SucursalesHandler) Eliminar(c *gin.Context) {
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
		c.JSON(http.StatusNotFound, apierror.New("Sucursal no encontrada"))
		return
	}
	c.Status(http.StatusNoContent)
}
