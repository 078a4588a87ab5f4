package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chucho2278/subvalle-control-caja/internal/apierror"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

type ConveniosHandler struct{ svc service.ConvenioService }

func NewConveniosHandler(svc service.ConvenioService) *ConveniosHandler {
	return &ConveniosHandler{svc: svc}
}

type convenioRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=120"`
}

func (h *ConveniosHandler) Crear(c *gin.Context) {
	var req convenioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	conv, err := h.svc.Crear(c.Request.Context(), req.Nombre, metaDesdeContexto(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (h *ConveniosHandler) Listar(c *gin.Context) {
	convenios, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"convenios": convenios})
}

func (h *ConveniosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req convenioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Actualizar(c.Request.Context(), id, req.Nombre, metaDesdeContexto(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Convenio actualizado correctamente"})
}

func (h *ConveniosHandler) Eliminar(c *gin.Context) {
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
		c.JSON(http.StatusNotFound, apierror.New("Convenio no encontrado"))
		return
	}
	c.Status(http.StatusNoContent)
}
