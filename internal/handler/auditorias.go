package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

type AuditoriasHandler struct{ svc service.AuditoriaService }

func NewAuditoriasHandler(svc service.AuditoriaService) *AuditoriasHandler {
	return &AuditoriasHandler{svc: svc}
}

// Listar pages through the audit log, newest first.
func (h *AuditoriasHandler) Listar(c *gin.Context) {
	f := dto.FiltroAuditorias{
		Recurso: strings.TrimSpace(c.Query("recurso")),
		Accion:  strings.TrimSpace(c.Query("accion")),
	}
	if raw := c.Query("usuario_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			uid := uint(id)
			f.UsuarioID = &uid
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	auditorias, total, err := h.svc.Listar(c.Request.Context(), f, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auditorias": auditorias,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// Acciones lists the distinct action labels, for filter dropdowns.
func (h *AuditoriasHandler) Acciones(c *gin.Context) {
	acciones, err := h.svc.Acciones(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acciones": acciones})
}
