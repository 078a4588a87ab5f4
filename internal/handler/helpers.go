package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Chucho2278/subvalle-control-caja/internal/apierror"
	"github.com/Chucho2278/subvalle-control-caja/internal/audit"
	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/middleware"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindPayload decodes a free-form declaration body. UseNumber keeps money
// fields as json.Number so amounts reach the decimal layer without a float
// round trip.
func bindPayload(c *gin.Context) (dto.Payload, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var body dto.Payload
	if err := dec.Decode(&body); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return nil, false
	}
	return body, true
}

// metaDesdeContexto collects the actor attribution for the audit trail:
// authenticated user (when any), client IP (first X-Forwarded-For entry wins)
// and user agent.
func metaDesdeContexto(c *gin.Context) audit.Meta {
	meta := audit.Meta{}

	if claims := middleware.GetClaims(c); claims != nil {
		id := claims.UserID
		meta.UsuarioID = &id
	}

	ip := c.ClientIP()
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if primero := strings.TrimSpace(strings.Split(fwd, ",")[0]); primero != "" {
			ip = primero
		}
	}
	if ip != "" {
		meta.IP = &ip
	}
	if ua := c.Request.UserAgent(); ua != "" {
		meta.UserAgent = &ua
	}
	return meta
}

// respondServiceError maps domain errors onto HTTP statuses. Unknown errors
// go through the error-handler middleware as a plain 500.
func respondServiceError(c *gin.Context, err error) {
	var ev *service.ErrValidacion
	switch {
	case errors.As(err, &ev):
		c.JSON(http.StatusBadRequest, apierror.New(ev.Mensaje))
	case errors.Is(err, service.ErrTurnoDuplicado):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrRegistroNoEncontrado),
		errors.Is(err, service.ErrSucursalNoEncontrada),
		errors.Is(err, service.ErrConvenioNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

// paramID parses the :id path segment.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return uint(id), true
}
