package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
)

type fakeDescuadresService struct {
	ultimoLimite int
	top          service.TopDescuadres
	desglose     service.DesgloseVentas
}

func (f *fakeDescuadresService) Top(_ context.Context, limite int, _ dto.FiltroDescuadres) (*service.TopDescuadres, error) {
	f.ultimoLimite = limite
	return &f.top, nil
}

func (f *fakeDescuadresService) RegistrosPorCajeros(context.Context, []string, dto.FiltroDescuadres) (map[string][]model.RegistroCaja, error) {
	return map[string][]model.RegistroCaja{}, nil
}

func (f *fakeDescuadresService) ResumenTurnos(context.Context, dto.FiltroDescuadres) (*service.ResumenTurnos, error) {
	return &service.ResumenTurnos{}, nil
}

func (f *fakeDescuadresService) DesgloseVentas(context.Context, dto.FiltroDescuadres) (*service.DesgloseVentas, error) {
	return &f.desglose, nil
}

func montarDescuadres(svc service.DescuadresService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDescuadresHandler(svc)
	r.GET("/v1/descuadres/top", h.Top)
	r.GET("/v1/metricas/desglose-ventas", h.DesgloseVentas)
	return r
}

func TestTopRespondeAmbasListas(t *testing.T) {
	fake := &fakeDescuadresService{
		top: service.TopDescuadres{
			Faltantes: []dto.DescuadreCajero{{CajeroCedula: "111"}},
			Sobrantes: []dto.DescuadreCajero{{CajeroCedula: "222"}},
		},
	}
	r := montarDescuadres(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/descuadres/top?from=2026-04-01&to=2026-04-30", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "faltantes")
	assert.Contains(t, resp, "sobrantes")
	assert.Contains(t, resp, "totales")
	assert.Equal(t, 10, fake.ultimoLimite, "sin query el límite por defecto es 10")
}

func TestTopPasaLimiteDeQuery(t *testing.T) {
	fake := &fakeDescuadresService{}
	r := montarDescuadres(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/descuadres/top?from=2026-04-01&to=2026-04-30&limite=25", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, fake.ultimoLimite)
}

func TestDesgloseVentasResponde(t *testing.T) {
	fake := &fakeDescuadresService{
		desglose: service.DesgloseVentas{
			TotalesVentas: dto.TotalesVentas{VentaTotal: decimal.NewFromInt(500000)},
			ConveniosDetalle: []dto.ConvenioDesglose{
				{Nombre: "Coomeva", Total: decimal.NewFromInt(80000)},
			},
			ConveniosTotal: decimal.NewFromInt(80000),
		},
	}
	r := montarDescuadres(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/metricas/desglose-ventas?from=2026-04-01&to=2026-04-30", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "ventaTotal")
	assert.Contains(t, resp, "conveniosTotal")
	assert.Contains(t, resp, "conveniosDetalle")
}
