package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

type fakeDescuadresRepo struct {
	fakeCajaRepo
	agregados     []dto.DescuadreCajero
	registros     []model.RegistroCaja
	turnos        []dto.ResumenTurno
	totalesVentas dto.TotalesVentas
	desglose      []dto.ConvenioDesglose
}

func (f *fakeDescuadresRepo) AgregadosPorCajero(_ context.Context, _ dto.FiltroDescuadres) ([]dto.DescuadreCajero, error) {
	return f.agregados, nil
}

func (f *fakeDescuadresRepo) PorCajeros(_ context.Context, cedulas []string, _ dto.FiltroDescuadres) ([]model.RegistroCaja, error) {
	pedidas := make(map[string]bool, len(cedulas))
	for _, c := range cedulas {
		pedidas[c] = true
	}
	var out []model.RegistroCaja
	for _, r := range f.registros {
		if r.CajeroCedula != nil && pedidas[*r.CajeroCedula] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDescuadresRepo) ResumenPorTurno(_ context.Context, _ dto.FiltroDescuadres) ([]dto.ResumenTurno, error) {
	return f.turnos, nil
}

func (f *fakeDescuadresRepo) TotalesVentas(_ context.Context, _ dto.FiltroDescuadres) (dto.TotalesVentas, error) {
	return f.totalesVentas, nil
}

func (f *fakeDescuadresRepo) ConveniosDesglose(_ context.Context, _ dto.FiltroDescuadres) ([]dto.ConvenioDesglose, error) {
	return f.desglose, nil
}

func agregado(cedula, nombre string, faltTotal int64, faltCount int64, sobTotal int64, sobCount int64) dto.DescuadreCajero {
	return dto.DescuadreCajero{
		CajeroCedula:   cedula,
		CajeroNombre:   nombre,
		FaltantesCount: faltCount,
		FaltantesTotal: decimal.NewFromInt(faltTotal),
		SobrantesCount: sobCount,
		SobrantesTotal: decimal.NewFromInt(sobTotal),
		TotalRegistros: faltCount + sobCount,
		Neto:           decimal.NewFromInt(faltTotal + sobTotal),
	}
}

func rango() dto.FiltroDescuadres {
	return dto.FiltroDescuadres{Desde: "2026-04-01", Hasta: "2026-04-30"}
}

func TestTopEntregaAmbasListasEnUnaLlamada(t *testing.T) {
	// Un cajero con turnos de -500, -300 y +200: los faltantes y sobrantes
	// se acumulan por separado, nunca se cancelan entre sí, y una sola
	// llamada trae ambos rankings.
	repo := &fakeDescuadresRepo{
		agregados: []dto.DescuadreCajero{
			agregado("111", "Ana", -800, 2, 200, 1),
		},
	}
	svc := NewDescuadresService(repo)

	top, err := svc.Top(context.Background(), 10, rango())
	require.NoError(t, err)

	require.Len(t, top.Faltantes, 1)
	assert.True(t, top.Faltantes[0].FaltantesTotal.Equal(decimal.NewFromInt(-800)))
	assert.EqualValues(t, 2, top.Faltantes[0].FaltantesCount)
	require.Len(t, top.Sobrantes, 1)
	assert.True(t, top.Sobrantes[0].SobrantesTotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, top.Totales.SobrantesTotal.Equal(decimal.NewFromInt(200)))
	assert.EqualValues(t, 1, top.Totales.SobrantesCount)
	assert.True(t, top.Totales.Neto.Equal(decimal.NewFromInt(-600)))
}

func TestTopOrdenaPorMagnitud(t *testing.T) {
	repo := &fakeDescuadresRepo{
		agregados: []dto.DescuadreCajero{
			agregado("111", "Ana", -500, 1, 0, 0),
			agregado("222", "Luis", -12000, 3, 0, 0),
			agregado("333", "Rosa", -2000, 2, 0, 0),
			agregado("444", "Solo sobrantes", 0, 0, 900, 1),
		},
	}
	svc := NewDescuadresService(repo)

	top, err := svc.Top(context.Background(), 10, rango())
	require.NoError(t, err)

	require.Len(t, top.Faltantes, 3, "quien nunca tuvo faltante no entra al ranking")
	assert.Equal(t, "222", top.Faltantes[0].CajeroCedula)
	assert.Equal(t, "333", top.Faltantes[1].CajeroCedula)
	assert.Equal(t, "111", top.Faltantes[2].CajeroCedula)
	require.Len(t, top.Sobrantes, 1)
	assert.Equal(t, "444", top.Sobrantes[0].CajeroCedula)
}

func TestTopDesempataPorFrecuencia(t *testing.T) {
	repo := &fakeDescuadresRepo{
		agregados: []dto.DescuadreCajero{
			agregado("111", "Ana", -3000, 1, 0, 0),
			agregado("222", "Luis", -3000, 4, 0, 0),
		},
	}
	svc := NewDescuadresService(repo)

	top, err := svc.Top(context.Background(), 10, rango())
	require.NoError(t, err)

	require.Len(t, top.Faltantes, 2)
	assert.Equal(t, "222", top.Faltantes[0].CajeroCedula,
		"a igual magnitud gana quien más veces descuadró")
}

func TestTopRespetaLimite(t *testing.T) {
	repo := &fakeDescuadresRepo{
		agregados: []dto.DescuadreCajero{
			agregado("111", "Ana", -100, 1, 0, 0),
			agregado("222", "Luis", -200, 1, 0, 0),
			agregado("333", "Rosa", -300, 1, 0, 0),
		},
	}
	svc := NewDescuadresService(repo)

	top, err := svc.Top(context.Background(), 2, rango())
	require.NoError(t, err)

	assert.Len(t, top.Faltantes, 2)
	// Los totales cubren el universo filtrado completo, no solo el top.
	assert.True(t, top.Totales.FaltantesTotal.Equal(decimal.NewFromInt(-600)))
}

func TestTopOrdenaSobrantesIndependiente(t *testing.T) {
	repo := &fakeDescuadresRepo{
		agregados: []dto.DescuadreCajero{
			agregado("111", "Ana", -500, 1, 7000, 2),
			agregado("222", "Luis", 0, 0, 1000, 1),
		},
	}
	svc := NewDescuadresService(repo)

	top, err := svc.Top(context.Background(), 10, rango())
	require.NoError(t, err)

	require.Len(t, top.Sobrantes, 2)
	assert.Equal(t, "111", top.Sobrantes[0].CajeroCedula)
	require.Len(t, top.Faltantes, 1, "quien nunca tuvo faltante no entra a esa lista")
	assert.Equal(t, "111", top.Faltantes[0].CajeroCedula)
}

func TestTopAcotaLimite(t *testing.T) {
	var agregados []dto.DescuadreCajero
	for i := 0; i < 120; i++ {
		agregados = append(agregados, agregado("c", "n", int64(-100-i), 1, 0, 0))
	}
	svc := NewDescuadresService(&fakeDescuadresRepo{agregados: agregados})

	top, err := svc.Top(context.Background(), 5000, rango())
	require.NoError(t, err)
	assert.Len(t, top.Faltantes, 100, "el límite se acota a 100")

	top, err = svc.Top(context.Background(), 0, rango())
	require.NoError(t, err)
	assert.Len(t, top.Faltantes, 10, "sin límite válido aplica el defecto")
}

func TestRegistrosPorCajeros(t *testing.T) {
	cedulaAna := "111"
	repo := &fakeDescuadresRepo{
		registros: []model.RegistroCaja{
			{ID: 1, CajeroCedula: &cedulaAna},
			{ID: 2, CajeroCedula: &cedulaAna},
		},
	}
	svc := NewDescuadresService(repo)

	porCedula, err := svc.RegistrosPorCajeros(context.Background(), []string{"111", "999"}, rango())
	require.NoError(t, err)

	require.Len(t, porCedula, 2)
	assert.Len(t, porCedula["111"], 2)
	assert.Empty(t, porCedula["999"], "la cédula sin registros aparece con lista vacía")
}

func TestRegistrosPorCajerosSinCedulas(t *testing.T) {
	svc := NewDescuadresService(&fakeDescuadresRepo{})
	porCedula, err := svc.RegistrosPorCajeros(context.Background(), nil, rango())
	require.NoError(t, err)
	assert.Empty(t, porCedula)
}

func TestResumenTurnosTotaliza(t *testing.T) {
	repo := &fakeDescuadresRepo{
		turnos: []dto.ResumenTurno{
			{
				Turno:            "A",
				VentaTotal:       decimal.NewFromInt(300000),
				Efectivo:         decimal.NewFromInt(200000),
				Tarjetas:         decimal.NewFromInt(100000),
				TarjetasCantidad: 8,
				Diferencia:       decimal.NewFromInt(-500),
			},
			{
				Turno:            "B",
				VentaTotal:       decimal.NewFromInt(150000),
				Efectivo:         decimal.NewFromInt(150000),
				TarjetasCantidad: 0,
				Diferencia:       decimal.NewFromInt(200),
			},
		},
	}
	svc := NewDescuadresService(repo)

	resumen, err := svc.ResumenTurnos(context.Background(), rango())
	require.NoError(t, err)

	require.Len(t, resumen.Turnos, 2)
	assert.Equal(t, "total", resumen.Total.Turno)
	assert.True(t, resumen.Total.VentaTotal.Equal(decimal.NewFromInt(450000)))
	assert.True(t, resumen.Total.Efectivo.Equal(decimal.NewFromInt(350000)))
	assert.EqualValues(t, 8, resumen.Total.TarjetasCantidad)
	assert.True(t, resumen.Total.Diferencia.Equal(decimal.NewFromInt(-300)))
}

func TestDesgloseVentasSumaConvenios(t *testing.T) {
	repo := &fakeDescuadresRepo{
		totalesVentas: dto.TotalesVentas{
			VentaTotal: decimal.NewFromInt(500000),
			Efectivo:   decimal.NewFromInt(300000),
			Diferencia: decimal.NewFromInt(-1500),
		},
		desglose: []dto.ConvenioDesglose{
			{Nombre: "Coomeva", Total: decimal.NewFromInt(80000)},
			{Nombre: "Sin nombre", Total: decimal.NewFromInt(20000)},
		},
	}
	svc := NewDescuadresService(repo)

	d, err := svc.DesgloseVentas(context.Background(), rango())
	require.NoError(t, err)

	assert.True(t, d.VentaTotal.Equal(decimal.NewFromInt(500000)))
	assert.True(t, d.Diferencia.Equal(decimal.NewFromInt(-1500)))
	require.Len(t, d.ConveniosDetalle, 2)
	assert.True(t, d.ConveniosTotal.Equal(decimal.NewFromInt(100000)),
		"el total de convenios es la suma del detalle")
}

func TestDesgloseVentasSinConvenios(t *testing.T) {
	svc := NewDescuadresService(&fakeDescuadresRepo{})
	d, err := svc.DesgloseVentas(context.Background(), rango())
	require.NoError(t, err)

	assert.NotNil(t, d.ConveniosDetalle)
	assert.Empty(t, d.ConveniosDetalle)
	assert.True(t, d.ConveniosTotal.IsZero())
}

func TestResumenTurnosVacio(t *testing.T) {
	svc := NewDescuadresService(&fakeDescuadresRepo{})
	resumen, err := svc.ResumenTurnos(context.Background(), rango())
	require.NoError(t, err)

	assert.Empty(t, resumen.Turnos)
	assert.True(t, resumen.Total.VentaTotal.IsZero())
}
