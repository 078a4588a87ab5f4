package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
)

// TopDescuadres son los dos rankings de cajeros por descuadre acumulado en el
// rango — faltantes y sobrantes se ordenan y recortan por separado — junto
// con los totales del universo filtrado (no solo del top).
type TopDescuadres struct {
	Faltantes []dto.DescuadreCajero `json:"faltantes"`
	Sobrantes []dto.DescuadreCajero `json:"sobrantes"`
	Totales   TotalesDescuadre      `json:"totales"`
}

type TotalesDescuadre struct {
	FaltantesTotal decimal.Decimal `json:"faltantes_total"`
	FaltantesCount int64           `json:"faltantes_count"`
	SobrantesTotal decimal.Decimal `json:"sobrantes_total"`
	SobrantesCount int64           `json:"sobrantes_count"`
	Neto           decimal.Decimal `json:"neto"`
}

// ResumenTurnos agrupa por turno y agrega una fila sintética con el total.
type ResumenTurnos struct {
	Turnos []dto.ResumenTurno `json:"turnos"`
	Total  dto.ResumenTurno   `json:"total"`
}

// DesgloseVentas son las sumatorias del rango más el detalle por convenio.
type DesgloseVentas struct {
	dto.TotalesVentas
	ConveniosTotal   decimal.Decimal        `json:"conveniosTotal"`
	ConveniosDetalle []dto.ConvenioDesglose `json:"conveniosDetalle"`
}

type DescuadresService interface {
	Top(ctx context.Context, limite int, f dto.FiltroDescuadres) (*TopDescuadres, error)
	RegistrosPorCajeros(ctx context.Context, cedulas []string, f dto.FiltroDescuadres) (map[string][]model.RegistroCaja, error)
	ResumenTurnos(ctx context.Context, f dto.FiltroDescuadres) (*ResumenTurnos, error)
	DesgloseVentas(ctx context.Context, f dto.FiltroDescuadres) (*DesgloseVentas, error)
}

type descuadresService struct {
	repo repository.CajaRepository
}

func NewDescuadresService(repo repository.CajaRepository) DescuadresService {
	return &descuadresService{repo: repo}
}

const (
	limiteTopDefecto = 10
	limiteTopMaximo  = 100
)

func (s *descuadresService) Top(ctx context.Context, limite int, f dto.FiltroDescuadres) (*TopDescuadres, error) {
	if limite <= 0 {
		limite = limiteTopDefecto
	}
	if limite > limiteTopMaximo {
		limite = limiteTopMaximo
	}

	agregados, err := s.repo.AgregadosPorCajero(ctx, f)
	if err != nil {
		return nil, err
	}

	totales := TotalesDescuadre{}
	for _, a := range agregados {
		totales.FaltantesTotal = totales.FaltantesTotal.Add(a.FaltantesTotal)
		totales.FaltantesCount += a.FaltantesCount
		totales.SobrantesTotal = totales.SobrantesTotal.Add(a.SobrantesTotal)
		totales.SobrantesCount += a.SobrantesCount
	}
	totales.Neto = totales.FaltantesTotal.Add(totales.SobrantesTotal)

	faltantes := topPorMagnitud(agregados, limite,
		func(a dto.DescuadreCajero) decimal.Decimal { return a.FaltantesTotal },
		func(a dto.DescuadreCajero) int64 { return a.FaltantesCount })
	sobrantes := topPorMagnitud(agregados, limite,
		func(a dto.DescuadreCajero) decimal.Decimal { return a.SobrantesTotal },
		func(a dto.DescuadreCajero) int64 { return a.SobrantesCount })

	return &TopDescuadres{
		Faltantes: faltantes,
		Sobrantes: sobrantes,
		Totales:   totales,
	}, nil
}

// topPorMagnitud filtra los cajeros que descuadraron en el balde, los ordena
// por magnitud acumulada y recorta al límite. A igual magnitud gana quien más
// veces descuadró; el empate restante queda estable sobre el orden del repo.
func topPorMagnitud(agregados []dto.DescuadreCajero, limite int,
	total func(dto.DescuadreCajero) decimal.Decimal,
	cuenta func(dto.DescuadreCajero) int64) []dto.DescuadreCajero {

	filtrados := []dto.DescuadreCajero{}
	for _, a := range agregados {
		if cuenta(a) > 0 {
			filtrados = append(filtrados, a)
		}
	}
	sort.SliceStable(filtrados, func(i, j int) bool {
		mi, mj := total(filtrados[i]).Abs(), total(filtrados[j]).Abs()
		if !mi.Equal(mj) {
			return mi.GreaterThan(mj)
		}
		return cuenta(filtrados[i]) > cuenta(filtrados[j])
	})
	if len(filtrados) > limite {
		filtrados = filtrados[:limite]
	}
	return filtrados
}

func (s *descuadresService) DesgloseVentas(ctx context.Context, f dto.FiltroDescuadres) (*DesgloseVentas, error) {
	totales, err := s.repo.TotalesVentas(ctx, f)
	if err != nil {
		return nil, err
	}
	detalle, err := s.repo.ConveniosDesglose(ctx, f)
	if err != nil {
		return nil, err
	}
	if detalle == nil {
		detalle = []dto.ConvenioDesglose{}
	}

	var conveniosTotal decimal.Decimal
	for _, c := range detalle {
		conveniosTotal = conveniosTotal.Add(c.Total)
	}

	return &DesgloseVentas{
		TotalesVentas:    totales,
		ConveniosTotal:   conveniosTotal,
		ConveniosDetalle: detalle,
	}, nil
}

func (s *descuadresService) RegistrosPorCajeros(ctx context.Context, cedulas []string, f dto.FiltroDescuadres) (map[string][]model.RegistroCaja, error) {
	porCedula := make(map[string][]model.RegistroCaja, len(cedulas))
	if len(cedulas) == 0 {
		return porCedula, nil
	}

	registros, err := s.repo.PorCajeros(ctx, cedulas, f)
	if err != nil {
		return nil, err
	}

	// Las cédulas pedidas siempre aparecen como llave, aun sin registros,
	// para que el cliente distinga "sin datos" de "no consultado".
	for _, c := range cedulas {
		porCedula[c] = []model.RegistroCaja{}
	}
	for _, r := range registros {
		if r.CajeroCedula == nil {
			continue
		}
		porCedula[*r.CajeroCedula] = append(porCedula[*r.CajeroCedula], r)
	}
	return porCedula, nil
}

func (s *descuadresService) ResumenTurnos(ctx context.Context, f dto.FiltroDescuadres) (*ResumenTurnos, error) {
	turnos, err := s.repo.ResumenPorTurno(ctx, f)
	if err != nil {
		return nil, err
	}
	if turnos == nil {
		turnos = []dto.ResumenTurno{}
	}

	total := dto.ResumenTurno{Turno: "total"}
	for _, t := range turnos {
		total.VentaTotal = total.VentaTotal.Add(t.VentaTotal)
		total.Efectivo = total.Efectivo.Add(t.Efectivo)
		total.Tarjetas = total.Tarjetas.Add(t.Tarjetas)
		total.TarjetasCantidad += t.TarjetasCantidad
		total.Convenios = total.Convenios.Add(t.Convenios)
		total.ConveniosCantidad += t.ConveniosCantidad
		total.Bonos = total.Bonos.Add(t.Bonos)
		total.BonosCantidad += t.BonosCantidad
		total.PagosInternos = total.PagosInternos.Add(t.PagosInternos)
		total.PagosInternosCantidad += t.PagosInternosCantidad
		total.DineroRegistrado = total.DineroRegistrado.Add(t.DineroRegistrado)
		total.ValorConsignar = total.ValorConsignar.Add(t.ValorConsignar)
		total.Diferencia = total.Diferencia.Add(t.Diferencia)
	}

	return &ResumenTurnos{Turnos: turnos, Total: total}, nil
}
