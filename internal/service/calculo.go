package service

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DatosCaja are the declared payment streams of one shift. Counts travel with
// the amounts but do not participate in the reconciliation arithmetic.
type DatosCaja struct {
	VentaTotalRegistrada  decimal.Decimal
	EfectivoEnCaja        decimal.Decimal
	Tarjetas              decimal.Decimal
	TarjetasCantidad      int
	Convenios             decimal.Decimal
	ConveniosCantidad     int
	BonosSodexo           decimal.Decimal
	BonosSodexoCantidad   int
	PagosInternos         decimal.Decimal
	PagosInternosCantidad int
}

// ResultadoCaja is the derived reconciliation of a declaration.
type ResultadoCaja struct {
	ValorConsignar   decimal.Decimal `json:"valorAConsignar"`
	DineroRegistrado decimal.Decimal `json:"dineroRegistrado"`
	Diferencia       decimal.Decimal `json:"diferencia"`
	Estado           string          `json:"estado"`
}

var (
	umbralFirma       = decimal.NewFromInt(-1000)
	umbralExplicacion = decimal.NewFromInt(5000)

	impresoraCOP = message.NewPrinter(language.MustParse("es-CO"))
)

// formatearCOP renders a monetary value as an integer-grouped es-CO string.
// Only the display string is rounded; the underlying decimals are untouched.
func formatearCOP(v decimal.Decimal) string {
	f, _ := v.Float64()
	return impresoraCOP.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(0)))
}

// CalcularCaja reconciles a declaration. Pure and total: every input is already
// a decimal (absent payload fields default to zero upstream), so this cannot fail.
//
//	valorConsignar   = efectivo
//	dineroRegistrado = efectivo + tarjetas + convenios + bonos − pagosInternos
//	diferencia       = dineroRegistrado − ventaTotalRegistrada
func CalcularCaja(datos DatosCaja) ResultadoCaja {
	valorConsignar := datos.EfectivoEnCaja
	dineroRegistrado := datos.EfectivoEnCaja.
		Add(datos.Tarjetas).
		Add(datos.Convenios).
		Add(datos.BonosSodexo).
		Sub(datos.PagosInternos)

	diferencia := dineroRegistrado.Sub(datos.VentaTotalRegistrada)

	estado := "Caja OK"
	switch {
	case diferencia.IsNegative():
		estado = "Caja corta (" + formatearCOP(diferencia) + ")"
		if diferencia.LessThan(umbralFirma) {
			estado += " - Por favor, firmar descuento"
		}
	case diferencia.IsPositive():
		estado = "Caja pasada en (" + formatearCOP(diferencia) + ")"
		if diferencia.GreaterThan(umbralExplicacion) {
			estado += " - Por favor, explique por qué está pasada la caja"
		}
	}

	return ResultadoCaja{
		ValorConsignar:   valorConsignar,
		DineroRegistrado: dineroRegistrado,
		Diferencia:       diferencia,
		Estado:           estado,
	}
}
