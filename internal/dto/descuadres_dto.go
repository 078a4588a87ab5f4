package dto

import "github.com/shopspring/decimal"

// FiltroCajas narrows the declaration listing. Desde/Hasta are inclusive
// YYYY-MM-DD bounds over the calendar day of fecha_registro.
type FiltroCajas struct {
	Desde       string
	Hasta       string
	Restaurante *string
	SucursalIDs []uint
	Turnos      []string
	Page        int
	Limit       int
}

// FiltroDescuadres narrows the aggregation and drill-down reads. Both date
// bounds are required; range validation happens at the calling layer.
type FiltroDescuadres struct {
	Desde       string
	Hasta       string
	Restaurante *string
	SucursalIDs []uint
}

// DescuadreCajero is one cashier's aggregated variance over the range.
// FaltantesTotal keeps its sign (negative or zero); SobrantesTotal is
// positive or zero.
type DescuadreCajero struct {
	CajeroCedula   string          `gorm:"column:cajero_cedula" json:"cajero_cedula"`
	CajeroNombre   string          `gorm:"column:cajero_nombre" json:"cajero_nombre"`
	FaltantesCount int64           `gorm:"column:faltantes_count" json:"faltantes_count"`
	FaltantesTotal decimal.Decimal `gorm:"column:faltantes_total" json:"faltantes_total"`
	SobrantesCount int64           `gorm:"column:sobrantes_count" json:"sobrantes_count"`
	SobrantesTotal decimal.Decimal `gorm:"column:sobrantes_total" json:"sobrantes_total"`
	TotalRegistros int64           `gorm:"column:total_registros" json:"total_registros"`
	Neto           decimal.Decimal `gorm:"column:neto" json:"neto"`
}

// ResumenTurno aggregates the declarations of one shift label over the range.
type ResumenTurno struct {
	Turno                 string          `gorm:"column:turno" json:"turno"`
	VentaTotal            decimal.Decimal `gorm:"column:venta_total" json:"ventaTotal"`
	Efectivo              decimal.Decimal `gorm:"column:efectivo" json:"efectivo"`
	Tarjetas              decimal.Decimal `gorm:"column:tarjetas" json:"tarjetas"`
	TarjetasCantidad      int64           `gorm:"column:tarjetas_cantidad" json:"tarjetasCantidad"`
	Convenios             decimal.Decimal `gorm:"column:convenios" json:"convenios"`
	ConveniosCantidad     int64           `gorm:"column:convenios_cantidad" json:"conveniosCantidad"`
	Bonos                 decimal.Decimal `gorm:"column:bonos" json:"bonos"`
	BonosCantidad         int64           `gorm:"column:bonos_cantidad" json:"bonosCantidad"`
	PagosInternos         decimal.Decimal `gorm:"column:pagos_internos" json:"pagosInternos"`
	PagosInternosCantidad int64           `gorm:"column:pagos_internos_cantidad" json:"pagosInternosCantidad"`
	DineroRegistrado      decimal.Decimal `gorm:"column:dinero_registrado" json:"dineroRegistrado"`
	ValorConsignar        decimal.Decimal `gorm:"column:valor_consignar" json:"valorConsignar"`
	Diferencia            decimal.Decimal `gorm:"column:diferencia" json:"diferencia"`
}

// TotalesVentas sums the declared amounts over the whole filtered range.
type TotalesVentas struct {
	VentaTotal    decimal.Decimal `gorm:"column:venta_total" json:"ventaTotal"`
	Efectivo      decimal.Decimal `gorm:"column:efectivo" json:"efectivo"`
	Tarjetas      decimal.Decimal `gorm:"column:tarjetas" json:"tarjetas"`
	Bonos         decimal.Decimal `gorm:"column:bonos" json:"bonos"`
	PagosInternos decimal.Decimal `gorm:"column:pagos_internos" json:"pagosInternos"`
	Diferencia    decimal.Decimal `gorm:"column:diferencia" json:"diferencia"`
}

// ConvenioDesglose is one agreement's accumulated value over the range. The
// name comes from the line-item snapshot, not from the master record.
type ConvenioDesglose struct {
	Nombre string          `gorm:"column:nombre" json:"nombre"`
	Total  decimal.Decimal `gorm:"column:total" json:"total"`
}

// FiltroAuditorias narrows the audit log listing.
type FiltroAuditorias struct {
	UsuarioID *uint
	Recurso   string
	Accion    string
}
