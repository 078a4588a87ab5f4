package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistroCaja is one cashier's end-of-shift cash declaration.
// Turno: "A" | "B" | "C" | "D"
// The derived columns (valor_consignar, dinero_registrado, diferencia, estado)
// are written by the reconciliation calculation, never by the caller.
type RegistroCaja struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Restaurante keeps the free-text branch name; legacy rows carry only this,
	// newer rows also reference a Sucursal.
	Restaurante   *string   `gorm:"type:varchar(120);index" json:"restaurante"`
	SucursalID    *uint     `gorm:"index" json:"sucursal_id"`
	Turno         string    `gorm:"type:varchar(1);not null;index" json:"turno"`
	FechaRegistro time.Time `gorm:"not null;index" json:"fecha_registro"`

	VentaTotalRegistrada  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"venta_total_registrada"`
	EfectivoEnCaja        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"efectivo_en_caja"`
	Tarjetas              decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"tarjetas"`
	TarjetasCantidad      int             `gorm:"not null;default:0" json:"tarjetas_cantidad"`
	Convenios             decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"convenios"`
	ConveniosCantidad     int             `gorm:"not null;default:0" json:"convenios_cantidad"`
	BonosSodexo           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"bonos_sodexo"`
	BonosSodexoCantidad   int             `gorm:"not null;default:0" json:"bonos_sodexo_cantidad"`
	PagosInternos         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"pagos_internos"`
	PagosInternosCantidad int             `gorm:"not null;default:0" json:"pagos_internos_cantidad"`

	ValorConsignar   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"valor_consignar"`
	DineroRegistrado decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"dinero_registrado"`
	Diferencia       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"diferencia"`
	Estado           string          `gorm:"type:varchar(160)" json:"estado"`

	Observacion  *string `gorm:"type:text" json:"observacion"`
	CajeroNombre *string `gorm:"type:varchar(120);index" json:"cajero_nombre"`
	CajeroCedula *string `gorm:"type:varchar(40);index" json:"cajero_cedula"`

	CreadoEn time.Time `gorm:"autoCreateTime" json:"creado_en"`

	ConveniosItems []RegistroConvenio `gorm:"foreignKey:RegistroCajaID" json:"-"`
}

func (RegistroCaja) TableName() string { return "registro_caja" }

// RegistroConvenio is one named agreement's contribution inside a declaration.
// Rows cannot outlive their RegistroCaja: they are inserted wholesale on create,
// fully replaced on amendment, and deleted first on removal, always inside the
// same transaction as the parent row.
type RegistroConvenio struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	RegistroCajaID uint  `gorm:"not null;index" json:"registro_caja_id"`
	ConvenioID     *uint `gorm:"index" json:"convenio_id"`
	// NombreConvenio is a denormalized snapshot; it keeps the name the agreement
	// had when the declaration was made, even if the master record changes later.
	NombreConvenio *string         `gorm:"type:varchar(120)" json:"nombre_convenio"`
	Cantidad       int             `gorm:"not null;default:0" json:"cantidad"`
	Valor          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"valor"`
	CreadoEn       time.Time       `gorm:"autoCreateTime" json:"creado_en"`
}

func (RegistroConvenio) TableName() string { return "registro_convenios" }
