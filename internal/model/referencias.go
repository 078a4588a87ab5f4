package model

import "time"

// Sucursal is a branch master record. The core only needs (id → nombre).
type Sucursal struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nombre       string    `gorm:"type:varchar(120);not null" json:"nombre"`
	NumeroTienda *string   `gorm:"type:varchar(20)" json:"numero_tienda"`
	Direccion    *string   `gorm:"type:varchar(200)" json:"direccion"`
	CreadoEn     time.Time `gorm:"autoCreateTime" json:"creado_en"`
}

func (Sucursal) TableName() string { return "sucursales" }

// Convenio is an agreement master record (e.g. a corporate meal-voucher scheme).
type Convenio struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nombre        string    `gorm:"type:varchar(120);not null" json:"nombre"`
	CreadoEn      time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (Convenio) TableName() string { return "convenios" }

// Usuario is the authenticated actor; identity issuance lives elsewhere.
// The core reads it only to attribute audit entries.
type Usuario struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Nombre      string  `gorm:"type:varchar(120);not null" json:"nombre"`
	Rol         string  `gorm:"type:varchar(20);not null" json:"rol"` // cajero | administrador
	Restaurante *string `gorm:"type:varchar(120)" json:"restaurante"`
	SucursalID  *uint   `json:"sucursal_id"`
}

func (Usuario) TableName() string { return "usuarios" }
