package model

import "time"

// Auditoria is an append-only audit log row. The core only ever inserts;
// rows are never updated or deleted.
type Auditoria struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UsuarioID *uint     `gorm:"index" json:"usuario_id"`
	Accion    string    `gorm:"type:varchar(60);not null;index" json:"accion"`
	Recurso   *string   `gorm:"type:varchar(60);index" json:"recurso"`
	RecursoID *uint     `json:"recurso_id"`
	// Detalle is an opaque serialized payload: a creation snapshot, a change-set,
	// or a free-form note. Consumers interpret it best-effort.
	Detalle   *string   `gorm:"type:text" json:"detalle"`
	IP        *string   `gorm:"type:varchar(64);column:ip" json:"ip"`
	UserAgent *string   `gorm:"type:varchar(255)" json:"user_agent"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Auditoria) TableName() string { return "auditorias" }
