package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

// AuditoriaConUsuario is a listed audit row joined with the actor's name.
type AuditoriaConUsuario struct {
	model.Auditoria
	UsuarioNombre *string `gorm:"column:usuario_nombre" json:"usuario_nombre"`
}

type AuditoriaRepository interface {
	Insertar(ctx context.Context, a *model.Auditoria) error
	Listar(ctx context.Context, f dto.FiltroAuditorias, page, limit int) ([]AuditoriaConUsuario, int64, error)
	Acciones(ctx context.Context) ([]string, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Insertar(ctx context.Context, a *model.Auditoria) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditoriaRepo) Listar(ctx context.Context, f dto.FiltroAuditorias, page, limit int) ([]AuditoriaConUsuario, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Auditoria{})
	if f.UsuarioID != nil {
		base = base.Where("auditorias.usuario_id = ?", *f.UsuarioID)
	}
	if f.Recurso != "" {
		base = base.Where("auditorias.recurso LIKE ?", "%"+f.Recurso+"%")
	}
	if f.Accion != "" {
		base = base.Where("auditorias.accion = ?", f.Accion)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []AuditoriaConUsuario
	err := base.
		Select("auditorias.*, usuarios.nombre AS usuario_nombre").
		Joins("LEFT JOIN usuarios ON usuarios.id = auditorias.usuario_id").
		Order("auditorias.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error
	return rows, total, err
}

func (r *auditoriaRepo) Acciones(ctx context.Context) ([]string, error) {
	var acciones []string
	err := r.db.WithContext(ctx).
		Model(&model.Auditoria{}).
		Distinct("accion").
		Order("accion").
		Pluck("accion", &acciones).Error
	return acciones, err
}
