package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

type ConvenioRepository interface {
	Crear(ctx context.Context, c *model.Convenio) error
	Listar(ctx context.Context) ([]model.Convenio, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Convenio, error)
	Actualizar(ctx context.Context, id uint, nombre string) (bool, error)
	Eliminar(ctx context.Context, id uint) (bool, error)
}

type convenioRepo struct{ db *gorm.DB }

func NewConvenioRepository(db *gorm.DB) ConvenioRepository { return &convenioRepo{db: db} }

func (r *convenioRepo) Crear(ctx context.Context, c *model.Convenio) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *convenioRepo) Listar(ctx context.Context) ([]model.Convenio, error) {
	var convenios []model.Convenio
	err := r.db.WithContext(ctx).Order("nombre").Find(&convenios).Error
	return convenios, err
}

func (r *convenioRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Convenio, error) {
	var c model.Convenio
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *convenioRepo) Actualizar(ctx context.Context, id uint, nombre string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Convenio{}).
		Where("id = ?", id).
		Update("nombre", nombre)
	return res.RowsAffected > 0, res.Error
}

func (r *convenioRepo) Eliminar(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Convenio{}, id)
	return res.RowsAffected > 0, res.Error
}
