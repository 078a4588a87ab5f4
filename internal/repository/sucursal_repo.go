package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

type SucursalRepository interface {
	Crear(ctx context.Context, s *model.Sucursal) error
	Listar(ctx context.Context) ([]model.Sucursal, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Sucursal, error)
	Actualizar(ctx context.Context, s *model.Sucursal) error
	Eliminar(ctx context.Context, id uint) (bool, error)
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) Crear(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sucursalRepo) Listar(ctx context.Context) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).Order("nombre").Find(&sucursales).Error
	return sucursales, err
}

func (r *sucursalRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Sucursal, error) {
	var s model.Sucursal
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sucursalRepo) Actualizar(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sucursalRepo) Eliminar(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Sucursal{}, id)
	return res.RowsAffected > 0, res.Error
}
