package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

// ErrTurnoDuplicado is returned by Crear when another declaration already holds
// the (sucursal-or-restaurante, turno, día) slot. The advisory lock inside the
// transaction makes this check authoritative even under concurrent inserts.
var ErrTurnoDuplicado = errors.New("turno duplicado")

type CajaRepository interface {
	Crear(ctx context.Context, r *model.RegistroCaja, items []model.RegistroConvenio) error
	ObtenerPorID(ctx context.Context, id uint) (*model.RegistroCaja, error)
	ConveniosDeRegistro(ctx context.Context, id uint) ([]model.RegistroConvenio, error)
	ExisteTurno(ctx context.Context, restaurante *string, sucursalID *uint, turno, dia string) (bool, error)
	Actualizar(ctx context.Context, id uint, cambios map[string]any, items []model.RegistroConvenio, reemplazarItems bool) (bool, error)
	Eliminar(ctx context.Context, id uint) (bool, error)
	Listar(ctx context.Context, f dto.FiltroCajas) ([]model.RegistroCaja, int64, error)
	AgregadosPorCajero(ctx context.Context, f dto.FiltroDescuadres) ([]dto.DescuadreCajero, error)
	PorCajeros(ctx context.Context, cedulas []string, f dto.FiltroDescuadres) ([]model.RegistroCaja, error)
	ResumenPorTurno(ctx context.Context, f dto.FiltroDescuadres) ([]dto.ResumenTurno, error)
	TotalesVentas(ctx context.Context, f dto.FiltroDescuadres) (dto.TotalesVentas, error)
	ConveniosDesglose(ctx context.Context, f dto.FiltroDescuadres) ([]dto.ConvenioDesglose, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

// claveTurno builds the advisory-lock key for one (branch, shift, day) slot.
// Branch identity is the sucursal id when present, the free-text restaurante
// name otherwise — the same precedence the duplicate query uses.
func claveTurno(r *model.RegistroCaja, dia string) string {
	if r.SucursalID != nil {
		return fmt.Sprintf("registro_caja:s%d:%s:%s", *r.SucursalID, r.Turno, dia)
	}
	restaurante := ""
	if r.Restaurante != nil {
		restaurante = *r.Restaurante
	}
	return fmt.Sprintf("registro_caja:r%s:%s:%s", restaurante, r.Turno, dia)
}

// Crear persists the declaration and its agreement lines in one transaction.
// A pg_advisory_xact_lock on the (branch, shift, day) key serializes concurrent
// registrations for the same slot, so the duplicate re-check below cannot race.
func (rp *cajaRepo) Crear(ctx context.Context, r *model.RegistroCaja, items []model.RegistroConvenio) error {
	dia := r.FechaRegistro.Format("2006-01-02")
	return rp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", claveTurno(r, dia)).Error; err != nil {
			return err
		}

		existe, err := existeTurno(tx, r.Restaurante, r.SucursalID, r.Turno, dia)
		if err != nil {
			return err
		}
		if existe {
			return ErrTurnoDuplicado
		}

		if err := tx.Create(r).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].RegistroCajaID = r.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (rp *cajaRepo) ObtenerPorID(ctx context.Context, id uint) (*model.RegistroCaja, error) {
	var r model.RegistroCaja
	err := rp.db.WithContext(ctx).First(&r, id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ConveniosDeRegistro returns the agreement lines ordered by insertion id.
func (rp *cajaRepo) ConveniosDeRegistro(ctx context.Context, id uint) ([]model.RegistroConvenio, error) {
	var items []model.RegistroConvenio
	err := rp.db.WithContext(ctx).
		Where("registro_caja_id = ?", id).
		Order("id").
		Find(&items).Error
	return items, err
}

func (rp *cajaRepo) ExisteTurno(ctx context.Context, restaurante *string, sucursalID *uint, turno, dia string) (bool, error) {
	return existeTurno(rp.db.WithContext(ctx), restaurante, sucursalID, turno, dia)
}

func existeTurno(db *gorm.DB, restaurante *string, sucursalID *uint, turno, dia string) (bool, error) {
	var total int64
	q := db.Model(&model.RegistroCaja{}).
		Where("turno = ? AND DATE(fecha_registro) = ?", turno, dia)
	if sucursalID != nil {
		q = q.Where("sucursal_id = ?", *sucursalID)
	} else {
		q = q.Where("restaurante = ?", restaurante)
	}
	if err := q.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// Actualizar applies only the columns the caller resolved (dynamic column set)
// and, when reemplazarItems is true, swaps the full agreement line set — all in
// one transaction. Returns false without error when the id does not exist.
func (rp *cajaRepo) Actualizar(ctx context.Context, id uint, cambios map[string]any, items []model.RegistroConvenio, reemplazarItems bool) (bool, error) {
	err := rp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cambios) > 0 {
			res := tx.Model(&model.RegistroCaja{}).Where("id = ?", id).Updates(cambios)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		} else {
			var existente model.RegistroCaja
			if err := tx.Select("id").First(&existente, id).Error; err != nil {
				return err
			}
		}

		if reemplazarItems {
			if err := tx.Where("registro_caja_id = ?", id).Delete(&model.RegistroConvenio{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].RegistroCajaID = id
				items[i].ID = 0
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Eliminar removes the declaration and its lines; child rows go first so the
// session can never outlive a partial delete. Returns false when no row existed.
func (rp *cajaRepo) Eliminar(ctx context.Context, id uint) (bool, error) {
	var borrado bool
	err := rp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registro_caja_id = ?", id).Delete(&model.RegistroConvenio{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.RegistroCaja{}, id)
		if res.Error != nil {
			return res.Error
		}
		borrado = res.RowsAffected > 0
		return nil
	})
	return borrado, err
}

func (rp *cajaRepo) Listar(ctx context.Context, f dto.FiltroCajas) ([]model.RegistroCaja, int64, error) {
	base := rp.filtrarListado(rp.db.WithContext(ctx).Model(&model.RegistroCaja{}), f)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	var rows []model.RegistroCaja
	err := base.
		Order("fecha_registro DESC").
		Limit(f.Limit).
		Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

func (rp *cajaRepo) filtrarListado(q *gorm.DB, f dto.FiltroCajas) *gorm.DB {
	if f.Restaurante != nil {
		q = q.Where("restaurante = ?", *f.Restaurante)
	} else if len(f.SucursalIDs) > 0 {
		q = q.Where("sucursal_id IN ?", f.SucursalIDs)
	}
	if len(f.Turnos) > 0 {
		q = q.Where("turno IN ?", f.Turnos)
	}
	if f.Desde == f.Hasta {
		q = q.Where("DATE(fecha_registro) = ?", f.Desde)
	} else {
		q = q.Where("DATE(fecha_registro) BETWEEN ? AND ?", f.Desde, f.Hasta)
	}
	return q
}

func filtrarRango(q *gorm.DB, f dto.FiltroDescuadres) *gorm.DB {
	q = q.Where("DATE(fecha_registro) BETWEEN ? AND ?", f.Desde, f.Hasta)
	if f.Restaurante != nil {
		q = q.Where("restaurante = ?", *f.Restaurante)
	}
	if len(f.SucursalIDs) > 0 {
		q = q.Where("sucursal_id IN ?", f.SucursalIDs)
	}
	return q
}

// AgregadosPorCajero groups every matching declaration by cashier identity and
// sums the variance buckets. Ranking, caps and filtering by bucket stay in the
// service layer.
func (rp *cajaRepo) AgregadosPorCajero(ctx context.Context, f dto.FiltroDescuadres) ([]dto.DescuadreCajero, error) {
	var rows []dto.DescuadreCajero
	err := filtrarRango(rp.db.WithContext(ctx).Model(&model.RegistroCaja{}), f).
		Select(`COALESCE(cajero_cedula, '') AS cajero_cedula,
			COALESCE(cajero_nombre, '') AS cajero_nombre,
			COUNT(*) AS total_registros,
			SUM(CASE WHEN diferencia < 0 THEN 1 ELSE 0 END) AS faltantes_count,
			COALESCE(SUM(CASE WHEN diferencia < 0 THEN diferencia ELSE 0 END), 0) AS faltantes_total,
			SUM(CASE WHEN diferencia > 0 THEN 1 ELSE 0 END) AS sobrantes_count,
			COALESCE(SUM(CASE WHEN diferencia > 0 THEN diferencia ELSE 0 END), 0) AS sobrantes_total,
			COALESCE(SUM(diferencia), 0) AS neto`).
		Group("cajero_cedula, cajero_nombre").
		Scan(&rows).Error
	return rows, err
}

// PorCajeros returns every underlying declaration for the given cashiers,
// newest first. Plain filtered read for drill-down/export.
func (rp *cajaRepo) PorCajeros(ctx context.Context, cedulas []string, f dto.FiltroDescuadres) ([]model.RegistroCaja, error) {
	var rows []model.RegistroCaja
	err := filtrarRango(rp.db.WithContext(ctx).Model(&model.RegistroCaja{}), f).
		Where("cajero_cedula IN ?", cedulas).
		Order("fecha_registro DESC").
		Find(&rows).Error
	return rows, err
}

func (rp *cajaRepo) ResumenPorTurno(ctx context.Context, f dto.FiltroDescuadres) ([]dto.ResumenTurno, error) {
	var rows []dto.ResumenTurno
	err := filtrarRango(rp.db.WithContext(ctx).Model(&model.RegistroCaja{}), f).
		Select(`turno,
			COALESCE(SUM(venta_total_registrada), 0) AS venta_total,
			COALESCE(SUM(efectivo_en_caja), 0) AS efectivo,
			COALESCE(SUM(tarjetas), 0) AS tarjetas,
			COALESCE(SUM(tarjetas_cantidad), 0) AS tarjetas_cantidad,
			COALESCE(SUM(convenios), 0) AS convenios,
			COALESCE(SUM(convenios_cantidad), 0) AS convenios_cantidad,
			COALESCE(SUM(bonos_sodexo), 0) AS bonos,
			COALESCE(SUM(bonos_sodexo_cantidad), 0) AS bonos_cantidad,
			COALESCE(SUM(pagos_internos), 0) AS pagos_internos,
			COALESCE(SUM(pagos_internos_cantidad), 0) AS pagos_internos_cantidad,
			COALESCE(SUM(dinero_registrado), 0) AS dinero_registrado,
			COALESCE(SUM(valor_consignar), 0) AS valor_consignar,
			COALESCE(SUM(diferencia), 0) AS diferencia`).
		Group("turno").
		Order("turno").
		Scan(&rows).Error
	return rows, err
}

func (rp *cajaRepo) TotalesVentas(ctx context.Context, f dto.FiltroDescuadres) (dto.TotalesVentas, error) {
	var t dto.TotalesVentas
	err := filtrarRango(rp.db.WithContext(ctx).Model(&model.RegistroCaja{}), f).
		Select(`COALESCE(SUM(venta_total_registrada), 0) AS venta_total,
			COALESCE(SUM(efectivo_en_caja), 0) AS efectivo,
			COALESCE(SUM(tarjetas), 0) AS tarjetas,
			COALESCE(SUM(bonos_sodexo), 0) AS bonos,
			COALESCE(SUM(pagos_internos), 0) AS pagos_internos,
			COALESCE(SUM(diferencia), 0) AS diferencia`).
		Scan(&t).Error
	return t, err
}

// ConveniosDesglose groups the line items of every matching declaration by
// the snapshotted agreement name.
func (rp *cajaRepo) ConveniosDesglose(ctx context.Context, f dto.FiltroDescuadres) ([]dto.ConvenioDesglose, error) {
	q := rp.db.WithContext(ctx).
		Table("registro_convenios AS rc").
		Joins("JOIN registro_caja AS r ON r.id = rc.registro_caja_id").
		Where("DATE(r.fecha_registro) BETWEEN ? AND ?", f.Desde, f.Hasta)
	if f.Restaurante != nil {
		q = q.Where("r.restaurante = ?", *f.Restaurante)
	}
	if len(f.SucursalIDs) > 0 {
		q = q.Where("r.sucursal_id IN ?", f.SucursalIDs)
	}

	var rows []dto.ConvenioDesglose
	err := q.
		Select(`COALESCE(rc.nombre_convenio, 'Sin nombre') AS nombre,
			COALESCE(SUM(rc.valor), 0) AS total`).
		Group("rc.nombre_convenio").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}
