package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/audit"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
)

var ErrSucursalNoEncontrada = errors.New("Sucursal no encontrada")

const (
	sucursalesCacheKey = "sucursales:listado"
	sucursalesCacheTTL = 4 * time.Hour
)

// SucursalInput carries the writable branch fields. Nil pointers in an
// update mean "leave as is".
type SucursalInput struct {
	Nombre       *string `json:"nombre"`
	NumeroTienda *string `json:"numero_tienda"`
	Direccion    *string `json:"direccion"`
}

type SucursalService interface {
	Crear(ctx context.Context, in SucursalInput, meta audit.Meta) (*model.Sucursal, error)
	Listar(ctx context.Context) ([]model.Sucursal, error)
	Actualizar(ctx context.Context, id uint, in SucursalInput, meta audit.Meta) (*model.Sucursal, error)
	Eliminar(ctx context.Context, id uint, meta audit.Meta) (bool, error)
}

type sucursalService struct {
	repo    repository.SucursalRepository
	rdb     *redis.Client
	auditor *audit.Recorder
}

func NewSucursalService(repo repository.SucursalRepository, rdb *redis.Client, auditor *audit.Recorder) SucursalService {
	return &sucursalService{repo: repo, rdb: rdb, auditor: auditor}
}

func (s *sucursalService) Crear(ctx context.Context, in SucursalInput, meta audit.Meta) (*model.Sucursal, error) {
	if in.Nombre == nil || strings.TrimSpace(*in.Nombre) == "" {
		return nil, &ErrValidacion{"Nombre de la sucursal requerido"}
	}

	suc := &model.Sucursal{
		Nombre:       strings.TrimSpace(*in.Nombre),
		NumeroTienda: in.NumeroTienda,
		Direccion:    in.Direccion,
	}
	if err := s.repo.Crear(ctx, suc); err != nil {
		return nil, err
	}
	s.invalidarCache(ctx)

	recurso := "sucursales"
	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "crear_sucursal",
		Recurso:   &recurso,
		RecursoID: &suc.ID,
		Detalle:   map[string]any{"nombre": suc.Nombre},
	})
	return suc, nil
}

func (s *sucursalService) Listar(ctx context.Context) ([]model.Sucursal, error) {
	// Branch masters change rarely; serve the listing from cache when
	// possible, best effort on both sides.
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, sucursalesCacheKey).Bytes(); err == nil {
			var sucursales []model.Sucursal
			if jsonErr := json.Unmarshal(cached, &sucursales); jsonErr == nil {
				return sucursales, nil
			}
		}
	}

	sucursales, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(sucursales); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), sucursalesCacheKey, b, sucursalesCacheTTL).Err()
		}
	}
	return sucursales, nil
}

func (s *sucursalService) Actualizar(ctx context.Context, id uint, in SucursalInput, meta audit.Meta) (*model.Sucursal, error) {
	suc, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSucursalNoEncontrada
		}
		return nil, err
	}

	antes := map[string]any{
		"nombre":        suc.Nombre,
		"numero_tienda": suc.NumeroTienda,
		"direccion":     suc.Direccion,
	}

	if in.Nombre != nil {
		if strings.TrimSpace(*in.Nombre) == "" {
			return nil, &ErrValidacion{"Nombre de la sucursal requerido"}
		}
		suc.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.NumeroTienda != nil {
		suc.NumeroTienda = in.NumeroTienda
	}
	if in.Direccion != nil {
		suc.Direccion = in.Direccion
	}

	if err := s.repo.Actualizar(ctx, suc); err != nil {
		return nil, err
	}
	s.invalidarCache(ctx)

	despues := map[string]any{
		"nombre":        suc.Nombre,
		"numero_tienda": suc.NumeroTienda,
		"direccion":     suc.Direccion,
	}
	if cambios := audit.Diff(antes, despues); len(cambios) > 0 {
		recurso := "sucursales"
		s.auditar(ctx, meta, audit.Entrada{
			Accion:    "actualizar_sucursal",
			Recurso:   &recurso,
			RecursoID: &suc.ID,
			Detalle:   map[string]any{"cambios": cambios},
		})
	}
	return suc, nil
}

func (s *sucursalService) Eliminar(ctx context.Context, id uint, meta audit.Meta) (bool, error) {
	ok, err := s.repo.Eliminar(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.invalidarCache(ctx)

	recurso := "sucursales"
	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "eliminar_sucursal",
		Recurso:   &recurso,
		RecursoID: &id,
	})
	return true, nil
}

func (s *sucursalService) invalidarCache(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Del(ctx, sucursalesCacheKey).Err()
	}
}

func (s *sucursalService) auditar(ctx context.Context, meta audit.Meta, e audit.Entrada) {
	if s.auditor != nil {
		s.auditor.Registrar(ctx, meta, e)
	}
}
