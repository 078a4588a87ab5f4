package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Chucho2278/subvalle-control-caja/internal/audit"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
)

var ErrConvenioNoEncontrado = errors.New("Convenio no encontrado")

type ConvenioService interface {
	Crear(ctx context.Context, nombre string, meta audit.Meta) (*model.Convenio, error)
	Listar(ctx context.Context) ([]model.Convenio, error)
	Actualizar(ctx context.Context, id uint, nombre string, meta audit.Meta) error
	Eliminar(ctx context.Context, id uint, meta audit.Meta) (bool, error)
}

type convenioService struct {
	repo    repository.ConvenioRepository
	auditor *audit.Recorder
}

func NewConvenioService(repo repository.ConvenioRepository, auditor *audit.Recorder) ConvenioService {
	return &convenioService{repo: repo, auditor: auditor}
}

func (s *convenioService) Crear(ctx context.Context, nombre string, meta audit.Meta) (*model.Convenio, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, &ErrValidacion{"Nombre del convenio requerido"}
	}

	conv := &model.Convenio{Nombre: nombre}
	if err := s.repo.Crear(ctx, conv); err != nil {
		return nil, err
	}

	recurso := "convenios"
	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "crear_convenio",
		Recurso:   &recurso,
		RecursoID: &conv.ID,
		Detalle:   map[string]any{"nombre": conv.Nombre},
	})
	return conv, nil
}

func (s *convenioService) Listar(ctx context.Context) ([]model.Convenio, error) {
	return s.repo.Listar(ctx)
}

func (s *convenioService) Actualizar(ctx context.Context, id uint, nombre string, meta audit.Meta) error {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return &ErrValidacion{"Nombre del convenio requerido"}
	}

	anterior, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return ErrConvenioNoEncontrado
	}

	ok, err := s.repo.Actualizar(ctx, id, nombre)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConvenioNoEncontrado
	}

	if cambios := audit.Diff(
		map[string]any{"nombre": anterior.Nombre},
		map[string]any{"nombre": nombre},
	); len(cambios) > 0 {
		recurso := "convenios"
		s.auditar(ctx, meta, audit.Entrada{
			Accion:    "actualizar_convenio",
			Recurso:   &recurso,
			RecursoID: &id,
			Detalle:   map[string]any{"cambios": cambios},
		})
	}
	return nil
}

func (s *convenioService) Eliminar(ctx context.Context, id uint, meta audit.Meta) (bool, error) {
	ok, err := s.repo.Eliminar(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	recurso := "convenios"
	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "eliminar_convenio",
		Recurso:   &recurso,
		RecursoID: &id,
	})
	return true, nil
}

func (s *convenioService) auditar(ctx context.Context, meta audit.Meta, e audit.Entrada) {
	if s.auditor != nil {
		s.auditor.Registrar(ctx, meta, e)
	}
}
