package service

import (
	"context"

	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
)

// AuditoriaService is the read side of the audit log; writes only happen
// through the recorder.
type AuditoriaService interface {
	Listar(ctx context.Context, f dto.FiltroAuditorias, page, limit int) ([]repository.AuditoriaConUsuario, int64, error)
	Acciones(ctx context.Context) ([]string, error)
}

type auditoriaService struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaService(repo repository.AuditoriaRepository) AuditoriaService {
	return &auditoriaService{repo: repo}
}

const (
	auditoriaLimitDefecto = 50
	auditoriaLimitMax     = 200
)

func (s *auditoriaService) Listar(ctx context.Context, f dto.FiltroAuditorias, page, limit int) ([]repository.AuditoriaConUsuario, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = auditoriaLimitDefecto
	}
	if limit > auditoriaLimitMax {
		limit = auditoriaLimitMax
	}
	return s.repo.Listar(ctx, f, page, limit)
}

func (s *auditoriaService) Acciones(ctx context.Context) ([]string, error) {
	return s.repo.Acciones(ctx)
}
