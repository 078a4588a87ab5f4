// Package audit produces the best-effort, append-only trail of state-changing
// actions. Nothing in here may ever fail the business operation it is attached
// to: every error path ends in a log line and a dropped entry, not a propagated
// error.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Chucho2278/subvalle-control-caja/internal/metrics"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

// Meta carries the request-level attribution resolved at the transport layer:
// the authenticated actor (nil for anonymous/system actions), the client IP
// (first X-Forwarded-For entry or the connection address) and the user agent.
type Meta struct {
	UsuarioID *uint
	IP        *string
	UserAgent *string
}

// Entrada is one action to log. Detalle is opaque: a string passes through
// untouched, anything else is JSON-serialized.
type Entrada struct {
	Accion    string
	Recurso   *string
	RecursoID *uint
	Detalle   any
}

// Encolador pushes an entry onto the async audit queue.
type Encolador interface {
	EncolarAuditoria(ctx context.Context, a model.Auditoria) error
}

// Insertador persists an entry directly.
type Insertador interface {
	Insertar(ctx context.Context, a *model.Auditoria) error
}

// Recorder writes audit entries fire-and-forget. The queue path is preferred;
// when the queue is absent or rejects the entry, the recorder falls back to a
// detached direct insert.
type Recorder struct {
	cola Encolador
	repo Insertador
}

func NewRecorder(cola Encolador, repo Insertador) *Recorder {
	return &Recorder{cola: cola, repo: repo}
}

const escrituraDirectaTimeout = 5 * time.Second

// Registrar logs one action. It never blocks the caller beyond issuing the
// enqueue and never returns an error: audit failure is an operator concern,
// not a client one.
func (r *Recorder) Registrar(ctx context.Context, meta Meta, e Entrada) {
	entrada := model.Auditoria{
		UsuarioID: meta.UsuarioID,
		Accion:    e.Accion,
		Recurso:   e.Recurso,
		RecursoID: e.RecursoID,
		Detalle:   serializarDetalle(e.Detalle),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if r.cola != nil {
		if err := r.cola.EncolarAuditoria(ctx, entrada); err == nil {
			metrics.AuditoriasEncoladas.Inc()
			return
		} else {
			log.Error().Err(err).Str("accion", e.Accion).Msg("no se pudo encolar auditoría, intentando escritura directa")
		}
	}

	if r.repo == nil {
		metrics.AuditoriasFallidas.Inc()
		return
	}

	// Detached from the request: the response does not await this write and the
	// caller's context may already be cancelled when it runs.
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Msg("pánico escribiendo auditoría")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), escrituraDirectaTimeout)
		defer cancel()
		if err := r.repo.Insertar(ctx, &entrada); err != nil {
			metrics.AuditoriasFallidas.Inc()
			log.Error().Err(err).Str("accion", e.Accion).Msg("error registrando auditoría")
		}
	}()
}

func serializarDetalle(detalle any) *string {
	switch d := detalle.(type) {
	case nil:
		return nil
	case string:
		return &d
	default:
		data, err := json.Marshal(d)
		if err != nil {
			s := fmt.Sprint(d)
			return &s
		}
		s := string(data)
		return &s
	}
}
