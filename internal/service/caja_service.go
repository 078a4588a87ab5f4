package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/audit"
	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/metrics"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
)

var (
	ErrRegistroNoEncontrado = errors.New("Registro no encontrado")
	ErrTurnoDuplicado       = errors.New("Turno ya registrado, seleccione otro turno")
)

// ErrValidacion marks a rejected payload; handlers map it to a client error.
type ErrValidacion struct{ Mensaje string }

func (e *ErrValidacion) Error() string { return e.Mensaje }

const recursoRegistroCaja = "registro_caja"

type CajaService interface {
	Registrar(ctx context.Context, body dto.Payload, meta audit.Meta) (uint, ResultadoCaja, error)
	ActualizarParcial(ctx context.Context, id uint, body dto.Payload, meta audit.Meta) (*ResultadoCaja, *model.RegistroCaja, error)
	Eliminar(ctx context.Context, id uint, meta audit.Meta) (bool, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.RegistroCaja, []model.RegistroConvenio, error)
	Listar(ctx context.Context, f dto.FiltroCajas) ([]model.RegistroCaja, int64, error)
}

type cajaService struct {
	repo    repository.CajaRepository
	auditor *audit.Recorder
	ahora   func() time.Time
}

func NewCajaService(repo repository.CajaRepository, auditor *audit.Recorder) CajaService {
	return &cajaService{repo: repo, auditor: auditor, ahora: time.Now}
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func (s *cajaService) Registrar(ctx context.Context, body dto.Payload, meta audit.Meta) (uint, ResultadoCaja, error) {
	turno := cadenaODefecto(body.Cadena("turno"))
	restaurante := cadenaODefecto(body.Cadena("restaurante"))
	cajeroNombre := body.Cadena("cajero_nombre")
	cajeroCedula := body.Cadena("cajero_cedula")

	if cajeroNombre == nil || strings.TrimSpace(*cajeroNombre) == "" {
		return 0, ResultadoCaja{}, &ErrValidacion{"Nombre del cajero requerido"}
	}
	if cajeroCedula == nil || strings.TrimSpace(*cajeroCedula) == "" {
		return 0, ResultadoCaja{}, &ErrValidacion{"Cédula del cajero requerida"}
	}
	if strings.TrimSpace(restaurante) == "" {
		return 0, ResultadoCaja{}, &ErrValidacion{"Restaurante requerido"}
	}
	if turno == "" {
		return 0, ResultadoCaja{}, &ErrValidacion{"Turno requerido"}
	}

	datos := DatosCaja{
		VentaTotalRegistrada:  body.Numero("venta_total_registrada"),
		EfectivoEnCaja:        body.Numero("efectivo_en_caja"),
		Tarjetas:              body.Numero("tarjetas"),
		TarjetasCantidad:      body.Entero("tarjetas_cantidad"),
		Convenios:             body.Numero("convenios"),
		ConveniosCantidad:     body.Entero("convenios_cantidad"),
		BonosSodexo:           body.Numero("bonos_sodexo"),
		BonosSodexoCantidad:   body.Entero("bonos_sodexo_cantidad"),
		PagosInternos:         body.Numero("pagos_internos"),
		PagosInternosCantidad: body.Entero("pagos_internos_cantidad"),
	}
	resultado := CalcularCaja(datos)

	fecha := parsearFechaHora(body.Cadena("fecha_registro"), body.Cadena("hora_registro"))
	if fecha == nil {
		ahora := s.ahora()
		fecha = &ahora
	}
	sucursalID := body.ID("sucursal_id")

	// Fast-fail duplicate check; the store repeats it under the advisory lock.
	existe, err := s.repo.ExisteTurno(ctx, &restaurante, sucursalID, turno, fecha.Format("2006-01-02"))
	if err != nil {
		return 0, ResultadoCaja{}, err
	}
	if existe {
		return 0, ResultadoCaja{}, ErrTurnoDuplicado
	}

	registro := &model.RegistroCaja{
		Restaurante:           &restaurante,
		SucursalID:            sucursalID,
		Turno:                 turno,
		FechaRegistro:         *fecha,
		VentaTotalRegistrada:  datos.VentaTotalRegistrada,
		EfectivoEnCaja:        datos.EfectivoEnCaja,
		Tarjetas:              datos.Tarjetas,
		TarjetasCantidad:      datos.TarjetasCantidad,
		Convenios:             datos.Convenios,
		ConveniosCantidad:     datos.ConveniosCantidad,
		BonosSodexo:           datos.BonosSodexo,
		BonosSodexoCantidad:   datos.BonosSodexoCantidad,
		PagosInternos:         datos.PagosInternos,
		PagosInternosCantidad: datos.PagosInternosCantidad,
		ValorConsignar:        resultado.ValorConsignar,
		DineroRegistrado:      resultado.DineroRegistrado,
		Diferencia:            resultado.Diferencia,
		Estado:                resultado.Estado,
		Observacion:           body.Cadena("observacion"),
		CajeroNombre:          cajeroNombre,
		CajeroCedula:          cajeroCedula,
	}

	items, _ := body.ConveniosItems()
	if err := s.repo.Crear(ctx, registro, convertirItems(items)); err != nil {
		if errors.Is(err, repository.ErrTurnoDuplicado) {
			return 0, ResultadoCaja{}, ErrTurnoDuplicado
		}
		return 0, ResultadoCaja{}, err
	}
	metrics.RegistrosCreados.Inc()

	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "crear_registro",
		Recurso:   puntero(recursoRegistroCaja),
		RecursoID: &registro.ID,
		Detalle: map[string]any{
			"restaurante":   restaurante,
			"turno":         turno,
			"cajero_nombre": *cajeroNombre,
			"cajero_cedula": *cajeroCedula,
		},
	})

	return registro.ID, resultado, nil
}

// ── ActualizarParcial ─────────────────────────────────────────────────────────
// Merge precedence per field: incoming value if the key was sent (under any
// accepted spelling), otherwise the stored value. Derived columns are always
// recomputed — a partial amendment can never lock in a stale variance.

func (s *cajaService) ActualizarParcial(ctx context.Context, id uint, body dto.Payload, meta audit.Meta) (*ResultadoCaja, *model.RegistroCaja, error) {
	original, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRegistroNoEncontrado
		}
		return nil, nil, err
	}

	datos := DatosCaja{
		VentaTotalRegistrada:  mergeNumero(body, "venta_total_registrada", original.VentaTotalRegistrada),
		EfectivoEnCaja:        mergeNumero(body, "efectivo_en_caja", original.EfectivoEnCaja),
		Tarjetas:              mergeNumero(body, "tarjetas", original.Tarjetas),
		TarjetasCantidad:      mergeEntero(body, "tarjetas_cantidad", original.TarjetasCantidad),
		Convenios:             mergeNumero(body, "convenios", original.Convenios),
		ConveniosCantidad:     mergeEntero(body, "convenios_cantidad", original.ConveniosCantidad),
		BonosSodexo:           mergeNumero(body, "bonos_sodexo", original.BonosSodexo),
		BonosSodexoCantidad:   mergeEntero(body, "bonos_sodexo_cantidad", original.BonosSodexoCantidad),
		PagosInternos:         mergeNumero(body, "pagos_internos", original.PagosInternos),
		PagosInternosCantidad: mergeEntero(body, "pagos_internos_cantidad", original.PagosInternosCantidad),
	}
	resultado := CalcularCaja(datos)

	restaurante := mergeRequerida(body, "restaurante", original.Restaurante)
	turno := mergeRequerida(body, "turno", puntero(original.Turno))

	fechaRegistro := original.FechaRegistro
	if nueva := parsearFechaHora(body.Cadena("fecha_registro"), body.Cadena("hora_registro")); nueva != nil {
		fechaRegistro = *nueva
	}

	sucursalID := original.SucursalID
	if nuevo := body.ID("sucursal_id"); nuevo != nil {
		sucursalID = nuevo
	}

	cambios := map[string]any{
		"restaurante":             restaurante,
		"turno":                   derefCadena(turno),
		"fecha_registro":          fechaRegistro,
		"venta_total_registrada":  datos.VentaTotalRegistrada,
		"efectivo_en_caja":        datos.EfectivoEnCaja,
		"tarjetas":                datos.Tarjetas,
		"tarjetas_cantidad":       datos.TarjetasCantidad,
		"convenios":               datos.Convenios,
		"convenios_cantidad":      datos.ConveniosCantidad,
		"bonos_sodexo":            datos.BonosSodexo,
		"bonos_sodexo_cantidad":   datos.BonosSodexoCantidad,
		"pagos_internos":          datos.PagosInternos,
		"pagos_internos_cantidad": datos.PagosInternosCantidad,
		"valor_consignar":         resultado.ValorConsignar,
		"dinero_registrado":       resultado.DineroRegistrado,
		"diferencia":              resultado.Diferencia,
		"estado":                  resultado.Estado,
		"observacion":             mergeCadena(body, "observacion", original.Observacion),
		"cajero_nombre":           mergeCadena(body, "cajero_nombre", original.CajeroNombre),
		"cajero_cedula":           mergeCadena(body, "cajero_cedula", original.CajeroCedula),
		"sucursal_id":             sucursalID,
	}

	items, reemplazar := body.ConveniosItems()
	ok, err := s.repo.Actualizar(ctx, id, cambios, convertirItems(items), reemplazar)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrRegistroNoEncontrado
	}

	actualizado, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	// The amendment audit records intent: the field map the service set out to
	// write, not a verified before/after delta.
	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "actualizar_registro",
		Recurso:   puntero(recursoRegistroCaja),
		RecursoID: &id,
		Detalle:   map[string]any{"cambios": cambios},
	})

	return &resultado, actualizado, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *cajaService) Eliminar(ctx context.Context, id uint, meta audit.Meta) (bool, error) {
	borrado, err := s.repo.Eliminar(ctx, id)
	if err != nil || !borrado {
		return borrado, err
	}
	s.auditar(ctx, meta, audit.Entrada{
		Accion:    "eliminar_registro",
		Recurso:   puntero(recursoRegistroCaja),
		RecursoID: &id,
	})
	return true, nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerPorID(ctx context.Context, id uint) (*model.RegistroCaja, []model.RegistroConvenio, error) {
	registro, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRegistroNoEncontrado
		}
		return nil, nil, err
	}
	convenios, err := s.repo.ConveniosDeRegistro(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return registro, convenios, nil
}

func (s *cajaService) Listar(ctx context.Context, f dto.FiltroCajas) ([]model.RegistroCaja, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 50 {
		f.Limit = 50
	}
	return s.repo.Listar(ctx, f)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) auditar(ctx context.Context, meta audit.Meta, e audit.Entrada) {
	if s.auditor != nil {
		s.auditor.Registrar(ctx, meta, e)
	}
}

// parsearFechaHora resolves the optional date+time pair. Date-only defaults the
// time to midnight; anything unparseable counts as absent, never as an error.
func parsearFechaHora(fecha, hora *string) *time.Time {
	f := strings.TrimSpace(cadenaODefecto(fecha))
	h := strings.TrimSpace(cadenaODefecto(hora))
	if f == "" {
		return nil
	}
	if h != "" {
		if len(h) == 5 {
			h += ":00"
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", f+"T"+h, time.Local); err == nil {
			return &t
		}
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", f+" "+h, time.Local); err == nil {
			return &t
		}
		return nil
	}
	if t, err := time.ParseInLocation("2006-01-02", f, time.Local); err == nil {
		return &t
	}
	return nil
}

func convertirItems(items []dto.ConvenioItem) []model.RegistroConvenio {
	filas := make([]model.RegistroConvenio, 0, len(items))
	for _, it := range items {
		filas = append(filas, model.RegistroConvenio{
			ConvenioID:     it.ConvenioID,
			NombreConvenio: it.NombreConvenio,
			Cantidad:       it.Cantidad,
			Valor:          it.Valor,
		})
	}
	return filas
}

func mergeNumero(body dto.Payload, campo string, actual decimal.Decimal) decimal.Decimal {
	if body.Presente(campo) {
		return body.Numero(campo)
	}
	return actual
}

func mergeEntero(body dto.Payload, campo string, actual int) int {
	if body.Presente(campo) {
		return body.Entero(campo)
	}
	return actual
}

func mergeCadena(body dto.Payload, campo string, actual *string) *string {
	if body.Presente(campo) {
		return body.Cadena(campo)
	}
	return actual
}

// mergeRequerida keeps the stored value when the payload omits the field or
// sends an explicit null: required strings cannot be cleared by amendment.
func mergeRequerida(body dto.Payload, campo string, actual *string) *string {
	if v := body.Cadena(campo); v != nil {
		return v
	}
	return actual
}

func puntero[T any](v T) *T { return &v }

func cadenaODefecto(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefCadena(s *string) string { return cadenaODefecto(s) }
