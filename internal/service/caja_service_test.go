package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/audit"
	"github.com/Chucho2278/subvalle-control-caja/internal/dto"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
)

// fakeCajaRepo is an in-memory double of repository.CajaRepository.
type fakeCajaRepo struct {
	registros map[uint]*model.RegistroCaja
	items     map[uint][]model.RegistroConvenio
	nextID    uint

	turnoOcupado bool
	crearErr     error

	ultimosCambios  map[string]any
	ultimoReemplazo bool
}

func nuevoFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{
		registros: make(map[uint]*model.RegistroCaja),
		items:     make(map[uint][]model.RegistroConvenio),
	}
}

func (f *fakeCajaRepo) Crear(_ context.Context, r *model.RegistroCaja, items []model.RegistroConvenio) error {
	if f.crearErr != nil {
		return f.crearErr
	}
	f.nextID++
	r.ID = f.nextID
	copia := *r
	f.registros[r.ID] = &copia
	f.items[r.ID] = items
	return nil
}

func (f *fakeCajaRepo) ObtenerPorID(_ context.Context, id uint) (*model.RegistroCaja, error) {
	r, ok := f.registros[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *r
	return &copia, nil
}

func (f *fakeCajaRepo) ConveniosDeRegistro(_ context.Context, id uint) ([]model.RegistroConvenio, error) {
	return f.items[id], nil
}

func (f *fakeCajaRepo) ExisteTurno(_ context.Context, _ *string, _ *uint, _, _ string) (bool, error) {
	return f.turnoOcupado, nil
}

func (f *fakeCajaRepo) Actualizar(_ context.Context, id uint, cambios map[string]any, items []model.RegistroConvenio, reemplazar bool) (bool, error) {
	if _, ok := f.registros[id]; !ok {
		return false, nil
	}
	f.ultimosCambios = cambios
	f.ultimoReemplazo = reemplazar
	if reemplazar {
		f.items[id] = items
	}
	aplicarCambios(f.registros[id], cambios)
	return true, nil
}

func (f *fakeCajaRepo) Eliminar(_ context.Context, id uint) (bool, error) {
	if _, ok := f.registros[id]; !ok {
		return false, nil
	}
	delete(f.registros, id)
	delete(f.items, id)
	return true, nil
}

func (f *fakeCajaRepo) Listar(_ context.Context, _ dto.FiltroCajas) ([]model.RegistroCaja, int64, error) {
	out := make([]model.RegistroCaja, 0, len(f.registros))
	for _, r := range f.registros {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCajaRepo) AgregadosPorCajero(_ context.Context, _ dto.FiltroDescuadres) ([]dto.DescuadreCajero, error) {
	return nil, nil
}

func (f *fakeCajaRepo) PorCajeros(_ context.Context, _ []string, _ dto.FiltroDescuadres) ([]model.RegistroCaja, error) {
	return nil, nil
}

func (f *fakeCajaRepo) ResumenPorTurno(_ context.Context, _ dto.FiltroDescuadres) ([]dto.ResumenTurno, error) {
	return nil, nil
}

func (f *fakeCajaRepo) TotalesVentas(_ context.Context, _ dto.FiltroDescuadres) (dto.TotalesVentas, error) {
	return dto.TotalesVentas{}, nil
}

func (f *fakeCajaRepo) ConveniosDesglose(_ context.Context, _ dto.FiltroDescuadres) ([]dto.ConvenioDesglose, error) {
	return nil, nil
}

// aplicarCambios mirrors what the SQL UPDATE does for the columns the tests read.
func aplicarCambios(r *model.RegistroCaja, cambios map[string]any) {
	if v, ok := cambios["efectivo_en_caja"].(decimal.Decimal); ok {
		r.EfectivoEnCaja = v
	}
	if v, ok := cambios["venta_total_registrada"].(decimal.Decimal); ok {
		r.VentaTotalRegistrada = v
	}
	if v, ok := cambios["diferencia"].(decimal.Decimal); ok {
		r.Diferencia = v
	}
	if v, ok := cambios["estado"].(string); ok {
		r.Estado = v
	}
	if v, ok := cambios["observacion"].(*string); ok {
		r.Observacion = v
	}
	if v, ok := cambios["restaurante"].(*string); ok {
		r.Restaurante = v
	}
}

func servicioDePrueba(repo *fakeCajaRepo) *cajaService {
	fija := time.Date(2026, 4, 2, 22, 15, 0, 0, time.Local)
	return &cajaService{repo: repo, ahora: func() time.Time { return fija }}
}

func payloadValido() dto.Payload {
	return dto.Payload{
		"ventaTotalRegistrada": "250000",
		"efectivoEnCaja":       "180000",
		"tarjetas":             "70000",
		"tarjetas_cantidad":    "12",
		"restaurante":          "Subvalle Centro",
		"turno":                "A",
		"cajero_nombre":        "María Pérez",
		"cajero_cedula":        "1094567890",
	}
}

func TestRegistrarHappyPath(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	id, resultado, err := svc.Registrar(context.Background(), payloadValido(), audit.Meta{})
	require.NoError(t, err)
	require.NotZero(t, id)

	assert.Equal(t, "Caja OK", resultado.Estado)
	assert.True(t, resultado.Diferencia.IsZero())
	assert.True(t, resultado.ValorConsignar.Equal(decimal.NewFromInt(180000)))

	guardado := repo.registros[id]
	require.NotNil(t, guardado)
	assert.Equal(t, "A", guardado.Turno)
	assert.True(t, guardado.DineroRegistrado.Equal(decimal.NewFromInt(250000)))
	require.NotNil(t, guardado.CajeroCedula)
	assert.Equal(t, "1094567890", *guardado.CajeroCedula)
	// Sin fecha en el payload se usa el reloj del servicio.
	assert.Equal(t, 2026, guardado.FechaRegistro.Year())
	assert.Equal(t, time.April, guardado.FechaRegistro.Month())
}

func TestRegistrarValidaciones(t *testing.T) {
	casos := []struct {
		quitar  string
		mensaje string
	}{
		{"cajero_nombre", "Nombre del cajero requerido"},
		{"cajero_cedula", "Cédula del cajero requerida"},
		{"restaurante", "Restaurante requerido"},
		{"turno", "Turno requerido"},
	}

	for _, caso := range casos {
		t.Run(caso.quitar, func(t *testing.T) {
			body := payloadValido()
			delete(body, caso.quitar)

			svc := servicioDePrueba(nuevoFakeCajaRepo())
			_, _, err := svc.Registrar(context.Background(), body, audit.Meta{})

			var ev *ErrValidacion
			require.ErrorAs(t, err, &ev)
			assert.Equal(t, caso.mensaje, ev.Mensaje)
		})
	}
}

func TestRegistrarTurnoDuplicado(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	repo.turnoOcupado = true
	svc := servicioDePrueba(repo)

	_, _, err := svc.Registrar(context.Background(), payloadValido(), audit.Meta{})
	assert.ErrorIs(t, err, ErrTurnoDuplicado)
	assert.Empty(t, repo.registros, "el duplicado no debe llegar al almacén")
}

func TestRegistrarFechaHoraDelPayload(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	body := payloadValido()
	body["fecha_registro"] = "2026-05-10"
	body["hora_registro"] = "14:30"

	id, _, err := svc.Registrar(context.Background(), body, audit.Meta{})
	require.NoError(t, err)

	esperada := time.Date(2026, 5, 10, 14, 30, 0, 0, time.Local)
	assert.True(t, repo.registros[id].FechaRegistro.Equal(esperada),
		"fecha = %s", repo.registros[id].FechaRegistro)
}

func TestRegistrarConItems(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	body := payloadValido()
	body["convenios_items"] = []any{
		map[string]any{"nombre": "Sodexo", "cantidad": "3", "valor": "45000"},
		map[string]any{"cantidad": "0", "valor": "0"}, // fila vacía: se descarta
	}

	id, _, err := svc.Registrar(context.Background(), body, audit.Meta{})
	require.NoError(t, err)

	items := repo.items[id]
	require.Len(t, items, 1)
	require.NotNil(t, items[0].NombreConvenio)
	assert.Equal(t, "Sodexo", *items[0].NombreConvenio)
	assert.Equal(t, 3, items[0].Cantidad)
	assert.True(t, items[0].Valor.Equal(decimal.NewFromInt(45000)))
}

func TestActualizarParcialRecalculaDerivados(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	id, _, err := svc.Registrar(context.Background(), payloadValido(), audit.Meta{})
	require.NoError(t, err)

	// Solo cambia el efectivo; el resto se conserva y la diferencia se recalcula.
	resultado, registro, err := svc.ActualizarParcial(context.Background(), id,
		dto.Payload{"efectivoEnCaja": "179500"}, audit.Meta{})
	require.NoError(t, err)

	assert.True(t, resultado.Diferencia.Equal(decimal.NewFromInt(-500)),
		"diferencia = %s", resultado.Diferencia)
	assert.Contains(t, resultado.Estado, "Caja corta")
	assert.True(t, registro.EfectivoEnCaja.Equal(decimal.NewFromInt(179500)))

	// La enmienda parcial no tocó los campos no enviados.
	venta, ok := repo.ultimosCambios["venta_total_registrada"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, venta.Equal(decimal.NewFromInt(250000)))
	assert.False(t, repo.ultimoReemplazo, "sin arreglo de convenios no hay reemplazo")
}

func TestActualizarParcialVacioEsNoOp(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	id, original, err := svc.Registrar(context.Background(), payloadValido(), audit.Meta{})
	require.NoError(t, err)

	resultado, _, err := svc.ActualizarParcial(context.Background(), id, dto.Payload{}, audit.Meta{})
	require.NoError(t, err)

	assert.True(t, resultado.Diferencia.Equal(original.Diferencia))
	assert.Equal(t, original.Estado, resultado.Estado)
}

func TestActualizarParcialNulosExplicitos(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	body := payloadValido()
	body["observacion"] = "turno tranquilo"
	id, _, err := svc.Registrar(context.Background(), body, audit.Meta{})
	require.NoError(t, err)

	_, registro, err := svc.ActualizarParcial(context.Background(), id,
		dto.Payload{"observacion": nil, "restaurante": nil}, audit.Meta{})
	require.NoError(t, err)

	// Un null explícito limpia la observación pero nunca un campo requerido.
	assert.Nil(t, registro.Observacion)
	require.NotNil(t, registro.Restaurante)
	assert.Equal(t, "Subvalle Centro", *registro.Restaurante)
}

func TestActualizarParcialReemplazaItems(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	body := payloadValido()
	body["convenios_items"] = []any{
		map[string]any{"nombre": "Sodexo", "cantidad": "2", "valor": "30000"},
	}
	id, _, err := svc.Registrar(context.Background(), body, audit.Meta{})
	require.NoError(t, err)

	// Arreglo vacío presente: borra las líneas guardadas.
	_, _, err = svc.ActualizarParcial(context.Background(), id,
		dto.Payload{"convenios_items": []any{}}, audit.Meta{})
	require.NoError(t, err)

	assert.True(t, repo.ultimoReemplazo)
	assert.Empty(t, repo.items[id])
}

func TestActualizarParcialNoEncontrado(t *testing.T) {
	svc := servicioDePrueba(nuevoFakeCajaRepo())
	_, _, err := svc.ActualizarParcial(context.Background(), 99, dto.Payload{}, audit.Meta{})
	assert.ErrorIs(t, err, ErrRegistroNoEncontrado)
}

func TestEliminar(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)

	id, _, err := svc.Registrar(context.Background(), payloadValido(), audit.Meta{})
	require.NoError(t, err)

	ok, err := svc.Eliminar(context.Background(), id, audit.Meta{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, repo.items[id], "las líneas de convenio se van con el registro")

	ok, err = svc.Eliminar(context.Background(), id, audit.Meta{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObtenerPorIDNoEncontrado(t *testing.T) {
	svc := servicioDePrueba(nuevoFakeCajaRepo())
	_, _, err := svc.ObtenerPorID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrRegistroNoEncontrado)
}

// ── Auditoría que falla ───────────────────────────────────────────────────────

type colaRota struct{}

func (colaRota) EncolarAuditoria(context.Context, model.Auditoria) error {
	return errors.New("redis caído")
}

type insertadorRoto struct{}

func (insertadorRoto) Insertar(context.Context, *model.Auditoria) error {
	return errors.New("db caída")
}

func TestRegistrarSobreviveAuditoriaRota(t *testing.T) {
	repo := nuevoFakeCajaRepo()
	svc := servicioDePrueba(repo)
	svc.auditor = audit.NewRecorder(colaRota{}, insertadorRoto{})

	id, _, err := svc.Registrar(context.Background(), payloadValido(), audit.Meta{})
	require.NoError(t, err, "la auditoría nunca tumba la operación")
	assert.NotZero(t, id)
}
