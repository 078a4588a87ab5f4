package audit

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cambio is one normalized field-level difference.
type Cambio struct {
	Campo   string `json:"field"`
	Antes   any    `json:"before"`
	Despues any    `json:"after"`
}

// camposAuditables is the allow-list of business fields worth logging. Internal
// metadata (ids, derived columns, row timestamps) never reaches the audit trail.
var camposAuditables = map[string]struct{}{
	"venta_total_registrada":  {},
	"efectivo_en_caja":        {},
	"tarjetas":                {},
	"tarjetas_cantidad":       {},
	"convenios":               {},
	"convenios_cantidad":      {},
	"bonos_sodexo":            {},
	"bonos_sodexo_cantidad":   {},
	"pagos_internos":          {},
	"pagos_internos_cantidad": {},
	"observacion":             {},
	"cajero_nombre":           {},
	"cajero_cedula":           {},
	"turno":                   {},
	"fecha_registro":          {},
	"nombre":                  {},
	"numero_tienda":           {},
	"direccion":               {},
}

// Normalizar collapses the mixed representations a field can arrive in (stored
// row vs. JSON payload) into a canonical comparable value: nil, a decimal for
// anything numeric-looking, a timestamp string for dates, or a trimmed string.
func Normalizar(v any) any {
	v = desreferenciar(v)

	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case decimal.Decimal:
		return x
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			return d
		}
		return strings.TrimSpace(x.String())
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return decimal.NewFromInt(int64(x))
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(x)); err == nil {
			return d
		}
		return strings.TrimSpace(x)
	default:
		return v
	}
}

func desreferenciar(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func iguales(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		if db, ok := b.(decimal.Decimal); ok {
			return da.Equal(db)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Diff compares two field maps over the auditable allow-list and returns the
// normalized changes, sorted by field name. Only keys present in despues are
// considered; equality is structural after normalization, never by reference.
func Diff(antes, despues map[string]any) []Cambio {
	campos := make([]string, 0, len(despues))
	for k := range despues {
		if _, ok := camposAuditables[k]; ok {
			campos = append(campos, k)
		}
	}
	sort.Strings(campos)

	cambios := make([]Cambio, 0, len(campos))
	for _, campo := range campos {
		var previo any
		if antes != nil {
			previo = antes[campo]
		}
		a := Normalizar(previo)
		b := Normalizar(despues[campo])
		if !iguales(a, b) {
			cambios = append(cambios, Cambio{Campo: campo, Antes: a, Despues: b})
		}
	}
	return cambios
}
