package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Payload is the loosely typed body of a registrar/actualizar request. Clients
// send the same logical value under camelCase or snake_case keys depending on
// their version, so fields are resolved through aliasCampos instead of struct tags.
type Payload map[string]any

// aliasCampos maps each logical field to its accepted payload keys, in lookup
// order. Adding a new accepted spelling is a one-line change here.
var aliasCampos = map[string][]string{
	"venta_total_registrada":  {"ventaTotalRegistrada", "venta_total_registrada"},
	"efectivo_en_caja":        {"efectivoEnCaja", "efectivo_en_caja"},
	"tarjetas":                {"tarjetas"},
	"tarjetas_cantidad":       {"tarjetas_cantidad", "tarjetasCantidad"},
	"convenios":               {"convenios"},
	"convenios_cantidad":      {"convenios_cantidad", "conveniosCantidad"},
	"bonos_sodexo":            {"bonosSodexo", "bonos_sodexo"},
	"bonos_sodexo_cantidad":   {"bonosSodexo_cantidad", "bonos_sodexo_cantidad"},
	"pagos_internos":          {"pagosInternos", "pagos_internos"},
	"pagos_internos_cantidad": {"pagosInternos_cantidad", "pagos_internos_cantidad"},
	"turno":                   {"turno"},
	"restaurante":             {"restaurante"},
	"observacion":             {"observacion"},
	"cajero_nombre":           {"cajero_nombre", "cajeroNombre"},
	"cajero_cedula":           {"cajero_cedula", "cajeroCedula"},
	"fecha_registro":          {"fecha_registro", "fechaRegistro"},
	"hora_registro":           {"hora_registro", "horaRegistro"},
	"sucursal_id":             {"sucursal_id", "sucursalId"},
	"convenios_items":         {"convenios_items"},
}

// Valor resolves a logical field to its raw payload value. The second return
// distinguishes an explicit null from an absent field.
func (p Payload) Valor(campo string) (any, bool) {
	for _, clave := range aliasCampos[campo] {
		if v, ok := p[clave]; ok {
			return v, true
		}
	}
	return nil, false
}

// Presente reports whether any accepted spelling of the field was sent.
func (p Payload) Presente(campo string) bool {
	_, ok := p.Valor(campo)
	return ok
}

// Numero reads a monetary field. Absent, null, or unparseable values become
// zero; numeric strings may use a comma decimal separator.
func (p Payload) Numero(campo string) decimal.Decimal {
	v, ok := p.Valor(campo)
	if !ok {
		return decimal.Zero
	}
	return numeroDesde(v)
}

// Entero reads a count field, truncating any fractional part.
func (p Payload) Entero(campo string) int {
	return int(p.Numero(campo).IntPart())
}

// Cadena reads a string field. Absent or null yields nil; any other value is
// stringified.
func (p Payload) Cadena(campo string) *string {
	v, ok := p.Valor(campo)
	if !ok || v == nil {
		return nil
	}
	s := cadenaDesde(v)
	return &s
}

// ID reads a numeric reference field; non-numeric values yield nil.
func (p Payload) ID(campo string) *uint {
	v, ok := p.Valor(campo)
	if !ok {
		return nil
	}
	return idDesde(v)
}

func numeroDesde(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case string:
		s := strings.Replace(n, ",", ".", 1)
		if s == "" {
			return decimal.Zero
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func cadenaDesde(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func idDesde(v any) *uint {
	var id int64
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil
		}
		id = i
	case float64:
		id = int64(n)
	case int:
		id = int64(n)
	case int64:
		id = n
	default:
		return nil
	}
	if id <= 0 {
		return nil
	}
	u := uint(id)
	return &u
}

// ConvenioItem is one parsed agreement line from the payload.
type ConvenioItem struct {
	ConvenioID     *uint
	NombreConvenio *string
	Cantidad       int
	Valor          decimal.Decimal
}

// ConveniosItems parses the agreement line array. The second return reports
// whether the array was sent at all: on amendment a present array (even empty)
// replaces the stored lines, an absent one leaves them untouched.
// Rows with no quantity, no amount, no reference and no name are dropped.
func (p Payload) ConveniosItems() ([]ConvenioItem, bool) {
	raw, ok := p.Valor("convenios_items")
	if !ok {
		return nil, false
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	items := make([]ConvenioItem, 0, len(arr))
	for _, crudo := range arr {
		it, _ := crudo.(map[string]any)
		cantidad := int(numeroDesde(it["cantidad"]).IntPart())
		valor := numeroDesde(it["valor"])
		convenioID := idDesde(it["convenio_id"])

		var nombre *string
		if s, ok := it["nombre_convenio"].(string); ok {
			nombre = &s
		} else if s, ok := it["nombre"].(string); ok {
			nombre = &s
		}

		if cantidad > 0 || valor.IsPositive() || convenioID != nil || nombre != nil {
			items = append(items, ConvenioItem{
				ConvenioID:     convenioID,
				NombreConvenio: nombre,
				Cantidad:       cantidad,
				Valor:          valor,
			})
		}
	}
	return items, true
}
