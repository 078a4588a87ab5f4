package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodificar(t *testing.T, raw string) Payload {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var p Payload
	require.NoError(t, dec.Decode(&p))
	return p
}

func TestPayloadAliasCamelYSnake(t *testing.T) {
	camel := decodificar(t, `{"ventaTotalRegistrada": 150000, "cajeroNombre": "Ana"}`)
	snake := decodificar(t, `{"venta_total_registrada": 150000, "cajero_nombre": "Ana"}`)

	esperado := decimal.NewFromInt(150000)
	assert.True(t, camel.Numero("venta_total_registrada").Equal(esperado))
	assert.True(t, snake.Numero("venta_total_registrada").Equal(esperado))

	require.NotNil(t, camel.Cadena("cajero_nombre"))
	assert.Equal(t, "Ana", *camel.Cadena("cajero_nombre"))
	require.NotNil(t, snake.Cadena("cajero_nombre"))
	assert.Equal(t, "Ana", *snake.Cadena("cajero_nombre"))
}

func TestPayloadNumeroConComa(t *testing.T) {
	p := decodificar(t, `{"efectivoEnCaja": "120000,50"}`)
	assert.True(t, p.Numero("efectivo_en_caja").Equal(decimal.RequireFromString("120000.50")))
}

func TestPayloadNumeroExactitud(t *testing.T) {
	// UseNumber evita el paso por float64: el valor llega textual.
	p := decodificar(t, `{"tarjetas": 0.1}`)
	assert.True(t, p.Numero("tarjetas").Equal(decimal.RequireFromString("0.1")))
}

func TestPayloadDefaults(t *testing.T) {
	p := decodificar(t, `{"observacion": null}`)

	assert.True(t, p.Numero("efectivo_en_caja").IsZero(), "campo ausente vale cero")
	assert.True(t, p.Numero("observacion").IsZero(), "null explícito vale cero")
	assert.Zero(t, p.Entero("tarjetas_cantidad"))
	assert.Nil(t, p.Cadena("cajero_cedula"))

	assert.True(t, p.Presente("observacion"), "null explícito cuenta como presente")
	assert.False(t, p.Presente("efectivo_en_caja"))
}

func TestPayloadID(t *testing.T) {
	p := decodificar(t, `{"sucursalId": 7}`)
	require.NotNil(t, p.ID("sucursal_id"))
	assert.Equal(t, uint(7), *p.ID("sucursal_id"))

	sinID := decodificar(t, `{"sucursal_id": "norte"}`)
	assert.Nil(t, sinID.ID("sucursal_id"))

	cero := decodificar(t, `{"sucursal_id": 0}`)
	assert.Nil(t, cero.ID("sucursal_id"))
}

func TestConveniosItemsAusente(t *testing.T) {
	p := decodificar(t, `{"turno": "A"}`)
	items, presente := p.ConveniosItems()
	assert.Nil(t, items)
	assert.False(t, presente)
}

func TestConveniosItemsVacioEsPresente(t *testing.T) {
	p := decodificar(t, `{"convenios_items": []}`)
	items, presente := p.ConveniosItems()
	assert.True(t, presente, "un arreglo vacío reemplaza las líneas guardadas")
	assert.Empty(t, items)
}

func TestConveniosItemsFiltraFilasVacias(t *testing.T) {
	p := decodificar(t, `{"convenios_items": [
		{"convenio_id": 3, "cantidad": 2, "valor": "15000"},
		{"cantidad": 0, "valor": 0},
		{"nombre": "Sodexo"}
	]}`)

	items, presente := p.ConveniosItems()
	require.True(t, presente)
	require.Len(t, items, 2, "la fila sin cantidad, valor, referencia ni nombre se descarta")

	require.NotNil(t, items[0].ConvenioID)
	assert.Equal(t, uint(3), *items[0].ConvenioID)
	assert.Equal(t, 2, items[0].Cantidad)
	assert.True(t, items[0].Valor.Equal(decimal.NewFromInt(15000)))

	require.NotNil(t, items[1].NombreConvenio)
	assert.Equal(t, "Sodexo", *items[1].NombreConvenio)
}
