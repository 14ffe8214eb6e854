package factus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOutcome_IdentificadorAnidado(t *testing.T) {
	body := []byte(`{"status":200,"data":{"bill":{"number":"SETP000123","cufe":"abc","qr":"qr-payload","public_url":"https://p/x"}}}`)

	out := ExtractOutcome(body, "invoice")

	assert.Equal(t, "SETP000123", out.ExternalID)
	assert.Equal(t, "abc", out.CUFE)
	assert.Equal(t, "qr-payload", out.QRData)
	assert.Equal(t, "https://p/x", out.PublicURL)
}

func TestExtractOutcome_IdentificadorPlano(t *testing.T) {
	out := ExtractOutcome([]byte(`{"number":"A1"}`), "invoice")

	assert.Equal(t, "A1", out.ExternalID)
}

func TestExtractOutcome_SinIdentificador(t *testing.T) {
	out := ExtractOutcome([]byte(`{"status":"ok","data":{}}`), "invoice")

	assert.Empty(t, out.ExternalID)
}

func TestExtractOutcome_PrioridadDelNumeroPlano(t *testing.T) {
	// number plano gana sobre el anidado y sobre id/document_id/uuid.
	body := []byte(`{"number":"GANA","id":"pierde-1","document_id":"pierde-2","uuid":"pierde-3","data":{"bill":{"number":"pierde-4"}}}`)

	out := ExtractOutcome(body, "invoice")

	assert.Equal(t, "GANA", out.ExternalID)
}

func TestExtractOutcome_CaidaAIdYUuid(t *testing.T) {
	tests := []struct {
		nombre   string
		body     string
		esperado string
	}{
		{"data.<tipo>.id", `{"data":{"bill":{"id":90100}}}`, "90100"},
		{"id plano", `{"id":"doc-1"}`, "doc-1"},
		{"document_id", `{"document_id":"doc-2"}`, "doc-2"},
		{"uuid", `{"uuid":"11111111-2222-3333-4444-555555555555"}`, "11111111-2222-3333-4444-555555555555"},
	}
	for _, tc := range tests {
		t.Run(tc.nombre, func(t *testing.T) {
			out := ExtractOutcome([]byte(tc.body), "invoice")
			assert.Equal(t, tc.esperado, out.ExternalID)
		})
	}
}

func TestExtractOutcome_NotaCreditoUsaSuLlave(t *testing.T) {
	body := []byte(`{"data":{"credit_note":{"number":"NC001","cude":"hash-cude"}}}`)

	out := ExtractOutcome(body, "credit_note")

	assert.Equal(t, "NC001", out.ExternalID)
	assert.Equal(t, "hash-cude", out.CUFE, "el CUDE de la nota viaja en el mismo campo")
}

func TestExtractOutcome_ValoresNoTexto(t *testing.T) {
	// Números JSON se coercionan a string; objetos y arrays se descartan.
	out := ExtractOutcome([]byte(`{"number":990000123,"qr":{"no":"usable"}}`), "invoice")

	assert.Equal(t, "990000123", out.ExternalID)
	assert.Empty(t, out.QRData)
}

func TestExtractOutcome_CuerpoInvalido(t *testing.T) {
	out := ExtractOutcome([]byte(`no-es-json`), "invoice")

	assert.Empty(t, out.ExternalID)
}
