package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

func seedDraft(t *testing.T, docs *fakeDocumentRepo) *entity.Document {
	t.Helper()
	doc := &entity.Document{
		ID:        "doc-1",
		CompanyID: "empresa-1",
		Kind:      entity.DocumentKindInvoice,
		Status:    entity.DocumentStatusDraft,
	}
	require.NoError(t, docs.Create(context.Background(), doc))
	return doc
}

func TestReconcile_ExitoConIdentificadorAnidado(t *testing.T) {
	docs := newFakeDocumentRepo()
	doc := seedDraft(t, docs)
	r := NewReconciler(docs, logger.Nop())

	body := []byte(`{"status":200,"data":{"bill":{"number":"SETP000123","cufe":"abc123","qr":"qr-data","public_url":"https://x/p"}}}`)
	out, err := r.Reconcile(context.Background(), doc, &factus.SendResult{Success: true, StatusCode: 201, Data: body})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "SETP000123", out.ExternalID)
	assert.Equal(t, entity.DocumentStatusSubmitted, doc.Status)
	assert.Equal(t, "abc123", doc.CUFE)
	assert.Equal(t, "qr-data", doc.QRData)
	assert.Equal(t, 1, doc.AttemptCount)
	assert.Empty(t, doc.LastError)
	assert.JSONEq(t, string(body), string(doc.LastResponse), "la respuesta cruda queda como blob de auditoría")
}

func TestReconcile_ExitoConIdentificadorPlano(t *testing.T) {
	docs := newFakeDocumentRepo()
	doc := seedDraft(t, docs)
	r := NewReconciler(docs, logger.Nop())

	out, err := r.Reconcile(context.Background(), doc, &factus.SendResult{
		Success: true, StatusCode: 200, Data: []byte(`{"number":"A1"}`),
	})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "A1", doc.ExternalID)
}

func TestReconcile_ExitoSinIdentificadorEsFalloParcial(t *testing.T) {
	docs := newFakeDocumentRepo()
	doc := seedDraft(t, docs)
	r := NewReconciler(docs, logger.Nop())

	out, err := r.Reconcile(context.Background(), doc, &factus.SendResult{
		Success: true, StatusCode: 200, Data: []byte(`{"status":"ok"}`),
	})

	require.NoError(t, err)
	assert.False(t, out.Success, "éxito HTTP sin identificador no es un documento usable")
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)
	assert.Contains(t, doc.LastError, "identificador")
	assert.Equal(t, 1, doc.AttemptCount)
}

func TestReconcile_FalloNoPisaIdentificadoresPrevios(t *testing.T) {
	docs := newFakeDocumentRepo()
	doc := seedDraft(t, docs)
	doc.ExternalID = "SETP000100"
	doc.CUFE = "cufe-previo"
	doc.AttemptCount = 2
	r := NewReconciler(docs, logger.Nop())

	out, err := r.Reconcile(context.Background(), doc, &factus.SendResult{
		Success: false, StatusCode: 422, Data: []byte(`{"message":"payload inválido"}`), Error: "payload inválido",
	})

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)
	assert.Equal(t, "payload inválido", doc.LastError)
	assert.Equal(t, "SETP000100", doc.ExternalID, "los identificadores previos sobreviven al fallo")
	assert.Equal(t, "cufe-previo", doc.CUFE)
	assert.Equal(t, 3, doc.AttemptCount, "el contador de intentos nunca decrece")
}

func TestReconcile_FalloDePersistenciaSeReportaAparte(t *testing.T) {
	docs := newFakeDocumentRepo()
	doc := seedDraft(t, docs)
	docs.updateErr = errors.New("db caída")
	r := NewReconciler(docs, logger.Nop())

	out, err := r.Reconcile(context.Background(), doc, &factus.SendResult{
		Success: true, StatusCode: 200, Data: []byte(`{"number":"A1"}`),
	})

	require.Error(t, err, "el fallo de persistencia se propaga por el canal de error")
	require.NotNil(t, out, "el resultado de la emisión no se pierde")
	assert.True(t, out.Success)
	assert.Equal(t, "A1", out.ExternalID)
}
