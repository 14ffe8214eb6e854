package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación del puerto DocumentRepository sobre PostgreSQL.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, company_id, COALESCE(client_id::text, ''), kind, prefix, number,
	reference_code, observation, payment_form, payment_method, emission_date, due_date,
	net_total, tax_total, grand_total,
	status, external_id, cufe, qr_data, public_url, pdf_url, xml_url,
	attempt_count, last_response, last_error, response_at,
	COALESCE(ref_document_id::text, ''), correction_concept,
	created_at, updated_at`

// Create persiste la cabecera del documento en estado borrador.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, company_id, client_id, kind, prefix, number, reference_code, observation,
			payment_form, payment_method, emission_date, due_date, net_total, tax_total, grand_total, status,
			external_id, cufe, qr_data, public_url, pdf_url, xml_url,
			attempt_count, last_error, ref_document_id, correction_concept, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, nullIfEmpty(doc.ClientID), doc.Kind, doc.Prefix, doc.Number,
		doc.ReferenceCode, doc.Observation, doc.PaymentForm, doc.PaymentMethod, doc.EmissionDate, doc.DueDate,
		doc.NetTotal, doc.TaxTotal, doc.GrandTotal, doc.Status,
		doc.ExternalID, doc.CUFE, doc.QRData, doc.PublicURL, doc.PDFURL, doc.XMLURL,
		doc.AttemptCount, doc.LastError, nullIfEmpty(doc.RefDocumentID), doc.CorrectionConcept,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de detalle.
func (r *DocumentRepo) CreateItem(ctx context.Context, item *entity.DocumentItem) error {
	query := `
		INSERT INTO document_items (id, document_id, product_id, quantity, unit_price, discount_rate, tax_rate, subtotal, tax_amount, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.DocumentID, item.ProductID, item.Quantity, item.UnitPrice,
		item.DiscountRate, item.TaxRate, item.Subtotal, item.TaxAmount, item.Total,
	)
	if err != nil {
		return fmt.Errorf("insert document item: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID. nil, nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByExternalID obtiene un documento por su identificador externo.
func (r *DocumentRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE external_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, externalID))
}

// GetItemsByDocumentID devuelve las líneas del documento en orden de inserción.
func (r *DocumentRepo) GetItemsByDocumentID(ctx context.Context, documentID string) ([]*entity.DocumentItem, error) {
	query := `
		SELECT id, document_id, product_id, quantity, unit_price, discount_rate, tax_rate, subtotal, tax_amount, total
		FROM document_items WHERE document_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("query document items: %w", err)
	}
	defer rows.Close()

	var items []*entity.DocumentItem
	for rows.Next() {
		var it entity.DocumentItem
		if err := rows.Scan(
			&it.ID, &it.DocumentID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.DiscountRate, &it.TaxRate, &it.Subtotal, &it.TaxAmount, &it.Total,
		); err != nil {
			return nil, fmt.Errorf("scan document item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateEmissionOutcome persiste el resultado de un intento de emisión.
// Única escritura del reconciliador; incluye prefix y number porque el mapper
// puede haber asignado el consecutivo durante este mismo intento.
func (r *DocumentRepo) UpdateEmissionOutcome(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents SET
			prefix = $2, number = $3, status = $4,
			external_id = $5, cufe = $6, qr_data = $7,
			public_url = $8, pdf_url = $9, xml_url = $10,
			attempt_count = $11, last_response = $12, last_error = $13,
			response_at = $14, updated_at = $15
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		doc.ID, doc.Prefix, doc.Number, doc.Status,
		doc.ExternalID, doc.CUFE, doc.QRData,
		doc.PublicURL, doc.PDFURL, doc.XMLURL,
		doc.AttemptCount, doc.LastResponse, doc.LastError,
		nullIfZeroTime(doc.ResponseAt), doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update emission outcome: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetEmissionStatus devuelve solo los campos de estado, para polling.
func (r *DocumentRepo) GetEmissionStatus(ctx context.Context, id string) (*entity.Document, error) {
	query := `
		SELECT id, status, external_id, cufe, attempt_count, last_error
		FROM documents WHERE id = $1`
	var d entity.Document
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Status, &d.ExternalID, &d.CUFE, &d.AttemptCount, &d.LastError,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get emission status: %w", err)
	}
	return &d, nil
}

func (r *DocumentRepo) scanOne(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var responseAt *time.Time
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.ClientID, &d.Kind, &d.Prefix, &d.Number,
		&d.ReferenceCode, &d.Observation, &d.PaymentForm, &d.PaymentMethod, &d.EmissionDate, &d.DueDate,
		&d.NetTotal, &d.TaxTotal, &d.GrandTotal,
		&d.Status, &d.ExternalID, &d.CUFE, &d.QRData, &d.PublicURL, &d.PDFURL, &d.XMLURL,
		&d.AttemptCount, &d.LastResponse, &d.LastError, &responseAt,
		&d.RefDocumentID, &d.CorrectionConcept,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if responseAt != nil {
		d.ResponseAt = *responseAt
	}
	return &d, nil
}
