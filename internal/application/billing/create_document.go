package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	factuscodes "github.com/tu-usuario/facturacion-api/internal/domain/factus"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// CreateDocumentUseCase registra facturas y notas crédito en estado DRAFT.
// Calcula los totales línea a línea con aritmética decimal; la emisión al
// proveedor es un paso posterior y explícito.
type CreateDocumentUseCase struct {
	docs     repository.DocumentRepository
	clients  repository.ClientRepository
	products repository.ProductRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewCreateDocumentUseCase construye el caso de uso.
func NewCreateDocumentUseCase(
	docs repository.DocumentRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	log *logger.Logger,
) *CreateDocumentUseCase {
	return &CreateDocumentUseCase{
		docs:     docs,
		clients:  clients,
		products: products,
		log:      log,
		now:      time.Now,
	}
}

// Execute crea el documento con sus líneas y devuelve la entidad persistida.
func (uc *CreateDocumentUseCase) Execute(ctx context.Context, companyID string, req dto.CreateDocumentRequest) (*entity.Document, error) {
	kind := req.Kind
	if kind == "" {
		kind = entity.DocumentKindInvoice
	}
	switch kind {
	case entity.DocumentKindInvoice, entity.DocumentKindCreditNote,
		entity.DocumentKindDebitNote, entity.DocumentKindExport:
	default:
		return nil, fmt.Errorf("tipo de documento %q: %w", kind, domain.ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("el documento debe tener al menos un ítem: %w", domain.ErrInvalidInput)
	}

	if req.ClientID != "" {
		client, err := uc.clients.GetByID(ctx, req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("cargar cliente: %w", err)
		}
		if client == nil {
			return nil, fmt.Errorf("cliente %s: %w", req.ClientID, domain.ErrNotFound)
		}
	} else if kind != entity.DocumentKindCreditNote {
		return nil, fmt.Errorf("el documento requiere cliente: %w", domain.ErrInvalidInput)
	}

	now := uc.now()
	emission := now
	if req.EmissionDate != "" {
		parsed, err := time.Parse(dateLayout, req.EmissionDate)
		if err != nil {
			return nil, fmt.Errorf("fecha de emisión inválida %q: %w", req.EmissionDate, domain.ErrInvalidInput)
		}
		emission = parsed
	}
	due := emission.AddDate(0, 0, defaultDueDays)
	if req.DueDate != "" {
		parsed, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("fecha de vencimiento inválida %q: %w", req.DueDate, domain.ErrInvalidInput)
		}
		due = parsed
	}

	doc := &entity.Document{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		ClientID:      req.ClientID,
		Kind:          kind,
		ReferenceCode: uuid.New().String(),
		Observation:   req.Observation,
		PaymentForm:   req.PaymentForm,
		PaymentMethod: req.PaymentMethod,
		EmissionDate:  emission,
		DueDate:       due,
		Status:        entity.DocumentStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if kind == entity.DocumentKindCreditNote {
		doc.RefDocumentID = req.RefDocumentID
		doc.CorrectionConcept = factuscodes.CorrectionConceptCode(req.Correction)
		if req.RefDocumentID != "" {
			ref, err := uc.docs.GetByID(ctx, req.RefDocumentID)
			if err != nil {
				return nil, fmt.Errorf("cargar documento de referencia: %w", err)
			}
			if ref == nil {
				return nil, fmt.Errorf("documento de referencia %s: %w", req.RefDocumentID, domain.ErrNotFound)
			}
			if doc.ClientID == "" {
				doc.ClientID = ref.ClientID
			}
		}
	}

	items := make([]*entity.DocumentItem, 0, len(req.Items))
	net, tax := decimal.Zero, decimal.Zero
	for i, in := range req.Items {
		if in.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("ítem %d: la cantidad debe ser mayor que cero: %w", i+1, domain.ErrInvalidInput)
		}
		product, err := uc.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("cargar producto: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
		}

		price := in.UnitPrice
		if price.Sign() <= 0 {
			price = product.Price
		}
		if price.Sign() <= 0 {
			return nil, fmt.Errorf("ítem %d: el precio unitario debe ser mayor que cero: %w", i+1, domain.ErrInvalidInput)
		}

		taxRate := decimal.Zero
		if product.Taxable {
			taxRate = product.TaxRate
		}

		gross := price.Mul(in.Quantity)
		discount := gross.Mul(in.DiscountRate).Div(hundred)
		subtotal := gross.Sub(discount)
		taxAmount := subtotal.Mul(taxRate).Div(hundred).Round(2)

		items = append(items, &entity.DocumentItem{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			UnitPrice:    price,
			DiscountRate: in.DiscountRate,
			TaxRate:      taxRate,
			Subtotal:     subtotal,
			TaxAmount:    taxAmount,
			Total:        subtotal.Add(taxAmount),
		})
		net = net.Add(subtotal)
		tax = tax.Add(taxAmount)
	}

	doc.NetTotal = net.Round(2)
	doc.TaxTotal = tax.Round(2)
	doc.GrandTotal = net.Add(tax).Round(2)

	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("guardar documento: %w", err)
	}
	for _, item := range items {
		if err := uc.docs.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("guardar línea: %w", err)
		}
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("kind", doc.Kind).
		Str("grand_total", doc.GrandTotal.String()).
		Msg("Documento creado en borrador")

	return doc, nil
}

// Get devuelve el documento con sus líneas, verificando pertenencia a la empresa.
func (uc *CreateDocumentUseCase) Get(ctx context.Context, companyID, documentID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("cargar documento: %w", err)
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if companyID != "" && doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	items, err := uc.docs.GetItemsByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar líneas: %w", err)
	}

	out := &dto.DocumentResponse{
		ID:            doc.ID,
		CompanyID:     doc.CompanyID,
		ClientID:      doc.ClientID,
		Kind:          doc.Kind,
		Prefix:        doc.Prefix,
		Number:        doc.Number,
		ReferenceCode: doc.ReferenceCode,
		EmissionDate:  doc.EmissionDate.Format(dateLayout),
		NetTotal:      doc.NetTotal,
		TaxTotal:      doc.TaxTotal,
		GrandTotal:    doc.GrandTotal,
		Status:        doc.Status,
		ExternalID:    doc.ExternalID,
		CUFE:          doc.CUFE,
		QRData:        doc.QRData,
		PublicURL:     doc.PublicURL,
		AttemptCount:  doc.AttemptCount,
		LastError:     doc.LastError,
		Items:         make([]dto.DocumentItemResponse, 0, len(items)),
	}
	if !doc.DueDate.IsZero() {
		out.DueDate = doc.DueDate.Format(dateLayout)
	}
	if doc.ClientID != "" {
		client, err := uc.clients.GetByID(ctx, doc.ClientID)
		if err == nil && client != nil {
			out.ClientName = client.Name
		}
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.DocumentItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			DiscountRate: it.DiscountRate,
			TaxRate:      it.TaxRate,
			Subtotal:     it.Subtotal,
			Total:        it.Total,
		})
	}
	return out, nil
}
