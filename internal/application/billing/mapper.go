package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	factuscodes "github.com/tu-usuario/facturacion-api/internal/domain/factus"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	// Plazo por defecto cuando la fecha de vencimiento es anterior a la emisión.
	defaultDueDays = 30
)

// Mapper traduce un documento interno (con cliente, líneas y productos) al
// payload del proveedor: consolidación de líneas, resolución de numeración,
// normalización de fechas y traducción de códigos.
type Mapper struct {
	docs      repository.DocumentRepository
	clients   repository.ClientRepository
	products  repository.ProductRepository
	companies repository.CompanyRepository
	numbering *NumberingUseCase
	cfg       config.FactusConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewMapper construye el mapper.
func NewMapper(
	docs repository.DocumentRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	companies repository.CompanyRepository,
	numbering *NumberingUseCase,
	cfg config.FactusConfig,
	log *logger.Logger,
) *Mapper {
	return &Mapper{
		docs:      docs,
		clients:   clients,
		products:  products,
		companies: companies,
		numbering: numbering,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Validate ejecuta la validación pre-vuelo del documento: relaciones y líneas
// completas, sin ninguna llamada de red. Un documento inválido nunca llega al
// proveedor.
func (m *Mapper) Validate(ctx context.Context, documentID string) (*dto.ValidationResult, error) {
	doc, err := m.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("cargar documento: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("documento %s: %w", documentID, domain.ErrNotFound)
	}

	result := &dto.ValidationResult{Valid: true, Errors: []string{}}
	addErr := func(msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	// El cliente solo es opcional en notas crédito: el proveedor puede
	// heredarlo de la factura original referenciada.
	if doc.ClientID == "" {
		if !doc.IsCreditNote() {
			addErr("el documento no tiene cliente asociado")
		}
	} else {
		client, err := m.clients.GetByID(ctx, doc.ClientID)
		if err != nil {
			return nil, fmt.Errorf("cargar cliente: %w", err)
		}
		if client == nil {
			addErr("el cliente asociado no existe")
		} else if client.Identification == "" {
			addErr("el cliente no tiene número de identificación")
		}
	}

	items, err := m.docs.GetItemsByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("cargar líneas: %w", err)
	}
	if len(items) == 0 {
		addErr("el documento debe tener al menos un ítem")
	}
	for i, item := range items {
		if item.Quantity.Sign() <= 0 {
			addErr(fmt.Sprintf("ítem %d: la cantidad debe ser mayor que cero", i+1))
		}
		if item.UnitPrice.Sign() <= 0 {
			addErr(fmt.Sprintf("ítem %d: el precio unitario debe ser mayor que cero", i+1))
		}
	}

	if doc.IsCreditNote() && doc.RefDocumentID != "" {
		ref, err := m.docs.GetByID(ctx, doc.RefDocumentID)
		if err != nil {
			return nil, fmt.Errorf("cargar documento de referencia: %w", err)
		}
		if ref == nil {
			addErr("la factura referenciada no existe")
		} else if ref.ExternalID == "" {
			addErr("la factura referenciada aún no fue validada por el proveedor")
		}
	}

	return result, nil
}

// BuildPayload carga el documento con sus relaciones y construye el payload
// del proveedor. Cualquier relación faltante o numeración irresoluble es un
// error fatal de mapeo, devuelto antes de tocar la red. Si asigna un número
// nuevo lo escribe en doc (Prefix/Number) para que el llamador lo persista.
func (m *Mapper) BuildPayload(ctx context.Context, doc *entity.Document) (*factus.DocumentPayload, error) {
	items, err := m.docs.GetItemsByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar líneas: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("documento sin ítems: %w", domain.ErrInvalidInput)
	}
	items = ConsolidateItems(items)

	var client *entity.Client
	if doc.ClientID != "" {
		client, err = m.clients.GetByID(ctx, doc.ClientID)
		if err != nil {
			return nil, fmt.Errorf("cargar cliente: %w", err)
		}
	}
	if client == nil && !doc.IsCreditNote() {
		return nil, fmt.Errorf("documento sin cliente: %w", domain.ErrInvalidInput)
	}

	company, err := m.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("cargar empresa: %w", err)
	}

	payload := &factus.DocumentPayload{
		Document:          factuscodes.DocumentCode(doc.Kind),
		ReferenceCode:     doc.ReferenceCode,
		Observation:       doc.Observation,
		PaymentForm:       factuscodes.PaymentFormCode(doc.PaymentForm),
		PaymentMethodCode: factuscodes.PaymentMethodCode(doc.PaymentMethod),
	}

	if err := m.resolveNumbering(ctx, doc, payload); err != nil {
		return nil, err
	}

	emission, due := NormalizeDates(doc.EmissionDate, doc.DueDate, m.now())
	payload.EmissionDate = emission.Format(dateLayout)
	payload.EmissionTime = m.now().Format(timeLayout)
	payload.DueDate = due.Format(dateLayout)

	if doc.IsCreditNote() {
		payload.CorrectionConceptCode = factuscodes.CorrectionConceptCode(strconv.Itoa(doc.CorrectionConcept))
		if doc.RefDocumentID != "" {
			ref, err := m.docs.GetByID(ctx, doc.RefDocumentID)
			if err != nil {
				return nil, fmt.Errorf("cargar documento de referencia: %w", err)
			}
			if ref == nil || ref.ExternalID == "" {
				return nil, fmt.Errorf("factura referenciada sin identificador externo: %w", domain.ErrInvalidInput)
			}
			payload.BillID = ref.ExternalID
		} else {
			// Nota crédito sin referencia: el proveedor exige el periodo facturado.
			payload.BillingPeriod = &factus.BillingPeriod{
				StartDate: emission.Format(dateLayout),
				StartTime: "00:00:00",
				EndDate:   emission.Format(dateLayout),
				EndTime:   "23:59:59",
			}
		}
	}

	if company != nil {
		payload.Establishment = &factus.Establishment{
			Name:           company.Name,
			Address:        company.Address,
			Phone:          company.Phone,
			Email:          company.Email,
			MunicipalityID: factuscodes.MunicipalityID(company.MunicipalityCode),
		}
	}
	if client != nil {
		payload.Customer = m.buildCustomer(client)
	}

	payload.Items = make([]factus.ItemPayload, 0, len(items))
	for _, item := range items {
		line, err := m.buildItem(ctx, item)
		if err != nil {
			return nil, err
		}
		payload.Items = append(payload.Items, *line)
	}

	return payload, nil
}

// resolveNumbering reutiliza el número ya asignado al documento (re-emisión)
// o asigna uno nuevo del rango activo. Si la resolución local falla cae al
// rango por defecto de la configuración; sin ese fallback el mapeo es fatal.
func (m *Mapper) resolveNumbering(ctx context.Context, doc *entity.Document, payload *factus.DocumentPayload) error {
	if doc.Number != "" {
		payload.Prefix = doc.Prefix
		payload.Number = doc.Number
		return nil
	}

	r, err := m.numbering.GetActiveRange(ctx, doc.CompanyID, doc.Kind)
	if err == nil {
		var n int64
		n, err = m.numbering.Allocate(ctx, r.ID)
		if err == nil {
			doc.Prefix = r.Prefix
			doc.Number = strconv.FormatInt(n, 10)
			payload.Prefix = doc.Prefix
			payload.Number = doc.Number
			return nil
		}
	}

	if m.cfg.DefaultRangeID != "" {
		m.log.Warn().Err(err).Str("document_id", doc.ID).
			Msg("No se pudo resolver rango local, usando rango por defecto del proveedor")
		payload.NumberingRangeID = m.cfg.DefaultRangeID
		return nil
	}
	if errors.Is(err, domain.ErrRangeExhausted) {
		return fmt.Errorf("rango de numeración agotado: %w", err)
	}
	return fmt.Errorf("resolver numeración: %w", err)
}

func (m *Mapper) buildCustomer(client *entity.Client) *factus.CustomerPayload {
	c := &factus.CustomerPayload{
		Identification:       client.Identification,
		Address:              client.Address,
		Email:                client.Email,
		Phone:                client.Phone,
		LegalOrganizationID:  factuscodes.OrganizationCode(client.OrganizationType),
		TributeID:            factuscodes.TaxRegimeCode(client.TaxRegime),
		IdentificationTypeID: factuscodes.IdentificationTypeCode(client.IdentificationType),
		MunicipalityID:       factuscodes.MunicipalityID(client.MunicipalityCode),
	}
	if client.OrganizationType == entity.OrgTypeJuridica {
		c.Company = client.Name
		c.DV = client.VerificationDigit
	} else {
		c.Names = client.Name
	}
	return c
}

func (m *Mapper) buildItem(ctx context.Context, item *entity.DocumentItem) (*factus.ItemPayload, error) {
	product, err := m.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("cargar producto %s: %w", item.ProductID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s no existe: %w", item.ProductID, domain.ErrNotFound)
	}

	isExcluded := 0
	if !product.Taxable {
		isExcluded = 1
	}
	standardCode := 1
	if n, err := strconv.Atoi(product.UNSPSCCode); err == nil && n > 0 {
		standardCode = n
	}

	return &factus.ItemPayload{
		CodeReference:    product.SKU,
		Name:             product.Name,
		Quantity:         item.Quantity.InexactFloat64(),
		Price:            item.UnitPrice.InexactFloat64(),
		DiscountRate:     item.DiscountRate.StringFixed(2),
		TaxRate:          item.TaxRate.StringFixed(2),
		IsExcluded:       isExcluded,
		UnitMeasureID:    factuscodes.MeasurementUnitCode(product.UnitMeasure),
		StandardCodeID:   standardCode,
		TributeID:        1, // IVA
		WithholdingTaxes: []any{},
	}, nil
}

// ConsolidateItems agrupa las líneas por producto sumando cantidades. Los
// demás campos conservan los valores de la primera aparición; los totales de
// la línea consolidada se recalculan sobre la cantidad sumada. Protege contra
// filas duplicadas generadas aguas arriba.
func ConsolidateItems(items []*entity.DocumentItem) []*entity.DocumentItem {
	byProduct := make(map[string]*entity.DocumentItem, len(items))
	out := make([]*entity.DocumentItem, 0, len(items))
	for _, item := range items {
		existing, ok := byProduct[item.ProductID]
		if !ok {
			clone := *item
			byProduct[item.ProductID] = &clone
			out = append(out, &clone)
			continue
		}
		existing.Quantity = existing.Quantity.Add(item.Quantity)
		gross := existing.UnitPrice.Mul(existing.Quantity)
		discount := gross.Mul(existing.DiscountRate).Div(hundred)
		existing.Subtotal = gross.Sub(discount)
		existing.TaxAmount = existing.Subtotal.Mul(existing.TaxRate).Div(hundred).Round(2)
		existing.Total = existing.Subtotal.Add(existing.TaxAmount)
	}
	return out
}

// NormalizeDates aplica las reglas de saneo de fechas: una emisión futura se
// recorta a hoy; un vencimiento anterior a la emisión (ya recortada) se corre
// a emisión + 30 días. Hoy se calcula en la zona horaria del reloj recibido
// (el servicio corre en UTC-5).
func NormalizeDates(emission, due, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if emission.IsZero() || emission.After(now) {
		emission = today
	}
	if due.Before(emission) {
		due = emission.AddDate(0, 0, defaultDueDays)
	}
	return emission, due
}
