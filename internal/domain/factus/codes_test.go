package factus_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/facturacion-api/internal/domain/factus"
)

// ──────────────────────────────────────────────────────────────────────────────
// Concepto de corrección: los números 1..5 y sus sinónimos documentados deben
// producir el mismo código; cualquier entrada no reconocida produce 2 (anulación).
// ──────────────────────────────────────────────────────────────────────────────

func TestCorrectionConceptCode_NumerosPasanDirecto(t *testing.T) {
	for n := 1; n <= 5; n++ {
		got := factus.CorrectionConceptCode(fmt.Sprintf("%d", n))
		assert.Equal(t, n, got, "el número %d debe pasar sin cambios", n)
	}
}

func TestCorrectionConceptCode_SinonimosConYSinTilde(t *testing.T) {
	cases := map[string]int{
		"devolución":       1,
		"devolucion":       1,
		"DEVOLUCIÓN":       1,
		"Anulación":        2,
		"anulacion":        2,
		"rebaja":           3,
		"Descuento":        3,
		"ajuste de precio": 4,
		"AJUSTE":           4,
		"otros":            5,
		"  Otros  ":        5,
	}
	for input, want := range cases {
		assert.Equal(t, want, factus.CorrectionConceptCode(input),
			"el sinónimo %q debe mapear a %d", input, want)
	}
}

func TestCorrectionConceptCode_NoReconocidoRetornaAnulacion(t *testing.T) {
	for _, input := range []string{"", "garbanzo", "0", "6", "99", "-1"} {
		assert.Equal(t, 2, factus.CorrectionConceptCode(input),
			"entrada no reconocida %q debe retornar 2 (anulación)", input)
	}
}

// ── Tipo de documento ─────────────────────────────────────────────────────────

func TestDocumentCode(t *testing.T) {
	assert.Equal(t, "01", factus.DocumentCode("invoice"))
	assert.Equal(t, "91", factus.DocumentCode("credit_note"))
	assert.Equal(t, "92", factus.DocumentCode("debit_note"))
	assert.Equal(t, "02", factus.DocumentCode("export"))
	assert.Equal(t, "01", factus.DocumentCode("algo-raro"), "tipo desconocido cae a factura de venta")
}

// ── Organización y régimen ────────────────────────────────────────────────────

func TestOrganizationCode(t *testing.T) {
	assert.Equal(t, 1, factus.OrganizationCode("juridica"))
	assert.Equal(t, 1, factus.OrganizationCode("Jurídica"))
	assert.Equal(t, 2, factus.OrganizationCode("natural"))
	assert.Equal(t, 2, factus.OrganizationCode(""), "por defecto persona natural")
}

func TestTaxRegimeCode(t *testing.T) {
	assert.Equal(t, 1, factus.TaxRegimeCode("responsable de IVA"))
	assert.Equal(t, 2, factus.TaxRegimeCode("no_responsable"))
	assert.Equal(t, 2, factus.TaxRegimeCode(""), "por defecto no responsable")
}

// ── Identificación, pago y unidades ───────────────────────────────────────────

func TestIdentificationTypeCode(t *testing.T) {
	assert.Equal(t, 3, factus.IdentificationTypeCode("CC"))
	assert.Equal(t, 6, factus.IdentificationTypeCode("nit"))
	assert.Equal(t, 7, factus.IdentificationTypeCode("PAS"))
	assert.Equal(t, 3, factus.IdentificationTypeCode("XX"), "sigla desconocida cae a cédula")
}

func TestPaymentCodes(t *testing.T) {
	assert.Equal(t, 1, factus.PaymentFormCode("contado"))
	assert.Equal(t, 2, factus.PaymentFormCode("Crédito"))
	assert.Equal(t, 1, factus.PaymentFormCode(""), "por defecto contado")

	assert.Equal(t, 10, factus.PaymentMethodCode("efectivo"))
	assert.Equal(t, 42, factus.PaymentMethodCode("Transferencia"))
	assert.Equal(t, 48, factus.PaymentMethodCode("tarjeta crédito"))
	assert.Equal(t, 47, factus.PaymentMethodCode("47"), "código numérico pasa directo")
	assert.Equal(t, 10, factus.PaymentMethodCode("trueque"), "medio desconocido cae a efectivo")
}

func TestMeasurementUnitCode(t *testing.T) {
	assert.Equal(t, 70, factus.MeasurementUnitCode("unidad"))
	assert.Equal(t, 24, factus.MeasurementUnitCode("KG"))
	assert.Equal(t, 40, factus.MeasurementUnitCode("litro"))
	assert.Equal(t, 94, factus.MeasurementUnitCode("servicio"))
	assert.Equal(t, 70, factus.MeasurementUnitCode("arroba"), "unidad desconocida cae a 70")
}

// ── Municipios ────────────────────────────────────────────────────────────────

func TestMunicipalityID(t *testing.T) {
	assert.Equal(t, 980, factus.MunicipalityID("11001"), "Bogotá D.C.")
	assert.Equal(t, 112, factus.MunicipalityID("05001"), "Medellín")
	assert.Equal(t, 980, factus.MunicipalityID(""), "vacío cae a Bogotá")
	assert.Equal(t, 980, factus.MunicipalityID("99999"), "DANE desconocido cae a Bogotá")
}
