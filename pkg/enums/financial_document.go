package enums

import "fmt"

// FinancialDocumentType distinguishes invoices from credit notes.
type FinancialDocumentType string

const (
	FinancialDocumentTypeFactura     FinancialDocumentType = "factura"
	FinancialDocumentTypeNotaCredito FinancialDocumentType = "nota_credito"
)

var validFinancialDocumentTypes = []FinancialDocumentType{
	FinancialDocumentTypeFactura,
	FinancialDocumentTypeNotaCredito,
}

// String implements fmt.Stringer.
func (f FinancialDocumentType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FinancialDocumentType.
func (f FinancialDocumentType) IsValid() bool {
	for _, candidate := range validFinancialDocumentTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFinancialDocumentType converts raw input into a FinancialDocumentType.
func ParseFinancialDocumentType(value string) (FinancialDocumentType, error) {
	for _, candidate := range validFinancialDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid financial document type %q", value)
}

// FinancialDocumentStatus tracks the lifecycle of an emitted document.
type FinancialDocumentStatus string

const (
	FinancialDocumentStatusEmitida FinancialDocumentStatus = "emitida"
)

// String implements fmt.Stringer.
func (f FinancialDocumentStatus) String() string {
	return string(f)
}
