package enums

import "fmt"

// MovementType identifies a catalogued policy movement.
type MovementType string

const (
	MovementTypeActivacion               MovementType = "activacion"
	MovementTypeAnexoAclaratorio         MovementType = "anexo_aclaratorio"
	MovementTypeAumentoPrima             MovementType = "aumento_prima"
	MovementTypeDisminucionPrima         MovementType = "disminucion_prima"
	MovementTypeAumentoSumaAsegurada     MovementType = "aumento_suma_asegurada"
	MovementTypeDisminucionSumaAsegurada MovementType = "disminucion_suma_asegurada"
	MovementTypeCancelacion              MovementType = "cancelacion"
	MovementTypeAnulacion                MovementType = "anulacion"
	MovementTypeRehabilitacion           MovementType = "rehabilitacion"
	MovementTypeEndosoBeneficiario       MovementType = "endoso_beneficiario"
	MovementTypeRenovacion               MovementType = "renovacion"
)

var validMovementTypes = []MovementType{
	MovementTypeActivacion,
	MovementTypeAnexoAclaratorio,
	MovementTypeAumentoPrima,
	MovementTypeDisminucionPrima,
	MovementTypeAumentoSumaAsegurada,
	MovementTypeDisminucionSumaAsegurada,
	MovementTypeCancelacion,
	MovementTypeAnulacion,
	MovementTypeRehabilitacion,
	MovementTypeEndosoBeneficiario,
	MovementTypeRenovacion,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
