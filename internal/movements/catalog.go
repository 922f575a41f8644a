package movements

import "github.com/millennialbroker/broker-backend/pkg/enums"

// Direction classifies how a movement is allowed to move the numeric value
// it targets. Increase/decrease variants enforce strict inequality against
// the policy's current value; neutral movements carry no direction rule.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionNeutral  Direction = "neutral"
)

// Precondition names the policy-status requirement a movement type carries.
type Precondition string

const (
	// PreconditionNone admits any non-terminal policy status.
	PreconditionNone Precondition = "none"
	// PreconditionActiva requires the policy to currently be active.
	PreconditionActiva Precondition = "activa"
	// PreconditionNotActiva requires the policy to currently not be active.
	PreconditionNotActiva Precondition = "not_activa"
	// PreconditionCancelada requires the policy to currently be cancelled.
	PreconditionCancelada Precondition = "cancelada"
	// PreconditionConfirmVoid requires the operator confirmation flag and
	// admits any status, terminal ones included.
	PreconditionConfirmVoid Precondition = "confirm_void"
)

// CatalogEntry is the contract for one movement type: which policy fields it
// may write, what it requires of the policy status, the status it produces,
// and whether it can emit a financial derivative.
type CatalogEntry struct {
	Type               enums.MovementType
	Direction          Direction
	Precondition       Precondition
	ResultingStatus    *enums.PolicyStatus
	WritesPremium      bool
	WritesInsuredSum   bool
	WritesBeneficiary  bool
	WritesObservations bool
	RequiresPremium    bool
	RequiresInsuredSum bool
	// RequiresAnyValue admits a movement only when at least one of the new
	// premium or new insured sum is present, without pinning which.
	RequiresAnyValue bool
	// EmitsDerivative marks types that may produce an invoice or credit
	// note when the caller opts in and a premium was computed.
	EmitsDerivative bool
}

// DerivativeType maps the entry's direction to the document it emits.
// Increases and neutral renewals invoice; decreases produce credit notes.
func (e CatalogEntry) DerivativeType() enums.FinancialDocumentType {
	if e.Direction == DirectionDecrease {
		return enums.FinancialDocumentTypeNotaCredito
	}
	return enums.FinancialDocumentTypeFactura
}

func statusPtr(s enums.PolicyStatus) *enums.PolicyStatus {
	return &s
}

// catalog is the single source of truth for movement-type contracts. Call
// sites consult it through Lookup instead of branching per type.
var catalog = map[enums.MovementType]CatalogEntry{
	enums.MovementTypeActivacion: {
		Type:            enums.MovementTypeActivacion,
		Direction:       DirectionNeutral,
		Precondition:    PreconditionNotActiva,
		ResultingStatus: statusPtr(enums.PolicyStatusActiva),
	},
	enums.MovementTypeAnexoAclaratorio: {
		Type:               enums.MovementTypeAnexoAclaratorio,
		Direction:          DirectionNeutral,
		Precondition:       PreconditionActiva,
		WritesObservations: true,
	},
	enums.MovementTypeAumentoPrima: {
		Type:            enums.MovementTypeAumentoPrima,
		Direction:       DirectionIncrease,
		Precondition:    PreconditionActiva,
		WritesPremium:   true,
		RequiresPremium: true,
		EmitsDerivative: true,
	},
	enums.MovementTypeDisminucionPrima: {
		Type:            enums.MovementTypeDisminucionPrima,
		Direction:       DirectionDecrease,
		Precondition:    PreconditionActiva,
		WritesPremium:   true,
		RequiresPremium: true,
		EmitsDerivative: true,
	},
	enums.MovementTypeAumentoSumaAsegurada: {
		Type:               enums.MovementTypeAumentoSumaAsegurada,
		Direction:          DirectionIncrease,
		Precondition:       PreconditionActiva,
		WritesInsuredSum:   true,
		WritesPremium:      true,
		RequiresInsuredSum: true,
		EmitsDerivative:    true,
	},
	enums.MovementTypeDisminucionSumaAsegurada: {
		Type:               enums.MovementTypeDisminucionSumaAsegurada,
		Direction:          DirectionDecrease,
		Precondition:       PreconditionActiva,
		WritesInsuredSum:   true,
		WritesPremium:      true,
		RequiresInsuredSum: true,
		EmitsDerivative:    true,
	},
	enums.MovementTypeCancelacion: {
		Type:            enums.MovementTypeCancelacion,
		Direction:       DirectionNeutral,
		Precondition:    PreconditionNone,
		ResultingStatus: statusPtr(enums.PolicyStatusCancelada),
	},
	enums.MovementTypeAnulacion: {
		Type:            enums.MovementTypeAnulacion,
		Direction:       DirectionNeutral,
		Precondition:    PreconditionConfirmVoid,
		ResultingStatus: statusPtr(enums.PolicyStatusAnulada),
	},
	enums.MovementTypeRehabilitacion: {
		Type:            enums.MovementTypeRehabilitacion,
		Direction:       DirectionNeutral,
		Precondition:    PreconditionCancelada,
		ResultingStatus: statusPtr(enums.PolicyStatusActiva),
	},
	enums.MovementTypeEndosoBeneficiario: {
		Type:              enums.MovementTypeEndosoBeneficiario,
		Direction:         DirectionNeutral,
		Precondition:      PreconditionNone,
		WritesBeneficiary: true,
	},
	enums.MovementTypeRenovacion: {
		Type:             enums.MovementTypeRenovacion,
		Direction:        DirectionNeutral,
		Precondition:     PreconditionNone,
		WritesPremium:    true,
		WritesInsuredSum: true,
		RequiresAnyValue: true,
		EmitsDerivative:  true,
	},
}

// Lookup returns the catalog entry for the given movement type.
func Lookup(mt enums.MovementType) (CatalogEntry, bool) {
	entry, ok := catalog[mt]
	return entry, ok
}

// Catalog returns every entry, keyed by movement type. The returned map is
// a copy; mutating it does not affect the canonical table.
func Catalog() map[enums.MovementType]CatalogEntry {
	out := make(map[enums.MovementType]CatalogEntry, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}
