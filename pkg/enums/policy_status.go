package enums

import "fmt"

// PolicyStatus tracks the lifecycle of a policy.
type PolicyStatus string

const (
	PolicyStatusBorrador      PolicyStatus = "borrador"
	PolicyStatusEmitida       PolicyStatus = "emitida"
	PolicyStatusActiva        PolicyStatus = "activa"
	PolicyStatusCancelada     PolicyStatus = "cancelada"
	PolicyStatusAnulada       PolicyStatus = "anulada"
	PolicyStatusVencida       PolicyStatus = "vencida"
	PolicyStatusPendientePago PolicyStatus = "pendiente_pago"
	PolicyStatusPagada        PolicyStatus = "pagada"
)

var validPolicyStatuses = []PolicyStatus{
	PolicyStatusBorrador,
	PolicyStatusEmitida,
	PolicyStatusActiva,
	PolicyStatusCancelada,
	PolicyStatusAnulada,
	PolicyStatusVencida,
	PolicyStatusPendientePago,
	PolicyStatusPagada,
}

// String implements fmt.Stringer.
func (p PolicyStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PolicyStatus.
func (p PolicyStatus) IsValid() bool {
	for _, candidate := range validPolicyStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status rejects further endorsements
// outside the explicit carve-outs for rehabilitation and voiding.
func (p PolicyStatus) IsTerminal() bool {
	switch p {
	case PolicyStatusCancelada, PolicyStatusAnulada, PolicyStatusVencida:
		return true
	}
	return false
}

// ParsePolicyStatus converts raw input into a PolicyStatus.
func ParsePolicyStatus(value string) (PolicyStatus, error) {
	for _, candidate := range validPolicyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid policy status %q", value)
}
