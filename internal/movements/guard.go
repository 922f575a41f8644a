package movements

import (
	"fmt"

	"github.com/millennialbroker/broker-backend/pkg/enums"
)

// GuardDecision is the outcome of evaluating a movement type against the
// policy's current status. The guard never mutates anything.
type GuardDecision struct {
	Allowed bool
	Reason  string
	// ResultingStatus is set when the movement changes the policy status.
	ResultingStatus *enums.PolicyStatus
	// NoOp marks an allowed decision that requires no status write, used
	// when voiding an already-void policy a second time.
	NoOp bool
}

func deny(reason string) GuardDecision {
	return GuardDecision{Allowed: false, Reason: reason}
}

func allow(result *enums.PolicyStatus) GuardDecision {
	return GuardDecision{Allowed: true, ResultingStatus: result}
}

// EvaluateTransition decides whether a policy in the given status may accept
// the given movement type.
//
// Terminal statuses (cancelada, anulada, vencida) reject every movement
// except rehabilitation (cancelada only) and voiding, which is admitted from
// any status when the operator confirmation flag is set. A repeated void on
// an already-void policy is treated as an allowed no-op rather than an error.
func EvaluateTransition(status enums.PolicyStatus, mt enums.MovementType, confirmVoid bool) GuardDecision {
	entry, ok := Lookup(mt)
	if !ok {
		return deny(fmt.Sprintf("unknown movement type %q", mt))
	}

	switch entry.Precondition {
	case PreconditionConfirmVoid:
		if !confirmVoid {
			return deny("voiding a policy requires explicit confirmation")
		}
		if status == enums.PolicyStatusAnulada {
			return GuardDecision{Allowed: true, NoOp: true}
		}
		return allow(entry.ResultingStatus)

	case PreconditionCancelada:
		if status != enums.PolicyStatusCancelada {
			return deny(fmt.Sprintf("rehabilitation requires a cancelled policy, current status is %q", status))
		}
		return allow(entry.ResultingStatus)
	}

	if status.IsTerminal() {
		return deny(fmt.Sprintf("policy status %q accepts no further movements", status))
	}

	switch entry.Precondition {
	case PreconditionActiva:
		if status != enums.PolicyStatusActiva {
			return deny(fmt.Sprintf("movement %q requires an active policy, current status is %q", mt, status))
		}
	case PreconditionNotActiva:
		if status == enums.PolicyStatusActiva {
			return deny("policy is already active")
		}
	}

	return allow(entry.ResultingStatus)
}
