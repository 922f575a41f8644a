package movements

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/millennialbroker/broker-backend/pkg/enums"
)

func TestCatalogCoversEveryMovementType(t *testing.T) {
	for mt := range Catalog() {
		require.True(t, mt.IsValid(), "catalog entry for unknown type %q", mt)
	}

	for _, mt := range []enums.MovementType{
		enums.MovementTypeActivacion,
		enums.MovementTypeAnexoAclaratorio,
		enums.MovementTypeAumentoPrima,
		enums.MovementTypeDisminucionPrima,
		enums.MovementTypeAumentoSumaAsegurada,
		enums.MovementTypeDisminucionSumaAsegurada,
		enums.MovementTypeCancelacion,
		enums.MovementTypeAnulacion,
		enums.MovementTypeRehabilitacion,
		enums.MovementTypeEndosoBeneficiario,
		enums.MovementTypeRenovacion,
	} {
		_, ok := Lookup(mt)
		require.True(t, ok, "missing catalog entry for %q", mt)
	}
}

func TestCatalogDerivativeTypes(t *testing.T) {
	increase, _ := Lookup(enums.MovementTypeAumentoPrima)
	require.Equal(t, enums.FinancialDocumentTypeFactura, increase.DerivativeType())

	decrease, _ := Lookup(enums.MovementTypeDisminucionPrima)
	require.Equal(t, enums.FinancialDocumentTypeNotaCredito, decrease.DerivativeType())

	renewal, _ := Lookup(enums.MovementTypeRenovacion)
	require.Equal(t, enums.FinancialDocumentTypeFactura, renewal.DerivativeType())
}

func TestGuardVoidRequiresConfirmation(t *testing.T) {
	decision := EvaluateTransition(enums.PolicyStatusActiva, enums.MovementTypeAnulacion, false)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reason, "confirmation")

	decision = EvaluateTransition(enums.PolicyStatusActiva, enums.MovementTypeAnulacion, true)
	require.True(t, decision.Allowed)
	require.Equal(t, enums.PolicyStatusAnulada, *decision.ResultingStatus)

	decision = EvaluateTransition(enums.PolicyStatusAnulada, enums.MovementTypeAnulacion, true)
	require.True(t, decision.Allowed)
	require.True(t, decision.NoOp)
}
