package fiscal

import "github.com/shopspring/decimal"

// Fiscal rates are fixed constants. The 0.5% contributions fund the
// superintendency (SCVS) and rural social insurance; VAT is 15%.
var (
	rateSCVS  = decimal.NewFromFloat(0.005)
	rateRural = decimal.NewFromFloat(0.005)
	rateVAT   = decimal.NewFromFloat(0.15)
)

// Breakdown carries every amount derived from a premium. The same numbers
// are written to the policy and recorded on any emitted financial document.
type Breakdown struct {
	NetPremium       decimal.Decimal
	ContributionSCVS decimal.Decimal
	RuralInsurance   decimal.Decimal
	IssuanceFee      decimal.Decimal
	OtherCharges     decimal.Decimal
	Subtotal         decimal.Decimal
	VAT              decimal.Decimal
	Total            decimal.Decimal
}

// Compute derives the full fiscal breakdown for a premium. Fees default to
// zero when the caller passes zero values. All amounts round to 2 decimals.
// Other charges are recorded on the breakdown but stay outside the taxable
// subtotal; only the premium, its contributions, and the issuance fee are
// VAT-bearing.
func Compute(netPremium, issuanceFee, otherCharges decimal.Decimal) Breakdown {
	scvs := netPremium.Mul(rateSCVS).Round(2)
	rural := netPremium.Mul(rateRural).Round(2)
	subtotal := netPremium.Add(scvs).Add(rural).Add(issuanceFee).Round(2)
	vat := subtotal.Mul(rateVAT).Round(2)
	total := subtotal.Add(vat).Round(2)

	return Breakdown{
		NetPremium:       netPremium.Round(2),
		ContributionSCVS: scvs,
		RuralInsurance:   rural,
		IssuanceFee:      issuanceFee.Round(2),
		OtherCharges:     otherCharges.Round(2),
		Subtotal:         subtotal,
		VAT:              vat,
		Total:            total,
	}
}

// Taxes returns the combined non-VAT tax amount recorded on documents.
func (b Breakdown) Taxes() decimal.Decimal {
	return b.ContributionSCVS.Add(b.RuralInsurance)
}
