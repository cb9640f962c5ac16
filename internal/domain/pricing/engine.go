package pricing

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Input is the part of a product the engine reads. Nil overrides fall back
// to the settings defaults.
type Input struct {
	Cost                decimal.Decimal
	Freight             decimal.Decimal
	CostBasis           CostBasis
	CustomMarginPercent *decimal.Decimal
	CustomVatPercent    *decimal.Decimal
}

// Breakdown is the unrounded output of Calculate
type Breakdown struct {
	BaseCostUSD         decimal.Decimal `json:"base_cost_usd"`
	BasePriceUSD        decimal.Decimal `json:"base_price_usd"`
	TaxUSD              decimal.Decimal `json:"tax_usd"`
	FinalPriceUSD       decimal.Decimal `json:"final_price_usd"`
	PriceLocalPrimary   decimal.Decimal `json:"price_local_primary"`
	PriceLocalSecondary decimal.Decimal `json:"price_local_secondary"`
	RateUsed            decimal.Decimal `json:"rate_used"`
	MarginPercent       decimal.Decimal `json:"margin_percent"`
	VatPercent          decimal.Decimal `json:"vat_percent"`
}

// Calculate prices a product. It is pure, never fails and applies no
// rounding. Negative inputs count as zero and non-positive rates as 1 so
// that hand-edited data still yields a number.
func Calculate(in Input, s Settings) Breakdown {
	cost := nonNegative(in.Cost)
	freight := nonNegative(in.Freight)
	primary := rateOrOne(s.ExchangeRatePrimary)
	secondary := rateOrOne(s.ExchangeRateSecondary)

	margin := nonNegative(s.DefaultMarginPercent)
	if in.CustomMarginPercent != nil {
		margin = nonNegative(*in.CustomMarginPercent)
	}
	vat := nonNegative(s.DefaultVatPercent)
	if in.CustomVatPercent != nil {
		vat = nonNegative(*in.CustomVatPercent)
	}

	rateUsed := primary
	if in.CostBasis == CostBasisSecondary {
		rateUsed = secondary
	}

	// Cost bought at either rate is restated at the primary rate so every
	// product is priced on the same USD base.
	totalCostLocal := cost.Add(freight).Mul(rateUsed)
	standardized := totalCostLocal.Div(primary)

	basePrice := standardized.Mul(one.Add(margin.Div(hundred)))
	tax := basePrice.Mul(vat.Div(hundred))
	final := basePrice.Add(tax)

	return Breakdown{
		BaseCostUSD:         standardized,
		BasePriceUSD:        basePrice,
		TaxUSD:              tax,
		FinalPriceUSD:       final,
		PriceLocalPrimary:   final.Mul(primary),
		PriceLocalSecondary: final.Mul(secondary),
		RateUsed:            rateUsed,
		MarginPercent:       margin,
		VatPercent:          vat,
	}
}

// EffectiveRates returns the rates Calculate would use for s
func EffectiveRates(s Settings) (primary, secondary decimal.Decimal) {
	return rateOrOne(s.ExchangeRatePrimary), rateOrOne(s.ExchangeRateSecondary)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func rateOrOne(d decimal.Decimal) decimal.Decimal {
	if !d.IsPositive() {
		return one
	}
	return d
}
