package finance

import "github.com/shopspring/decimal"

// DefaultFeePercent is the firm's standard contingency fee.
var DefaultFeePercent = decimal.NewFromFloat(33.33)

var hundred = decimal.NewFromInt(100)

// SettlementSplit holds the two derived settlement figures.
type SettlementSplit struct {
	AttorneyFee decimal.Decimal `json:"attorney_fee"`
	ClientNet   decimal.Decimal `json:"client_net"`
}

// SplitSettlement computes the attorney fee from the gross amount and fee
// percentage, then nets out case expenses and medical liens.
//
// ClientNet is floored at zero: the client's share is never reported
// negative even when fee + expenses + liens exceed the gross amount. This
// can mask an over-lien situation, and that is the intended behavior.
func SplitSettlement(gross, feePercent, expenses, liens decimal.Decimal) SettlementSplit {
	fee := gross.Mul(feePercent).Div(hundred).Round(2)

	net := gross.Sub(fee).Sub(expenses).Sub(liens).Round(2)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return SettlementSplit{AttorneyFee: fee, ClientNet: net}
}
