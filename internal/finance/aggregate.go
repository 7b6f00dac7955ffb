// Package finance holds the pure settlement-accounting computations:
// medical-bill aggregation, damages totals, settlement splits, and the
// statute-of-limitations deadline. Nothing here touches the database or
// logs; every function is a pure function of its inputs.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

// MedicalTotals are the per-case running sums over all medical bills.
type MedicalTotals struct {
	Billed            decimal.Decimal `json:"total_billed"`
	InsurancePaid     decimal.Decimal `json:"total_insurance_paid"`
	InsuranceAdjusted decimal.Decimal `json:"total_insurance_adjusted"`
	MedPayPaid        decimal.Decimal `json:"total_medpay_paid"`
	PatientPaid       decimal.Decimal `json:"total_patient_paid"`
	Reductions        decimal.Decimal `json:"total_reductions"`
	Expenses          decimal.Decimal `json:"total_expenses"`
	BalanceDue        decimal.Decimal `json:"total_balance_due"`
}

// amt treats a missing money field as zero. Never an error.
func amt(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

// AggregateBills sums every money field across the given bills. The sum is
// commutative, so input order does not matter, and an empty list yields
// all-zero totals.
func AggregateBills(bills []models.MedicalBill) MedicalTotals {
	var t MedicalTotals
	t.Billed = decimal.Zero
	t.InsurancePaid = decimal.Zero
	t.InsuranceAdjusted = decimal.Zero
	t.MedPayPaid = decimal.Zero
	t.PatientPaid = decimal.Zero
	t.Reductions = decimal.Zero
	t.Expenses = decimal.Zero
	t.BalanceDue = decimal.Zero

	for _, b := range bills {
		t.Billed = t.Billed.Add(amt(b.AmountBilled))
		t.InsurancePaid = t.InsurancePaid.Add(amt(b.InsurancePaid))
		t.InsuranceAdjusted = t.InsuranceAdjusted.Add(amt(b.InsuranceAdjusted))
		t.MedPayPaid = t.MedPayPaid.Add(amt(b.MedPayPaid))
		t.PatientPaid = t.PatientPaid.Add(amt(b.PatientPaid))
		t.Reductions = t.Reductions.Add(amt(b.Reduction))
		t.Expenses = t.Expenses.Add(amt(b.Expense))
		t.BalanceDue = t.BalanceDue.Add(amt(b.BalanceDue))
	}
	return t
}

// MileageTotal sums the per-entry totals of a case's mileage log.
func MileageTotal(entries []models.MileageLogEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Total)
	}
	return total
}

// EntryTotal computes one mileage entry's total (miles × rate, to cents).
// Callers persist this on every entry write.
func EntryTotal(miles, rate decimal.Decimal) decimal.Decimal {
	return miles.Mul(rate).Round(2)
}
