package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

/* ===== bill aggregation ===== */

func TestAggregateBills_EmptyListIsAllZero(t *testing.T) {
	got := AggregateBills(nil)
	assert.True(t, got.Billed.IsZero())
	assert.True(t, got.InsurancePaid.IsZero())
	assert.True(t, got.InsuranceAdjusted.IsZero())
	assert.True(t, got.MedPayPaid.IsZero())
	assert.True(t, got.PatientPaid.IsZero())
	assert.True(t, got.Reductions.IsZero())
	assert.True(t, got.Expenses.IsZero())
	assert.True(t, got.BalanceDue.IsZero())
}

func TestAggregateBills_NilFieldsCountAsZero(t *testing.T) {
	bills := []models.MedicalBill{
		{AmountBilled: decPtr("1200.50"), InsurancePaid: decPtr("800.00")},
		{AmountBilled: decPtr("99.50")}, // everything else absent
		{},                              // fully blank bill
	}
	got := AggregateBills(bills)

	assert.True(t, got.Billed.Equal(dec("1300.00")), "billed = %s", got.Billed)
	assert.True(t, got.InsurancePaid.Equal(dec("800.00")))
	assert.True(t, got.BalanceDue.IsZero())
}

func TestAggregateBills_OrderDoesNotMatter(t *testing.T) {
	a := models.MedicalBill{AmountBilled: decPtr("10.10"), Reduction: decPtr("1.01")}
	b := models.MedicalBill{AmountBilled: decPtr("20.20"), Expense: decPtr("2.02")}
	c := models.MedicalBill{AmountBilled: decPtr("30.30"), BalanceDue: decPtr("3.03")}

	fwd := AggregateBills([]models.MedicalBill{a, b, c})
	rev := AggregateBills([]models.MedicalBill{c, b, a})

	assert.True(t, fwd.Billed.Equal(rev.Billed))
	assert.True(t, fwd.Reductions.Equal(rev.Reductions))
	assert.True(t, fwd.Expenses.Equal(rev.Expenses))
	assert.True(t, fwd.BalanceDue.Equal(rev.BalanceDue))
}

func TestMileage(t *testing.T) {
	// 12.4 miles at the 2025 IRS rate.
	total := EntryTotal(dec("12.4"), dec("0.70"))
	assert.True(t, total.Equal(dec("8.68")), "entry total = %s", total)

	entries := []models.MileageLogEntry{
		{Total: dec("8.68")},
		{Total: dec("14.00")},
	}
	assert.True(t, MileageTotal(entries).Equal(dec("22.68")))
	assert.True(t, MileageTotal(nil).IsZero())
}

/* ===== damages ===== */

func TestComputeDamages_SpecialIsBilledPlusAdjustedPlusMileage(t *testing.T) {
	totals := MedicalTotals{
		Billed:            dec("5000.00"),
		InsuranceAdjusted: dec("1500.00"),
		InsurancePaid:     dec("4000.00"), // must NOT enter the special total
	}
	got := ComputeDamages(totals, dec("100.00"), nil)

	assert.True(t, got.SpecialTotal.Equal(dec("6600.00")), "special = %s", got.SpecialTotal)
	assert.True(t, got.GeneralTotal.IsZero())
	assert.True(t, got.TotalDamages.Equal(dec("6600.00")))
}

func TestComputeDamages_GeneralSumsFiveCategories(t *testing.T) {
	gd := &models.GeneralDamages{
		EmotionalDistress: decPtr("1000"),
		PainAndSuffering:  decPtr("2500"),
		LossOfEnjoyment:   decPtr("500"),
		// consortium and duress left nil
	}
	got := ComputeDamages(MedicalTotals{}, decimal.Zero, gd)

	assert.True(t, got.GeneralTotal.Equal(dec("4000")))
	assert.True(t, got.TotalDamages.Equal(dec("4000")))
}

func TestComputeDamages_NegativeInputsPropagate(t *testing.T) {
	// A data-entry correction can push a category negative; the summary
	// reflects it rather than clamping.
	gd := &models.GeneralDamages{PainAndSuffering: decPtr("-100")}
	got := ComputeDamages(MedicalTotals{Billed: dec("50")}, decimal.Zero, gd)

	assert.True(t, got.GeneralTotal.Equal(dec("-100")))
	assert.True(t, got.TotalDamages.Equal(dec("-50")))
}

/* ===== settlement split ===== */

func TestSplitSettlement_StandardFee(t *testing.T) {
	got := SplitSettlement(dec("10000"), DefaultFeePercent, dec("500"), dec("1000"))

	assert.True(t, got.AttorneyFee.Equal(dec("3333.00")), "fee = %s", got.AttorneyFee)
	assert.True(t, got.ClientNet.Equal(dec("5167.00")), "net = %s", got.ClientNet)
}

func TestSplitSettlement_NetFlooredAtZero(t *testing.T) {
	// fee 500 + expenses 600 > gross 1000
	got := SplitSettlement(dec("1000"), dec("50"), dec("600"), decimal.Zero)

	assert.True(t, got.AttorneyFee.Equal(dec("500.00")))
	assert.True(t, got.ClientNet.IsZero())
}

func TestSplitSettlement_RoundsFeeToCents(t *testing.T) {
	// 3333.33 * 33.33 / 100 = 1110.998889 -> 1111.00
	got := SplitSettlement(dec("3333.33"), dec("33.33"), decimal.Zero, decimal.Zero)
	assert.True(t, got.AttorneyFee.Equal(dec("1111.00")), "fee = %s", got.AttorneyFee)
}

func TestSplitSettlement_ZeroGross(t *testing.T) {
	got := SplitSettlement(decimal.Zero, DefaultFeePercent, decimal.Zero, decimal.Zero)
	assert.True(t, got.AttorneyFee.IsZero())
	assert.True(t, got.ClientNet.IsZero())
}

/* ===== statute of limitations ===== */

func TestStatuteDeadline(t *testing.T) {
	dol := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	got := StatuteDeadline(&dol)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), *got)
}

func TestStatuteDeadline_LeapDayShifts(t *testing.T) {
	dol := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	got := StatuteDeadline(&dol)
	require.NotNil(t, got)
	// AddDate normalizes Feb 29 + 2y to Mar 1.
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestStatuteDeadline_NilDateOfLoss(t *testing.T) {
	assert.Nil(t, StatuteDeadline(nil))
}
