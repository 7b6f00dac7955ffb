package docgen

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

func dp(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func fixtureInput() *Input {
	dol := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	defendantID := uuid.New()

	cl := models.Client{
		ID:        clientID,
		FirstName: "Maria",
		LastName:  "Santos",
		Phone:     "555-0101",
	}
	def := models.Defendant{
		ID:                  defendantID,
		Name:                "John Driver",
		LiabilityPercentage: decimal.NewFromInt(100),
		IsPolicyholder:      true,
	}

	return &Input{
		Case: models.Case{
			CaseNumber: "PI-2025-ABC123",
			State:      "WA",
			County:     "King",
			DateOfLoss: &dol,
			Defendants: []models.Defendant{def},
		},
		Client:     cl,
		AllClients: []models.Client{cl},
		Defendant:  &def,
		Bills: []models.MedicalBill{
			{AmountBilled: dp(5000), InsuranceAdjusted: dp(1500)},
			{AmountBilled: dp(250.50)},
		},
		Mileage: []models.MileageLogEntry{{Total: decimal.NewFromFloat(49.50)}},
		FirstParty: []models.FirstPartyClaim{{
			ClientID:     clientID,
			ClaimNumber:  "FP-001",
			PIPAvailable: dp(10000),
			PIPUsed:      dp(2500),
			Carrier:      models.InsuranceCarrier{Name: "Acme Mutual"},
		}},
		ThirdParty: []models.ThirdPartyClaim{{
			DefendantID:  defendantID,
			ClaimNumber:  "TP-001",
			PolicyLimits: dp(25000),
			Carrier:      models.InsuranceCarrier{Name: "Evergreen Insurance"},
		}},
		Now: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAssemble_EveryKeyPresent_NeverNil(t *testing.T) {
	// Worst case: an almost-empty input. Every declared key must still be
	// in the map with its default, and nothing may be nil.
	out := Assemble(&Input{Now: time.Now()})

	for _, k := range Keys() {
		v, ok := out[k]
		require.True(t, ok, "missing key %q", k)
		require.NotNil(t, v, "nil value for %q", k)
	}

	assert.Equal(t, "N/A", out["case_number"])
	assert.Equal(t, "N/A", out["client_name"])
	assert.Equal(t, "", out["date_of_loss"])
	assert.Equal(t, "", out["statute_deadline"])
	assert.Equal(t, float64(0), out["total_billed"])
	assert.Equal(t, "$0.00", out["total_billed_formatted"])
	assert.Equal(t, "33.33", out["attorney_fee_percent"])
	assert.Equal(t, "0.00%", out["defendant_liability"])
}

func TestAssemble_LiabilityIsPercentShapedEitherWay(t *testing.T) {
	// With and without a defendant, templates see the same "NN.NN%" shape.
	in := fixtureInput()
	out := Assemble(in)
	assert.Equal(t, "100.00%", out["defendant_liability"])

	in.Defendant = nil
	out = Assemble(in)
	assert.Equal(t, "0.00%", out["defendant_liability"])
}

func TestAssemble_MoneyKeysEmitRawAndFormatted(t *testing.T) {
	out := Assemble(fixtureInput())

	assert.Equal(t, 5250.50, out["total_billed"])
	assert.Equal(t, "$5,250.50", out["total_billed_formatted"])
	assert.Equal(t, 1500.0, out["total_insurance_adjusted"])
	// special = billed + adjusted + mileage
	assert.Equal(t, 6800.0, out["special_damages_total"])
	assert.Equal(t, "$6,800.00", out["special_damages_total_formatted"])
}

func TestAssemble_DatesUseLongForm(t *testing.T) {
	out := Assemble(fixtureInput())

	assert.Equal(t, "March 15, 2023", out["date_of_loss"])
	assert.Equal(t, "March 15, 2025", out["statute_deadline"])
	assert.Equal(t, "August 1, 2025", out["current_date"])
	assert.Equal(t, out["current_date"], out["full_date"])
}

func TestAssemble_ClaimSelectionFollowsClientAndDefendant(t *testing.T) {
	in := fixtureInput()
	out := Assemble(in)

	assert.Equal(t, "Acme Mutual", out["fp_carrier_name"])
	assert.Equal(t, "FP-001", out["fp_claim_number"])
	assert.Equal(t, 10000.0, out["pip_available"])
	assert.Equal(t, "Evergreen Insurance", out["tp_carrier_name"])
	assert.Equal(t, 25000.0, out["policy_limits"])

	// A client with no first-party claim falls back to defaults.
	in.Client = models.Client{ID: uuid.New(), FirstName: "Co", LastName: "Client"}
	out = Assemble(in)
	assert.Equal(t, "N/A", out["fp_carrier_name"])
	assert.Equal(t, float64(0), out["pip_available"])
}

func TestAssemble_PolicyholderFallsBackToNamedHolder(t *testing.T) {
	in := fixtureInput()
	out := Assemble(in)
	assert.Equal(t, "John Driver", out["policyholder_name"])

	in.Defendant.IsPolicyholder = false
	in.Defendant.PolicyholderName = "Jane Owner"
	out = Assemble(in)
	assert.Equal(t, "Jane Owner", out["policyholder_name"])
}

func TestAssemble_IsDeterministic(t *testing.T) {
	in := fixtureInput()
	assert.Equal(t, Assemble(in), Assemble(in))
}

func TestAssemble_LiabilityWarningMirrored(t *testing.T) {
	in := fixtureInput()
	out := Assemble(in)
	assert.Equal(t, "", out["liability_warning"])

	in.Case.Defendants[0].LiabilityPercentage = decimal.NewFromInt(80)
	out = Assemble(in)
	assert.Contains(t, out["liability_warning"], "under 100%")
}

func TestKeys_SortedAndIncludesFormattedVariants(t *testing.T) {
	keys := Keys()
	require.NotEmpty(t, keys)
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "gross_settlement")
	assert.Contains(t, keys, "gross_settlement_formatted")
	assert.Contains(t, keys, "client_name")
	assert.NotContains(t, keys, "client_name_formatted")
}
