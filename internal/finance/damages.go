package finance

import (
	"github.com/shopspring/decimal"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

// DamagesSummary combines special and general damages into a case total.
type DamagesSummary struct {
	SpecialTotal decimal.Decimal `json:"special_damages_total"`
	GeneralTotal decimal.Decimal `json:"general_damages_total"`
	TotalDamages decimal.Decimal `json:"total_damages"`
}

// ComputeDamages derives the damages summary from aggregated medical
// totals, the mileage total, and the case's general-damages record (nil
// means every category is zero). No clamping: negative inputs propagate.
func ComputeDamages(t MedicalTotals, mileage decimal.Decimal, gd *models.GeneralDamages) DamagesSummary {
	special := t.Billed.Add(t.InsuranceAdjusted).Add(mileage)

	general := decimal.Zero
	if gd != nil {
		general = amt(gd.EmotionalDistress).
			Add(amt(gd.PainAndSuffering)).
			Add(amt(gd.LossOfEnjoyment)).
			Add(amt(gd.LossOfConsortium)).
			Add(amt(gd.DutiesUnderDuress))
	}

	return DamagesSummary{
		SpecialTotal: special,
		GeneralTotal: general,
		TotalDamages: special.Add(general),
	}
}
