package cases

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

var fullLiability = decimal.NewFromInt(100)

// LiabilityWarning checks the advisory sum-to-100 rule over a case's
// defendants. It returns a warning string when the assigned percentages
// do not add up to 100, and "" otherwise. The check never blocks a save;
// responses carry the warning and the UI decides how loudly to show it.
func LiabilityWarning(defendants []models.Defendant) string {
	if len(defendants) == 0 {
		return ""
	}
	sum := decimal.Zero
	for _, d := range defendants {
		sum = sum.Add(d.LiabilityPercentage)
	}
	switch {
	case sum.LessThan(fullLiability):
		return fmt.Sprintf("liability under 100%% (assigned %s%%)", sum.StringFixed(2))
	case sum.GreaterThan(fullLiability):
		return fmt.Sprintf("liability exceeds 100%% (assigned %s%%)", sum.StringFixed(2))
	default:
		return ""
	}
}
