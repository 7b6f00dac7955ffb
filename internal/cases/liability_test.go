package cases

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

func def(pct float64) models.Defendant {
	return models.Defendant{LiabilityPercentage: decimal.NewFromFloat(pct)}
}

func TestLiabilityWarning(t *testing.T) {
	assert.Equal(t, "", LiabilityWarning(nil), "no defendants, no warning")
	assert.Equal(t, "", LiabilityWarning([]models.Defendant{def(100)}))
	assert.Equal(t, "", LiabilityWarning([]models.Defendant{def(60), def(40)}))

	assert.Equal(t,
		"liability under 100% (assigned 90.00%)",
		LiabilityWarning([]models.Defendant{def(90)}))
	assert.Equal(t,
		"liability exceeds 100% (assigned 110.00%)",
		LiabilityWarning([]models.Defendant{def(60), def(50)}))
	assert.Equal(t,
		"liability under 100% (assigned 0.00%)",
		LiabilityWarning([]models.Defendant{def(0)}))
}

func TestLiabilityWarning_FractionalSplit(t *testing.T) {
	// thirds entered to two decimal places never quite reach 100
	got := LiabilityWarning([]models.Defendant{def(33.33), def(33.33), def(33.34)})
	assert.Equal(t, "", got)

	got = LiabilityWarning([]models.Defendant{def(33.33), def(33.33), def(33.33)})
	assert.Equal(t, "liability under 100% (assigned 99.99%)", got)
}
