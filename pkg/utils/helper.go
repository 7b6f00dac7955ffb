package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

// LogCaseActivity inserts an audit record into case_activities.
// Used to track stage changes, settlement saves, and generated documents.
// Errors are ignored on purpose (best-effort logging).
func LogCaseActivity(
	ctx context.Context,
	db *gorm.DB,
	caseID, actorID uuid.UUID,
	action string,
	oldStage, newStage models.CaseStage,
	detail string,
) {
	_ = db.WithContext(ctx).Create(&models.CaseActivity{
		CaseID:    caseID,
		ActorID:   actorID,
		Action:    action,
		OldStage:  oldStage,
		NewStage:  newStage,
		Detail:    detail,
		CreatedAt: time.Now(),
	}).Error
}
