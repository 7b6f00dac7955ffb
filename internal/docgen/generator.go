package docgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/internal/storage"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/utils"
)

// ItemStatus tracks one batch item through the pipeline.
type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemGenerating ItemStatus = "generating"
	ItemSuccess    ItemStatus = "success"
	ItemError      ItemStatus = "error"
)

// BatchItem is the per-instance progress record returned to the caller.
type BatchItem struct {
	Name       string     `json:"name"`
	Status     ItemStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
}

// BatchResult summarizes a generation run.
type BatchResult struct {
	Items        []BatchItem `json:"items"`
	SuccessCount int         `json:"success_count"`
	ErrorCount   int         `json:"error_count"`
}

// GenerateRequest selects what to generate.
type GenerateRequest struct {
	CaseID      uuid.UUID
	ActorID     uuid.UUID
	Template    string // template/category name, e.g. "lor", "demand", "records_request"
	Mode        Mode
	ClientIDs   []uuid.UUID // selection order is processing order; empty = all clients
	DefendantID *uuid.UUID
}

// Generator runs the document pipeline: assemble, render, persist, audit,
// advance. Instances are processed one at a time in selection order; a
// failing instance is recorded and the batch moves on.
type Generator struct {
	db       *gorm.DB
	sb       *storage.Supabase
	renderer *Renderer
	log      zerolog.Logger
}

func NewGenerator(db *gorm.DB, sb *storage.Supabase, renderer *Renderer, log zerolog.Logger) *Generator {
	return &Generator{db: db, sb: sb, renderer: renderer, log: log}
}

// caseRecords is everything the assembler needs, fetched once per batch.
type caseRecords struct {
	cs        models.Case
	bills     []models.MedicalBill
	mileage   []models.MileageLogEntry
	gd        *models.GeneralDamages
	fp        []models.FirstPartyClaim
	tp        []models.ThirdPartyClaim
	providers []models.MedicalProvider
}

func (g *Generator) load(caseID uuid.UUID) (*caseRecords, error) {
	var rec caseRecords

	err := g.db.
		Preload("Clients", func(db *gorm.DB) *gorm.DB { return db.Order("client_number ASC") }).
		Preload("Defendants").
		Preload("Settlement").
		First(&rec.cs, "id = ?", caseID).Error
	if err != nil {
		return nil, err
	}

	if err := g.db.Where("case_id = ?", caseID).Preload("Provider").Find(&rec.bills).Error; err != nil {
		return nil, err
	}
	if err := g.db.Where("case_id = ?", caseID).Find(&rec.mileage).Error; err != nil {
		return nil, err
	}
	var gd models.GeneralDamages
	switch err := g.db.Where("case_id = ?", caseID).First(&gd).Error; {
	case err == nil:
		rec.gd = &gd
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}
	if err := g.db.Where("case_id = ?", caseID).Preload("Carrier").Preload("Adjuster").Find(&rec.fp).Error; err != nil {
		return nil, err
	}
	if err := g.db.Where("case_id = ?", caseID).Preload("Carrier").Preload("Adjuster").Find(&rec.tp).Error; err != nil {
		return nil, err
	}

	// Distinct providers referenced by the case's bills, for records requests.
	seen := map[uuid.UUID]bool{}
	for _, b := range rec.bills {
		if !seen[b.ProviderID] {
			seen[b.ProviderID] = true
			rec.providers = append(rec.providers, b.Provider)
		}
	}

	return &rec, nil
}

// Generate runs one batch. The returned error covers setup failures only
// (case not found, bad mode); per-instance failures live in the result.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*BatchResult, error) {
	rec, err := g.load(req.CaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("case %s not found", req.CaseID)
		}
		return nil, err
	}

	clients := selectClients(rec.cs.Clients, req.ClientIDs)
	var defendant *models.Defendant
	if req.DefendantID != nil {
		for i := range rec.cs.Defendants {
			if rec.cs.Defendants[i].ID == *req.DefendantID {
				defendant = &rec.cs.Defendants[i]
			}
		}
	} else if len(rec.cs.Defendants) > 0 {
		defendant = &rec.cs.Defendants[0]
	}

	instances, err := Instances(req.Mode, req.Template, clients, rec.providers)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Items: make([]BatchItem, len(instances))}
	for i, inst := range instances {
		result.Items[i] = BatchItem{Name: inst.Name, Status: ItemPending}
	}

	now := time.Now()
	for i, inst := range instances {
		result.Items[i].Status = ItemGenerating

		docID, err := g.generateOne(ctx, rec, inst, defendant, req, now)
		if err != nil {
			// One instance failing never aborts the rest of the batch.
			g.log.Error().Err(err).
				Str("case_id", req.CaseID.String()).
				Str("instance", inst.Name).
				Msg("document generation failed")
			result.Items[i].Status = ItemError
			result.Items[i].Error = err.Error()
			result.ErrorCount++
			continue
		}

		result.Items[i].Status = ItemSuccess
		result.Items[i].DocumentID = docID
		result.SuccessCount++
	}

	if result.SuccessCount > 0 {
		g.advanceStage(ctx, rec.cs, req)
	}

	return result, nil
}

// generateOne walks a single instance through the pipeline. The artifact
// upload, metadata row, and audit entry are independent sequential writes.
func (g *Generator) generateOne(
	ctx context.Context,
	rec *caseRecords,
	inst Instance,
	defendant *models.Defendant,
	req GenerateRequest,
	now time.Time,
) (*uuid.UUID, error) {
	payload := Assemble(&Input{
		Case:           rec.cs,
		Client:         inst.Client,
		AllClients:     rec.cs.Clients,
		Defendant:      defendant,
		Provider:       inst.Provider,
		Bills:          rec.bills,
		Mileage:        rec.mileage,
		GeneralDamages: rec.gd,
		FirstParty:     rec.fp,
		ThirdParty:     rec.tp,
		Settlement:     rec.cs.Settlement,
		Now:            now,
	})

	rendered, err := g.renderer.Render(ctx, req.Template, payload)
	if err != nil {
		return nil, err
	}

	filename := rendered.Filename
	if filename == "" {
		filename = safeFilename(inst.Name) + ".pdf"
	}

	key := g.sb.DocumentKey(rec.cs.ID.String(), filename, now)
	if err := g.sb.Upload(key, bytes.NewReader(rendered.Content), rendered.Mime, int64(len(rendered.Content))); err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	doc := models.Document{
		CaseID:       rec.cs.ID,
		Key:          key,
		Filename:     filename,
		Mime:         rendered.Mime,
		Size:         len(rendered.Content),
		Category:     req.Template,
		UploadedByID: &req.ActorID,
	}
	if err := g.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("record document: %w", err)
	}

	utils.LogCaseActivity(ctx, g.db, rec.cs.ID, req.ActorID, "document_generated", "", "", inst.Name)

	return &doc.ID, nil
}

// stageFor maps a document category to the stage the case advances to
// once that document has gone out. Unknown categories leave the stage
// alone.
func stageFor(category string) (models.CaseStage, bool) {
	switch category {
	case "lor", "records_request":
		return models.StageTreatment, true
	case "demand":
		return models.StageDemand, true
	default:
		return "", false
	}
}

var stageOrder = map[models.CaseStage]int{
	models.StageIntake:      0,
	models.StageTreatment:   1,
	models.StageDemand:      2,
	models.StageNegotiation: 3,
	models.StageLitigation:  4,
	models.StageSettled:     5,
	models.StageClosed:      6,
}

// advanceStage moves the case forward when the generated category implies
// a later stage. Forward-only and idempotent: re-generating a document
// never moves a case backwards.
func (g *Generator) advanceStage(ctx context.Context, cs models.Case, req GenerateRequest) {
	next, ok := stageFor(req.Template)
	if !ok || stageOrder[next] <= stageOrder[cs.Stage] {
		return
	}
	if err := g.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ?", cs.ID).
		Update("stage", next).Error; err != nil {
		// The document run already succeeded; a stage bump failure is
		// reported but does not fail the batch.
		g.log.Error().Err(err).Str("case_id", cs.ID.String()).Msg("stage advance failed")
		return
	}
	utils.LogCaseActivity(ctx, g.db, cs.ID, req.ActorID, "stage_changed", cs.Stage, next, "after "+req.Template)
}

// selectClients filters the case's clients to the requested IDs,
// preserving selection order; an empty selection means every client.
func selectClients(all []models.Client, ids []uuid.UUID) []models.Client {
	if len(ids) == 0 {
		return all
	}
	out := make([]models.Client, 0, len(ids))
	for _, id := range ids {
		for _, cl := range all {
			if cl.ID == id {
				out = append(out, cl)
				break
			}
		}
	}
	return out
}

func safeFilename(name string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", " ", "_")
	return r.Replace(name)
}
