package cases

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/internal/auth"
	"github.com/harwoodlegal/casefile-backend/internal/finance"
	"github.com/harwoodlegal/casefile-backend/pkg/format"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/utils"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

// ===== DTOs =====

type CaseRequest struct {
	CaseNumber string `json:"case_number" validate:"omitempty,max=40"`
	DateOfLoss string `json:"date_of_loss" validate:"omitempty,datetime=2006-01-02"`
	State      string `json:"state" validate:"omitempty,statecode"`
	County     string `json:"county" validate:"omitempty,max=80"`
	Stage      string `json:"stage" validate:"omitempty,oneof=intake treatment demand negotiation litigation settled closed"`
	Status     string `json:"status" validate:"omitempty,oneof=active on_hold closed"`
}

type CaseListItem struct {
	ID              uuid.UUID `json:"id"`
	CaseNumber      string    `json:"case_number"`
	Stage           string    `json:"stage"`
	Status          string    `json:"status"`
	DateOfLoss      string    `json:"date_of_loss"`
	StatuteDeadline string    `json:"statute_deadline"`
	CreatedAt       time.Time `json:"created_at"`
	Clients         int64     `json:"clients"`
	PrimaryClient   string    `json:"primary_client"`
	Injuries        string    `json:"injuries"`
}

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func parsePage(c *fiber.Ctx) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	size, _ = strconv.Atoi(c.Query("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 10
	}
	return
}

// parseDate turns a YYYY-MM-DD string into a date, nil when empty or
// unparseable. A bad date is treated as absent, not as a fatal error.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// ===== Cases =====

// Create Case godoc
// @Summary      Create case
// @Description  Open a new personal-injury matter
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CaseRequest  true  "Case payload"
// @Success      201  {object}  map[string]string  "id"
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /cases [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	num := strings.TrimSpace(in.CaseNumber)
	if num == "" {
		num = fmt.Sprintf("PI-%d-%s", time.Now().Year(), strings.ToUpper(uuid.NewString()[:6]))
	}

	cs := models.Case{
		CaseNumber: num,
		DateOfLoss: parseDate(in.DateOfLoss),
		State:      strings.ToUpper(strings.TrimSpace(in.State)),
		County:     strings.TrimSpace(in.County),
		Stage:      models.StageIntake,
		Status:     models.CaseActive,
	}
	if in.Stage != "" {
		cs.Stage = models.CaseStage(in.Stage)
	}
	if err := h.db.Create(&cs).Error; err != nil {
		return fiber.NewError(fiber.StatusConflict, "case number already exists")
	}

	actorID, _ := uuid.Parse(auth.MustUserID(c))
	utils.LogCaseActivity(c.Context(), h.db, cs.ID, actorID, "created", "", cs.Stage, "")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": cs.ID})
}

// List Cases godoc
// @Summary      List cases
// @Description  Paginated case list with stage/status/archived filters
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        page      query int    false "page"
// @Param        pageSize  query int    false "pageSize"
// @Param        stage     query string false "stage filter"
// @Param        archived  query bool   false "include archived (default false)"
// @Success      200  {object}  map[string]any
// @Router       /cases [get]
func (h *Handler) List(c *fiber.Ctx) error {
	page, size := parsePage(c)

	dbq := h.db.Model(&models.Case{})
	if c.Query("archived") != "true" {
		dbq = dbq.Where("is_archived = false")
	}
	if stage := strings.TrimSpace(c.Query("stage")); stage != "" {
		dbq = dbq.Where("stage = ?", stage)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		dbq = dbq.Where("status = ?", status)
	}

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	var list []models.Case
	if err := dbq.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Preload("Clients").
		Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	items := make([]CaseListItem, 0, len(list))
	for _, cs := range list {
		var primary, injuries string
		for _, cl := range cs.Clients {
			if cl.ClientNumber == 1 {
				primary = strings.TrimSpace(cl.FirstName + " " + cl.LastName)
				injuries = format.Summary(cl.Injuries, 120)
			}
		}
		items = append(items, CaseListItem{
			ID:              cs.ID,
			CaseNumber:      cs.CaseNumber,
			Stage:           string(cs.Stage),
			Status:          string(cs.Status),
			DateOfLoss:      format.Date(cs.DateOfLoss),
			StatuteDeadline: format.Date(finance.StatuteDeadline(cs.DateOfLoss)),
			CreatedAt:       cs.CreatedAt,
			Clients:         int64(len(cs.Clients)),
			PrimaryClient:   primary,
			Injuries:        injuries,
		})
	}

	return c.JSON(fiber.Map{
		"page": page, "pageSize": size, "total": total,
		"pages": int(math.Ceil(float64(total) / float64(size))),
		"items": items,
	})
}

// Get Case Detail godoc
// @Summary      Case detail
// @Description  Case with clients, defendants, settlement, derived fields
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [get]
func (h *Handler) GetDetail(c *fiber.Ctx) error {
	id := c.Params("id")

	var cs models.Case
	err := h.db.
		Where("id = ?", id).
		Preload("Clients", func(db *gorm.DB) *gorm.DB { return db.Order("client_number ASC") }).
		Preload("Defendants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Settlement").
		First(&cs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	if cs.Clients == nil {
		cs.Clients = []models.Client{}
	}
	if cs.Defendants == nil {
		cs.Defendants = []models.Defendant{}
	}

	return c.JSON(fiber.Map{
		"case":              cs,
		"statute_deadline":  format.Date(finance.StatuteDeadline(cs.DateOfLoss)),
		"liability_warning": LiabilityWarning(cs.Defendants),
	})
}

// Update Case godoc
// @Summary      Update case
// @Description  Full-record overwrite of the mutable case fields
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string       true  "case id (uuid)"
// @Param        payload  body  CaseRequest  true  "Case payload"
// @Success      200  {object}  models.Case
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var in CaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var cs models.Case
	if err := h.db.First(&cs, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	oldStage := cs.Stage

	cs.DateOfLoss = parseDate(in.DateOfLoss)
	cs.State = strings.ToUpper(strings.TrimSpace(in.State))
	cs.County = strings.TrimSpace(in.County)
	if in.Stage != "" {
		cs.Stage = models.CaseStage(in.Stage)
	}
	if in.Status != "" {
		cs.Status = models.CaseStatus(in.Status)
	}
	if err := h.db.Save(&cs).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	if cs.Stage != oldStage {
		actorID, _ := uuid.Parse(auth.MustUserID(c))
		utils.LogCaseActivity(c.Context(), h.db, cs.ID, actorID, "stage_changed", oldStage, cs.Stage, "")
	}

	return c.JSON(cs)
}

// SetArchived flips the archive flag; archived cases drop out of the
// default list but are never hard-deleted by this endpoint.
func (h *Handler) SetArchived(archived bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		res := h.db.Model(&models.Case{}).Where("id = ?", id).Update("is_archived", archived)
		if res.Error != nil {
			return fiber.ErrInternalServerError
		}
		if res.RowsAffected == 0 {
			return fiber.ErrNotFound
		}
		return c.JSON(fiber.Map{"id": id, "is_archived": archived})
	}
}

// Delete Case godoc
// @Summary      Delete case
// @Description  Hard delete; the caller confirms before invoking
// @Tags         cases
// @Security     BearerAuth
// @Param        id  path  string  true  "case id (uuid)"
// @Success      204
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	res := h.db.Delete(&models.Case{}, "id = ?", id)
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Activity lists the audit log for a case, newest first.
func (h *Handler) Activity(c *fiber.Ctx) error {
	id := c.Params("id")
	page, size := parsePage(c)

	q := h.db.Model(&models.CaseActivity{}).Where("case_id = ?", id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	var rows []models.CaseActivity
	if err := q.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"page": page, "pageSize": size, "total": total,
		"pages": int(math.Ceil(float64(total) / float64(size))),
		"items": rows,
	})
}
