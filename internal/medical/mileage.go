package medical

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/internal/finance"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/utils"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

/* =============================== Mileage ================================ */

type MileageRequest struct {
	TravelDate  string  `json:"travel_date" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" validate:"omitempty,max=200"`
	Miles       float64 `json:"miles" validate:"gte=0"`
	Rate        float64 `json:"rate" validate:"gte=0"`
}

func (in *MileageRequest) apply(e *models.MileageLogEntry) {
	e.Description = strings.TrimSpace(in.Description)
	e.Miles = utils.Dec(in.Miles)
	e.Rate = utils.Dec(in.Rate)
	// Per-entry total is derived on every write.
	e.Total = finance.EntryTotal(e.Miles, e.Rate)
	if d := strings.TrimSpace(in.TravelDate); d != "" {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			e.TravelDate = &t
		}
	} else {
		e.TravelDate = nil
	}
}

func (h *Handler) CreateMileage(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in MileageRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	e := models.MileageLogEntry{CaseID: caseID}
	in.apply(&e)
	if err := h.db.Create(&e).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (h *Handler) ListMileage(c *fiber.Ctx) error {
	var list []models.MileageLogEntry
	if err := h.db.Where("case_id = ?", c.Params("id")).
		Order("travel_date ASC").
		Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.MileageLogEntry{}
	}
	return c.JSON(fiber.Map{
		"items": list,
		"total": finance.MileageTotal(list),
	})
}

func (h *Handler) UpdateMileage(c *fiber.Ctx) error {
	var in MileageRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var e models.MileageLogEntry
	if err := h.db.First(&e, "id = ?", c.Params("entryID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	in.apply(&e)
	if err := h.db.Save(&e).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(e)
}

func (h *Handler) DeleteMileage(c *fiber.Ctx) error {
	res := h.db.Delete(&models.MileageLogEntry{}, "id = ?", c.Params("entryID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

/* =========================== General damages ============================ */

type GeneralDamagesRequest struct {
	EmotionalDistress *float64 `json:"emotional_distress"`
	PainAndSuffering  *float64 `json:"pain_and_suffering"`
	LossOfEnjoyment   *float64 `json:"loss_of_enjoyment"`
	LossOfConsortium  *float64 `json:"loss_of_consortium"`
	DutiesUnderDuress *float64 `json:"duties_under_duress"`
}

// UpsertGeneralDamages writes the one general-damages row a case may have.
func (h *Handler) UpsertGeneralDamages(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in GeneralDamagesRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	var gd models.GeneralDamages
	err = h.db.Where("case_id = ?", caseID).First(&gd).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		gd = models.GeneralDamages{CaseID: caseID}
	case err != nil:
		return fiber.ErrInternalServerError
	}

	gd.EmotionalDistress = utils.DecPtr(in.EmotionalDistress)
	gd.PainAndSuffering = utils.DecPtr(in.PainAndSuffering)
	gd.LossOfEnjoyment = utils.DecPtr(in.LossOfEnjoyment)
	gd.LossOfConsortium = utils.DecPtr(in.LossOfConsortium)
	gd.DutiesUnderDuress = utils.DecPtr(in.DutiesUnderDuress)

	if err := h.db.Save(&gd).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(gd)
}

// GetGeneralDamages returns the worksheet, or an empty record when none
// has been saved yet.
func (h *Handler) GetGeneralDamages(c *fiber.Ctx) error {
	var gd models.GeneralDamages
	err := h.db.Where("case_id = ?", c.Params("id")).First(&gd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(models.GeneralDamages{})
	}
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(gd)
}
