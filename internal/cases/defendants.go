package cases

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/utils"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

type DefendantRequest struct {
	Name                string  `json:"name" validate:"required,max=120"`
	LiabilityPercentage float64 `json:"liability_percentage" validate:"gte=0,lte=100"`
	IsPolicyholder      bool    `json:"is_policyholder"`
	PolicyholderName    string  `json:"policyholder_name" validate:"omitempty,max=120"`
}

func (in *DefendantRequest) apply(d *models.Defendant) {
	d.Name = strings.TrimSpace(in.Name)
	d.LiabilityPercentage = utils.Dec(in.LiabilityPercentage)
	d.IsPolicyholder = in.IsPolicyholder
	d.PolicyholderName = strings.TrimSpace(in.PolicyholderName)
	if d.IsPolicyholder {
		d.PolicyholderName = ""
	}
}

// liabilityResponse wraps a defendant write result with the advisory
// sum-to-100 warning for the whole case. The warning never blocks the save.
func (h *Handler) liabilityResponse(caseID uuid.UUID, d models.Defendant) (fiber.Map, error) {
	var all []models.Defendant
	if err := h.db.Where("case_id = ?", caseID).Find(&all).Error; err != nil {
		return nil, err
	}
	return fiber.Map{
		"defendant":         d,
		"liability_warning": LiabilityWarning(all),
	}, nil
}

// Create Defendant godoc
// @Summary      Add defendant to case
// @Tags         defendants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string            true  "case id (uuid)"
// @Param        payload  body  DefendantRequest  true  "Defendant payload"
// @Success      201  {object}  map[string]any  "defendant, liability_warning"
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /cases/{id}/defendants [post]
func (h *Handler) CreateDefendant(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in DefendantRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var cnt int64
	if err := h.db.Model(&models.Case{}).Where("id = ?", caseID).Count(&cnt).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if cnt == 0 {
		return fiber.ErrNotFound
	}

	d := models.Defendant{CaseID: caseID}
	in.apply(&d)
	if err := h.db.Create(&d).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	out, err := h.liabilityResponse(caseID, d)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListDefendants returns a case's defendants plus the liability warning.
func (h *Handler) ListDefendants(c *fiber.Ctx) error {
	caseID := c.Params("id")

	var list []models.Defendant
	if err := h.db.Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.Defendant{}
	}
	return c.JSON(fiber.Map{
		"items":             list,
		"liability_warning": LiabilityWarning(list),
	})
}

// UpdateDefendant is a full-record overwrite of a defendant.
func (h *Handler) UpdateDefendant(c *fiber.Ctx) error {
	id := c.Params("defendantID")

	var in DefendantRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var d models.Defendant
	if err := h.db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	in.apply(&d)
	if err := h.db.Save(&d).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	out, err := h.liabilityResponse(d.CaseID, d)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(out)
}

// DeleteDefendant hard-deletes a defendant record.
func (h *Handler) DeleteDefendant(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Defendant{}, "id = ?", c.Params("defendantID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}
