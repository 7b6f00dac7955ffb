package cases

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

type ClientRequest struct {
	ClientNumber int    `json:"client_number" validate:"omitempty,gte=1,lte=20"`
	FirstName    string `json:"first_name" validate:"required,max=60"`
	MiddleName   string `json:"middle_name" validate:"omitempty,max=60"`
	LastName     string `json:"last_name" validate:"required,max=60"`
	Email        string `json:"email" validate:"omitempty,email,max=120"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	Address      string `json:"address" validate:"omitempty,max=120"`
	City         string `json:"city" validate:"omitempty,max=60"`
	State        string `json:"state" validate:"omitempty,statecode"`
	Zip          string `json:"zip" validate:"omitempty,max=10"`
	DateOfBirth  string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	IsDriver     bool   `json:"is_driver"`
	Injuries     string `json:"injuries" validate:"omitempty,max=4000"`
	Narrative    string `json:"narrative" validate:"omitempty,max=8000"`
}

func (in *ClientRequest) apply(cl *models.Client) {
	if in.ClientNumber > 0 {
		cl.ClientNumber = in.ClientNumber
	}
	cl.FirstName = strings.TrimSpace(in.FirstName)
	cl.MiddleName = strings.TrimSpace(in.MiddleName)
	cl.LastName = strings.TrimSpace(in.LastName)
	cl.Email = strings.ToLower(strings.TrimSpace(in.Email))
	cl.Phone = strings.TrimSpace(in.Phone)
	cl.Address = strings.TrimSpace(in.Address)
	cl.City = strings.TrimSpace(in.City)
	cl.State = strings.ToUpper(strings.TrimSpace(in.State))
	cl.Zip = strings.TrimSpace(in.Zip)
	cl.DateOfBirth = parseDate(in.DateOfBirth)
	cl.IsDriver = in.IsDriver
	cl.Injuries = in.Injuries
	cl.Narrative = in.Narrative
}

// Create Client godoc
// @Summary      Add client to case
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string         true  "case id (uuid)"
// @Param        payload  body  ClientRequest  true  "Client payload"
// @Success      201  {object}  models.Client
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /cases/{id}/clients [post]
func (h *Handler) CreateClient(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in ClientRequest
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

	cl := models.Client{CaseID: caseID, ClientNumber: 1}
	in.apply(&cl)
	if in.ClientNumber == 0 {
		// Next free slot: primary is 1, co-clients follow.
		var n int64
		h.db.Model(&models.Client{}).Where("case_id = ?", caseID).Count(&n)
		cl.ClientNumber = int(n) + 1
	}

	if err := h.db.Create(&cl).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(cl)
}

// ListClients returns a case's clients ordered primary-first.
func (h *Handler) ListClients(c *fiber.Ctx) error {
	caseID := c.Params("id")

	var list []models.Client
	if err := h.db.Where("case_id = ?", caseID).
		Order("client_number ASC").
		Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.Client{}
	}
	return c.JSON(fiber.Map{"items": list})
}

// UpdateClient is a full-record overwrite of a client.
func (h *Handler) UpdateClient(c *fiber.Ctx) error {
	id := c.Params("clientID")

	var in ClientRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var cl models.Client
	if err := h.db.First(&cl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	in.apply(&cl)
	if err := h.db.Save(&cl).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(cl)
}

// DeleteClient hard-deletes a client record.
func (h *Handler) DeleteClient(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Client{}, "id = ?", c.Params("clientID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}
