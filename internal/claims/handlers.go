// Package claims serves insurance carriers, adjusters, and the first- and
// third-party claims attached to a case.
package claims

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

/* =============================== Carriers =============================== */

type CarrierRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Fax     string `json:"fax" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"omitempty,max=120"`
}

func (h *Handler) CreateCarrier(c *fiber.Ctx) error {
	var in CarrierRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	car := models.InsuranceCarrier{
		Name:    strings.TrimSpace(in.Name),
		Phone:   in.Phone,
		Fax:     in.Fax,
		Address: in.Address,
	}
	if err := h.db.Create(&car).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

func (h *Handler) ListCarriers(c *fiber.Ctx) error {
	var list []models.InsuranceCarrier
	if err := h.db.Order("name ASC").Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.InsuranceCarrier{}
	}
	return c.JSON(fiber.Map{"items": list})
}

/* =============================== Adjusters ============================== */

type AdjusterRequest struct {
	CarrierID string `json:"carrier_id" validate:"omitempty,uuid4"`
	FirstName string `json:"first_name" validate:"required,max=60"`
	LastName  string `json:"last_name" validate:"omitempty,max=60"`
	Email     string `json:"email" validate:"omitempty,email,max=120"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Fax       string `json:"fax" validate:"omitempty,max=30"`
	Address   string `json:"address" validate:"omitempty,max=120"`
}

func (h *Handler) CreateAdjuster(c *fiber.Ctx) error {
	var in AdjusterRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	a := models.Adjuster{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Fax:       in.Fax,
		Address:   in.Address,
	}
	if in.CarrierID != "" {
		id, _ := uuid.Parse(in.CarrierID)
		a.CarrierID = &id
	}
	if err := h.db.Create(&a).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) ListAdjusters(c *fiber.Ctx) error {
	q := h.db.Model(&models.Adjuster{})
	if carrierID := c.Query("carrier_id"); carrierID != "" {
		q = q.Where("carrier_id = ?", carrierID)
	}

	var list []models.Adjuster
	if err := q.Order("first_name ASC").Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.Adjuster{}
	}
	return c.JSON(fiber.Map{"items": list})
}

func (h *Handler) UpdateAdjuster(c *fiber.Ctx) error {
	var in AdjusterRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var a models.Adjuster
	if err := h.db.First(&a, "id = ?", c.Params("adjusterID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	a.FirstName = strings.TrimSpace(in.FirstName)
	a.LastName = strings.TrimSpace(in.LastName)
	a.Email = strings.ToLower(strings.TrimSpace(in.Email))
	a.Phone = in.Phone
	a.Fax = in.Fax
	a.Address = in.Address
	a.CarrierID = nil
	if in.CarrierID != "" {
		id, _ := uuid.Parse(in.CarrierID)
		a.CarrierID = &id
	}
	if err := h.db.Save(&a).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(a)
}

func (h *Handler) DeleteAdjuster(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Adjuster{}, "id = ?", c.Params("adjusterID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}
