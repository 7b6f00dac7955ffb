package claims

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/utils"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

/* =========================== First-party claims ========================= */

type FirstPartyClaimRequest struct {
	ClientID        string   `json:"client_id" validate:"required,uuid4"`
	CarrierID       string   `json:"carrier_id" validate:"required,uuid4"`
	AdjusterID      string   `json:"adjuster_id" validate:"omitempty,uuid4"`
	PolicyNumber    string   `json:"policy_number" validate:"omitempty,max=60"`
	ClaimNumber     string   `json:"claim_number" validate:"omitempty,max=60"`
	PIPAvailable    *float64 `json:"pip_available"`
	PIPUsed         *float64 `json:"pip_used"`
	MedPayAvailable *float64 `json:"medpay_available"`
	MedPayUsed      *float64 `json:"medpay_used"`
}

func (in *FirstPartyClaimRequest) apply(fp *models.FirstPartyClaim) {
	clientID, _ := uuid.Parse(in.ClientID)
	carrierID, _ := uuid.Parse(in.CarrierID)
	fp.ClientID = clientID
	fp.CarrierID = carrierID
	fp.AdjusterID = nil
	if in.AdjusterID != "" {
		id, _ := uuid.Parse(in.AdjusterID)
		fp.AdjusterID = &id
	}
	fp.PolicyNumber = in.PolicyNumber
	fp.ClaimNumber = in.ClaimNumber
	fp.PIPAvailable = utils.DecPtr(in.PIPAvailable)
	fp.PIPUsed = utils.DecPtr(in.PIPUsed)
	fp.MedPayAvailable = utils.DecPtr(in.MedPayAvailable)
	fp.MedPayUsed = utils.DecPtr(in.MedPayUsed)
}

func (h *Handler) CreateFirstParty(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in FirstPartyClaimRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	fp := models.FirstPartyClaim{CaseID: caseID}
	in.apply(&fp)
	if err := h.db.Create(&fp).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(fp)
}

func (h *Handler) ListFirstParty(c *fiber.Ctx) error {
	var list []models.FirstPartyClaim
	if err := h.db.Where("case_id = ?", c.Params("id")).
		Preload("Carrier").Preload("Adjuster").
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.FirstPartyClaim{}
	}
	return c.JSON(fiber.Map{"items": list})
}

func (h *Handler) UpdateFirstParty(c *fiber.Ctx) error {
	var in FirstPartyClaimRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var fp models.FirstPartyClaim
	if err := h.db.First(&fp, "id = ?", c.Params("claimID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	in.apply(&fp)
	if err := h.db.Save(&fp).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fp)
}

func (h *Handler) DeleteFirstParty(c *fiber.Ctx) error {
	res := h.db.Delete(&models.FirstPartyClaim{}, "id = ?", c.Params("claimID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

/* =========================== Third-party claims ========================= */

type ThirdPartyClaimRequest struct {
	DefendantID      string   `json:"defendant_id" validate:"required,uuid4"`
	CarrierID        string   `json:"carrier_id" validate:"required,uuid4"`
	AdjusterID       string   `json:"adjuster_id" validate:"omitempty,uuid4"`
	PolicyNumber     string   `json:"policy_number" validate:"omitempty,max=60"`
	ClaimNumber      string   `json:"claim_number" validate:"omitempty,max=60"`
	PolicyLimits     *float64 `json:"policy_limits"`
	DemandAmount     *float64 `json:"demand_amount"`
	OfferAmount      *float64 `json:"offer_amount"`
	SettlementAmount *float64 `json:"settlement_amount"`
}

func (in *ThirdPartyClaimRequest) apply(tp *models.ThirdPartyClaim) {
	defendantID, _ := uuid.Parse(in.DefendantID)
	carrierID, _ := uuid.Parse(in.CarrierID)
	tp.DefendantID = defendantID
	tp.CarrierID = carrierID
	tp.AdjusterID = nil
	if in.AdjusterID != "" {
		id, _ := uuid.Parse(in.AdjusterID)
		tp.AdjusterID = &id
	}
	tp.PolicyNumber = in.PolicyNumber
	tp.ClaimNumber = in.ClaimNumber
	tp.PolicyLimits = utils.DecPtr(in.PolicyLimits)
	tp.DemandAmount = utils.DecPtr(in.DemandAmount)
	tp.OfferAmount = utils.DecPtr(in.OfferAmount)
	tp.SettlementAmount = utils.DecPtr(in.SettlementAmount)
}

func (h *Handler) CreateThirdParty(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in ThirdPartyClaimRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	tp := models.ThirdPartyClaim{CaseID: caseID}
	in.apply(&tp)
	if err := h.db.Create(&tp).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(tp)
}

func (h *Handler) ListThirdParty(c *fiber.Ctx) error {
	var list []models.ThirdPartyClaim
	if err := h.db.Where("case_id = ?", c.Params("id")).
		Preload("Carrier").Preload("Adjuster").
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.ThirdPartyClaim{}
	}
	return c.JSON(fiber.Map{"items": list})
}

func (h *Handler) UpdateThirdParty(c *fiber.Ctx) error {
	var in ThirdPartyClaimRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var tp models.ThirdPartyClaim
	if err := h.db.First(&tp, "id = ?", c.Params("claimID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	in.apply(&tp)
	if err := h.db.Save(&tp).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(tp)
}

func (h *Handler) DeleteThirdParty(c *fiber.Ctx) error {
	res := h.db.Delete(&models.ThirdPartyClaim{}, "id = ?", c.Params("claimID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}
