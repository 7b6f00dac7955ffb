// Package settlements owns the single current settlement record per case.
// Every write recomputes the derived attorney fee and client net before
// the row is persisted, so the stored figures are never stale.
package settlements

import (
	"errors"

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

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

type SettlementRequest struct {
	GrossAmount        float64  `json:"gross_amount" validate:"gte=0"`
	AttorneyFeePercent *float64 `json:"attorney_fee_percent" validate:"omitempty,gte=0,lte=100"`
	CaseExpenses       float64  `json:"case_expenses" validate:"gte=0"`
	MedicalLiens       float64  `json:"medical_liens" validate:"gte=0"`
	Status             string   `json:"status" validate:"omitempty,oneof=pending negotiating accepted paid closed"`
}

type SettlementResponse struct {
	models.Settlement
	AttorneyFeeFormatted string `json:"attorney_fee_formatted"`
	ClientNetFormatted   string `json:"client_net_formatted"`
}

func respond(s models.Settlement) SettlementResponse {
	return SettlementResponse{
		Settlement:           s,
		AttorneyFeeFormatted: format.Currency(s.AttorneyFee),
		ClientNetFormatted:   format.Currency(s.ClientNet),
	}
}

// Save godoc
// @Summary      Save settlement
// @Description  Upserts the case's settlement; derived fields are recomputed on every write
// @Tags         settlements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "case id (uuid)"
// @Param        payload  body  SettlementRequest  true  "Settlement payload"
// @Success      200  {object}  SettlementResponse
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/settlement [put]
func (h *Handler) Save(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in SettlementRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	feePct := finance.DefaultFeePercent
	if in.AttorneyFeePercent != nil {
		feePct = utils.Dec(*in.AttorneyFeePercent)
	}
	gross := utils.Dec(in.GrossAmount)
	expenses := utils.Dec(in.CaseExpenses)
	liens := utils.Dec(in.MedicalLiens)

	// Inputs and derived fields land in one write, so a reader never sees
	// a gross amount paired with a stale fee.
	split := finance.SplitSettlement(gross, feePct, expenses, liens)

	var out models.Settlement
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&models.Case{}).Where("id = ?", caseID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return gorm.ErrRecordNotFound
		}

		var s models.Settlement
		err := tx.Where("case_id = ?", caseID).First(&s).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s = models.Settlement{CaseID: caseID, Status: models.SettlementPending}
		case err != nil:
			return err
		}

		s.GrossAmount = gross
		s.AttorneyFeePercent = feePct
		s.CaseExpenses = expenses
		s.MedicalLiens = liens
		s.AttorneyFee = split.AttorneyFee
		s.ClientNet = split.ClientNet
		if in.Status != "" {
			s.Status = models.SettlementStatus(in.Status)
		}

		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		out = s
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	actorID, _ := uuid.Parse(auth.MustUserID(c))
	utils.LogCaseActivity(c.Context(), h.db, caseID, actorID, "settlement_saved", "", "",
		"gross "+format.Currency(out.GrossAmount)+", net "+format.Currency(out.ClientNet))

	return c.JSON(respond(out))
}

// Get godoc
// @Summary      Get settlement
// @Description  Returns the case's current settlement with formatted derived fields
// @Tags         settlements
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  SettlementResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/settlement [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	var s models.Settlement
	err := h.db.Where("case_id = ?", c.Params("id")).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(respond(s))
}

// Preview godoc
// @Summary      Preview settlement split
// @Description  Computes the attorney fee and client net without persisting anything; backs the what-if panel on the settlement screen
// @Tags         settlements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "case id (uuid)"
// @Param        payload  body  SettlementRequest  true  "Settlement payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /cases/{id}/settlement/preview [post]
func (h *Handler) Preview(c *fiber.Ctx) error {
	var in SettlementRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	feePct := finance.DefaultFeePercent
	if in.AttorneyFeePercent != nil {
		feePct = utils.Dec(*in.AttorneyFeePercent)
	}
	split := finance.SplitSettlement(
		utils.Dec(in.GrossAmount), feePct,
		utils.Dec(in.CaseExpenses), utils.Dec(in.MedicalLiens),
	)

	return c.JSON(fiber.Map{
		"attorney_fee":           split.AttorneyFee,
		"client_net":             split.ClientNet,
		"attorney_fee_formatted": format.Currency(split.AttorneyFee),
		"client_net_formatted":   format.Currency(split.ClientNet),
	})
}
