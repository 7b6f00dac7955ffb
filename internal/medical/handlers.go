// Package medical serves the treatment-side records of a case: providers,
// bills, the mileage log, and the general-damages worksheet. The per-case
// totals endpoint runs the finance aggregator over the stored records.
package medical

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/internal/finance"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/utils"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

/* ============================== Providers =============================== */

type ProviderRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Fax     string `json:"fax" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"omitempty,max=120"`
	City    string `json:"city" validate:"omitempty,max=60"`
	State   string `json:"state" validate:"omitempty,statecode"`
	Zip     string `json:"zip" validate:"omitempty,max=10"`
}

func (h *Handler) CreateProvider(c *fiber.Ctx) error {
	var in ProviderRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	p := models.MedicalProvider{
		Name:    strings.TrimSpace(in.Name),
		Phone:   in.Phone,
		Fax:     in.Fax,
		Address: in.Address,
		City:    in.City,
		State:   strings.ToUpper(strings.TrimSpace(in.State)),
		Zip:     in.Zip,
	}
	if err := h.db.Create(&p).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) ListProviders(c *fiber.Ctx) error {
	var list []models.MedicalProvider
	if err := h.db.Order("name ASC").Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.MedicalProvider{}
	}
	return c.JSON(fiber.Map{"items": list})
}

func (h *Handler) UpdateProvider(c *fiber.Ctx) error {
	var in ProviderRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var p models.MedicalProvider
	if err := h.db.First(&p, "id = ?", c.Params("providerID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Phone = in.Phone
	p.Fax = in.Fax
	p.Address = in.Address
	p.City = in.City
	p.State = strings.ToUpper(strings.TrimSpace(in.State))
	p.Zip = in.Zip
	if err := h.db.Save(&p).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(p)
}

func (h *Handler) DeleteProvider(c *fiber.Ctx) error {
	res := h.db.Delete(&models.MedicalProvider{}, "id = ?", c.Params("providerID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

/* ================================= Bills ================================ */

// Every money field is optional; absent fields stay NULL and aggregate
// as zero.
type BillRequest struct {
	ClientID          string   `json:"client_id" validate:"required,uuid4"`
	ProviderID        string   `json:"provider_id" validate:"required,uuid4"`
	AmountBilled      *float64 `json:"amount_billed"`
	InsurancePaid     *float64 `json:"insurance_paid"`
	InsuranceAdjusted *float64 `json:"insurance_adjusted"`
	MedPayPaid        *float64 `json:"medpay_paid"`
	PatientPaid       *float64 `json:"patient_paid"`
	Reduction         *float64 `json:"reduction"`
	Expense           *float64 `json:"expense"`
	BalanceDue        *float64 `json:"balance_due"`
}

func (in *BillRequest) apply(b *models.MedicalBill) {
	b.AmountBilled = utils.DecPtr(in.AmountBilled)
	b.InsurancePaid = utils.DecPtr(in.InsurancePaid)
	b.InsuranceAdjusted = utils.DecPtr(in.InsuranceAdjusted)
	b.MedPayPaid = utils.DecPtr(in.MedPayPaid)
	b.PatientPaid = utils.DecPtr(in.PatientPaid)
	b.Reduction = utils.DecPtr(in.Reduction)
	b.Expense = utils.DecPtr(in.Expense)
	b.BalanceDue = utils.DecPtr(in.BalanceDue)
}

func (h *Handler) CreateBill(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in BillRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	clientID, _ := uuid.Parse(in.ClientID)
	providerID, _ := uuid.Parse(in.ProviderID)

	b := models.MedicalBill{CaseID: caseID, ClientID: clientID, ProviderID: providerID}
	in.apply(&b)
	if err := h.db.Create(&b).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *Handler) ListBills(c *fiber.Ctx) error {
	var list []models.MedicalBill
	q := h.db.Where("case_id = ?", c.Params("id")).Preload("Provider")
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if err := q.Order("created_at ASC").Find(&list).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if list == nil {
		list = []models.MedicalBill{}
	}
	return c.JSON(fiber.Map{"items": list})
}

func (h *Handler) UpdateBill(c *fiber.Ctx) error {
	var in BillRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var b models.MedicalBill
	if err := h.db.First(&b, "id = ?", c.Params("billID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	clientID, _ := uuid.Parse(in.ClientID)
	providerID, _ := uuid.Parse(in.ProviderID)
	b.ClientID = clientID
	b.ProviderID = providerID
	in.apply(&b)
	if err := h.db.Save(&b).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(b)
}

func (h *Handler) DeleteBill(c *fiber.Ctx) error {
	res := h.db.Delete(&models.MedicalBill{}, "id = ?", c.Params("billID"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

/* ================================ Totals ================================ */

// Totals godoc
// @Summary      Case financial totals
// @Description  Aggregated bill sums, mileage total, and damages summary
// @Tags         medical
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  map[string]any
// @Router       /cases/{id}/totals [get]
func (h *Handler) Totals(c *fiber.Ctx) error {
	caseID := c.Params("id")

	var bills []models.MedicalBill
	if err := h.db.Where("case_id = ?", caseID).Find(&bills).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	var mileage []models.MileageLogEntry
	if err := h.db.Where("case_id = ?", caseID).Find(&mileage).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	var gd *models.GeneralDamages
	var rec models.GeneralDamages
	switch err := h.db.Where("case_id = ?", caseID).First(&rec).Error; {
	case err == nil:
		gd = &rec
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no worksheet yet: every category is zero
	default:
		return fiber.ErrInternalServerError
	}

	totals := finance.AggregateBills(bills)
	miles := finance.MileageTotal(mileage)
	damages := finance.ComputeDamages(totals, miles, gd)

	return c.JSON(fiber.Map{
		"medical": totals,
		"mileage": miles,
		"damages": damages,
	})
}
