package docgen

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/internal/auth"
	"github.com/harwoodlegal/casefile-backend/internal/storage"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
	"github.com/harwoodlegal/casefile-backend/pkg/validation"
)

// ===== DTOs =====

type GenerateDocumentsRequest struct {
	Template    string   `json:"template" validate:"required,max=60"`
	Mode        string   `json:"mode" validate:"required,oneof=all_clients per_client per_client_per_provider"`
	ClientIDs   []string `json:"client_ids" validate:"omitempty,dive,uuid4"`
	DefendantID string   `json:"defendant_id" validate:"omitempty,uuid4"`
}

type Handler struct {
	db  *gorm.DB
	sb  *storage.Supabase
	gen *Generator
}

func NewHandler(db *gorm.DB, sb *storage.Supabase, gen *Generator) *Handler {
	return &Handler{db: db, sb: sb, gen: gen}
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

// Generate Documents godoc
// @Summary      Generate documents
// @Description  Render one or more documents for a case and store them
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                    true  "case id (uuid)"
// @Param        payload  body  GenerateDocumentsRequest  true  "Generation request"
// @Success      200  {object}  BatchResult
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /cases/{id}/documents/generate [post]
func (h *Handler) Generate(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in GenerateDocumentsRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	req := GenerateRequest{
		CaseID:   caseID,
		Template: in.Template,
		Mode:     Mode(in.Mode),
	}
	req.ActorID, _ = uuid.Parse(auth.MustUserID(c))
	for _, s := range in.ClientIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
		}
		req.ClientIDs = append(req.ClientIDs, id)
	}
	if in.DefendantID != "" {
		id, err := uuid.Parse(in.DefendantID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid defendant id")
		}
		req.DefendantID = &id
	}

	result, err := h.gen.Generate(c.Context(), req)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(result)
}

// List Documents godoc
// @Summary      List case documents
// @Description  Paginated metadata for a case's stored documents
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id        path  string true  "case id (uuid)"
// @Param        page      query int    false "page"
// @Param        pageSize  query int    false "pageSize"
// @Success      200  {object}  map[string]any
// @Router       /cases/{id}/documents [get]
func (h *Handler) List(c *fiber.Ctx) error {
	id := c.Params("id")
	page, size := parsePage(c)

	q := h.db.Model(&models.Document{}).Where("case_id = ?", id)
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	var rows []models.Document
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

// Signed URL godoc
// @Summary      Download link
// @Description  Short-lived signed URL for a stored document
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        docID  path  string  true  "document id (uuid)"
// @Success      200  {object}  map[string]string  "url"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /documents/{docID}/url [get]
func (h *Handler) SignedURL(c *fiber.Ctx) error {
	var doc models.Document
	if err := h.db.First(&doc, "id = ?", c.Params("docID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	url, err := h.sb.SignedURL(doc.Key, 600)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "storage unavailable")
	}
	return c.JSON(fiber.Map{"url": url, "filename": doc.Filename})
}

// Delete Document godoc
// @Summary      Delete document
// @Description  Remove metadata and the stored artifact
// @Tags         documents
// @Security     BearerAuth
// @Param        docID  path  string  true  "document id (uuid)"
// @Success      204
// @Failure      404  {object}  models.ErrorResponse
// @Router       /documents/{docID} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	var doc models.Document
	if err := h.db.First(&doc, "id = ?", c.Params("docID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	if err := h.db.Delete(&doc).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	// Blob removal is best-effort; the metadata row is authoritative.
	_ = h.sb.Delete(doc.Key)

	return c.SendStatus(fiber.StatusNoContent)
}

// Placeholders lists every field name templates may reference.
func (h *Handler) Placeholders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"placeholders": Keys()})
}
