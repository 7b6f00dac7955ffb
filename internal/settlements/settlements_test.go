package settlements

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

/* ===== helpers ===== */

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Case{}, &models.Settlement{}, &models.CaseActivity{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sql := `
TRUNCATE TABLE
	case_activities,
	settlements,
	cases,
	users
RESTART IDENTITY CASCADE`
		if err := db.Exec(sql).Error; err != nil {
			t.Logf("truncate failed (ignored): %v", err)
		}
	})

	return db
}

func seedCase(t *testing.T, db *gorm.DB) models.Case {
	t.Helper()
	dol := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	cs := models.Case{
		CaseNumber: "PI-TEST-" + strings.ToUpper(uuid.NewString()[:6]),
		DateOfLoss: &dol,
		Stage:      models.StageNegotiation,
		Status:     models.CaseActive,
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatal(err)
	}
	return cs
}

func injectAuth(userID uuid.UUID, role string) fiber.Handler {
	id := userID.String()
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		c.Locals("role", role)
		return c.Next()
	}
}

func newTestApp(h *Handler, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(injectAuth(userID, string(models.RoleAttorney)))
	app.Put("/api/cases/:id/settlement", h.Save)
	app.Get("/api/cases/:id/settlement", h.Get)
	app.Post("/api/cases/:id/settlement/preview", h.Preview)
	return app
}

/* ================== TESTS ================== */

func Test_SaveSettlement_ComputesDerivedFields(t *testing.T) {
	db := openTestDB(t)
	cs := seedCase(t, db)

	h := NewHandler(db)
	app := newTestApp(h, uuid.New())

	body := `{"gross_amount":10000,"case_expenses":500,"medical_liens":1000}`
	req := httptest.NewRequest("PUT", "/api/cases/"+cs.ID.String()+"/settlement", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("save got %d", resp.StatusCode)
	}

	var out struct {
		AttorneyFeeFormatted string `json:"attorney_fee_formatted"`
		ClientNetFormatted   string `json:"client_net_formatted"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	// default 33.33% fee
	if out.AttorneyFeeFormatted != "$3,333.00" {
		t.Fatalf("fee = %s", out.AttorneyFeeFormatted)
	}
	if out.ClientNetFormatted != "$5,167.00" {
		t.Fatalf("net = %s", out.ClientNetFormatted)
	}
}

func Test_SaveSettlement_UpsertsSingleRow(t *testing.T) {
	db := openTestDB(t)
	cs := seedCase(t, db)

	h := NewHandler(db)
	app := newTestApp(h, uuid.New())

	for _, body := range []string{
		`{"gross_amount":10000}`,
		`{"gross_amount":25000,"attorney_fee_percent":40,"status":"accepted"}`,
	} {
		req := httptest.NewRequest("PUT", "/api/cases/"+cs.ID.String()+"/settlement", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != 200 {
			t.Fatalf("save got %d", resp.StatusCode)
		}
	}

	var cnt int64
	if err := db.Model(&models.Settlement{}).Where("case_id = ?", cs.ID).Count(&cnt).Error; err != nil {
		t.Fatal(err)
	}
	if cnt != 1 {
		t.Fatalf("want 1 settlement row, got %d", cnt)
	}

	var s models.Settlement
	if err := db.First(&s, "case_id = ?", cs.ID).Error; err != nil {
		t.Fatal(err)
	}
	// 25000 at 40% — the second write must have recomputed the fee
	if s.AttorneyFee.StringFixed(2) != "10000.00" {
		t.Fatalf("derived fee stale: %s", s.AttorneyFee)
	}
	if s.Status != models.SettlementAccepted {
		t.Fatalf("status = %s", s.Status)
	}
}

func Test_SaveSettlement_UnknownCaseIs404(t *testing.T) {
	db := openTestDB(t)

	h := NewHandler(db)
	app := newTestApp(h, uuid.New())

	req := httptest.NewRequest("PUT", "/api/cases/"+uuid.NewString()+"/settlement",
		strings.NewReader(`{"gross_amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 404 {
		t.Fatalf("got %d", resp.StatusCode)
	}
}

func Test_Preview_DoesNotPersist(t *testing.T) {
	db := openTestDB(t)
	cs := seedCase(t, db)

	h := NewHandler(db)
	app := newTestApp(h, uuid.New())

	body := `{"gross_amount":1000,"attorney_fee_percent":50,"case_expenses":600}`
	req := httptest.NewRequest("POST", "/api/cases/"+cs.ID.String()+"/settlement/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("preview got %d", resp.StatusCode)
	}

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out["client_net_formatted"] != "$0.00" {
		t.Fatalf("net must floor at zero, got %v", out["client_net_formatted"])
	}

	var cnt int64
	_ = db.Model(&models.Settlement{}).Where("case_id = ?", cs.ID).Count(&cnt).Error
	if cnt != 0 {
		t.Fatal("preview must not write a settlement row")
	}
}
