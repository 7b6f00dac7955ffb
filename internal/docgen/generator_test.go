package docgen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/harwoodlegal/casefile-backend/internal/storage"
	"github.com/harwoodlegal/casefile-backend/pkg/logger"
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
		&models.User{}, &models.Case{}, &models.Client{}, &models.Defendant{},
		&models.InsuranceCarrier{}, &models.Adjuster{},
		&models.FirstPartyClaim{}, &models.ThirdPartyClaim{},
		&models.MedicalProvider{}, &models.MedicalBill{},
		&models.GeneralDamages{}, &models.MileageLogEntry{},
		&models.Settlement{}, &models.Document{}, &models.CaseActivity{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sql := `
TRUNCATE TABLE
	case_activities,
	documents,
	settlements,
	mileage_log_entries,
	general_damages,
	medical_bills,
	medical_providers,
	first_party_claims,
	third_party_claims,
	adjusters,
	insurance_carriers,
	defendants,
	clients,
	cases,
	users
RESTART IDENTITY CASCADE`
		if err := db.Exec(sql).Error; err != nil {
			t.Logf("truncate failed (ignored): %v", err)
		}
	})

	return db
}

type seedOut struct {
	CaseID    uuid.UUID
	ActorID   uuid.UUID
	ClientIDs []uuid.UUID
}

func seedCase(t *testing.T, db *gorm.DB, names ...string) seedOut {
	t.Helper()

	dol := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cs := models.Case{
		CaseNumber: "PI-TEST-" + strings.ToUpper(uuid.NewString()[:6]),
		DateOfLoss: &dol,
		State:      "WA",
		Stage:      models.StageIntake,
		Status:     models.CaseActive,
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatal(err)
	}

	out := seedOut{CaseID: cs.ID, ActorID: uuid.New()}
	for i, name := range names {
		cl := models.Client{
			CaseID:       cs.ID,
			ClientNumber: i + 1,
			FirstName:    name,
			LastName:     "Test",
		}
		if err := db.Create(&cl).Error; err != nil {
			t.Fatal(err)
		}
		out.ClientIDs = append(out.ClientIDs, cl.ID)
	}
	return out
}

// fakeBackends serves both the render engine and the blob store from one
// test server, so the whole pipeline runs without external services.
func fakeBackends(t *testing.T, failClient string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/render", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Fields map[string]any `json:"fields"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if name, _ := in.Fields["client_first_name"].(string); name == failClient {
			http.Error(w, "engine exploded", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"filename":    "out.pdf",
			"file_base64": base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 test")),
		})
	})
	mux.HandleFunc("/storage/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("SUPABASE_URL", srv.URL)
	t.Setenv("SUPABASE_SERVICE_KEY", "test-key")
	t.Setenv("SUPABASE_BUCKET", "documents")

	return srv
}

/* ================== TESTS ================== */

func Test_Generate_PerClient_OneFailureDoesNotAbortBatch(t *testing.T) {
	db := openTestDB(t)
	seed := seedCase(t, db, "Alice", "Bob", "Carol")
	srv := fakeBackends(t, "Bob")

	gen := NewGenerator(db, storage.NewSupabase(), NewRendererWithURL(srv.URL), logger.New("test"))

	res, err := gen.Generate(context.Background(), GenerateRequest{
		CaseID:    seed.CaseID,
		ActorID:   seed.ActorID,
		Template:  "lor",
		Mode:      ModePerClient,
		ClientIDs: seed.ClientIDs,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if res.SuccessCount != 2 || res.ErrorCount != 1 {
		t.Fatalf("want 2 ok / 1 failed, got %d / %d", res.SuccessCount, res.ErrorCount)
	}
	if res.Items[0].Status != ItemSuccess || res.Items[2].Status != ItemSuccess {
		t.Fatalf("instances 1 and 3 must succeed: %+v", res.Items)
	}
	if res.Items[1].Status != ItemError || !strings.Contains(res.Items[1].Error, "engine exploded") {
		t.Fatalf("instance 2 must carry the engine error: %+v", res.Items[1])
	}
	if res.Items[1].DocumentID != nil {
		t.Fatal("failed instance must not get a document id")
	}

	var docs int64
	if err := db.Model(&models.Document{}).Where("case_id = ?", seed.CaseID).Count(&docs).Error; err != nil {
		t.Fatal(err)
	}
	if docs != 2 {
		t.Fatalf("want 2 document rows, got %d", docs)
	}
}

func Test_Generate_AdvancesStageForwardOnly(t *testing.T) {
	db := openTestDB(t)
	seed := seedCase(t, db, "Alice")
	srv := fakeBackends(t, "")

	gen := NewGenerator(db, storage.NewSupabase(), NewRendererWithURL(srv.URL), logger.New("test"))

	// intake -> treatment after a letter of representation
	if _, err := gen.Generate(context.Background(), GenerateRequest{
		CaseID: seed.CaseID, ActorID: seed.ActorID, Template: "lor", Mode: ModeAllClients,
	}); err != nil {
		t.Fatal(err)
	}
	var cs models.Case
	if err := db.First(&cs, "id = ?", seed.CaseID).Error; err != nil {
		t.Fatal(err)
	}
	if cs.Stage != models.StageTreatment {
		t.Fatalf("want treatment, got %s", cs.Stage)
	}

	// a demand moves it on, but a second LOR must never move it back
	if _, err := gen.Generate(context.Background(), GenerateRequest{
		CaseID: seed.CaseID, ActorID: seed.ActorID, Template: "demand", Mode: ModeAllClients,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Generate(context.Background(), GenerateRequest{
		CaseID: seed.CaseID, ActorID: seed.ActorID, Template: "lor", Mode: ModeAllClients,
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.First(&cs, "id = ?", seed.CaseID).Error; err != nil {
		t.Fatal(err)
	}
	if cs.Stage != models.StageDemand {
		t.Fatalf("want demand, got %s", cs.Stage)
	}
}

func Test_Generate_PayloadUsesCaseFinancials(t *testing.T) {
	db := openTestDB(t)
	seed := seedCase(t, db, "Alice")

	provider := models.MedicalProvider{Name: "Harborview"}
	if err := db.Create(&provider).Error; err != nil {
		t.Fatal(err)
	}
	billed := decimal.NewFromFloat(1234.56)
	if err := db.Create(&models.MedicalBill{
		CaseID:       seed.CaseID,
		ClientID:     seed.ClientIDs[0],
		ProviderID:   provider.ID,
		AmountBilled: &billed,
	}).Error; err != nil {
		t.Fatal(err)
	}

	var gotFields map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/render", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Fields map[string]any `json:"fields"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		gotFields = in.Fields
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"file_base64": base64.StdEncoding.EncodeToString([]byte("%PDF")),
		})
	})
	mux.HandleFunc("/storage/v1/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("SUPABASE_URL", srv.URL)
	t.Setenv("SUPABASE_SERVICE_KEY", "k")
	t.Setenv("SUPABASE_BUCKET", "documents")

	gen := NewGenerator(db, storage.NewSupabase(), NewRendererWithURL(srv.URL), logger.New("test"))
	res, err := gen.Generate(context.Background(), GenerateRequest{
		CaseID: seed.CaseID, ActorID: seed.ActorID, Template: "records_request", Mode: ModePerClientPerProvider,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.SuccessCount != 1 {
		t.Fatalf("want 1 success, got %+v", res)
	}

	if gotFields["total_billed_formatted"] != "$1,234.56" {
		t.Fatalf("total_billed_formatted = %v", gotFields["total_billed_formatted"])
	}
	if gotFields["provider_name"] != "Harborview" {
		t.Fatalf("provider_name = %v", gotFields["provider_name"])
	}
	if gotFields["statute_deadline"] != "May 1, 2026" {
		t.Fatalf("statute_deadline = %v", gotFields["statute_deadline"])
	}
}
