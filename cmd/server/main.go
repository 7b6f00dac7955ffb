// @title           Casefile API
// @version         1.0
// @description     Case management backend for a personal-injury practice: intake, insurance claims, medical specials, settlement math, and document generation.
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/harwoodlegal/casefile-backend/internal/auth"
	"github.com/harwoodlegal/casefile-backend/internal/cases"
	"github.com/harwoodlegal/casefile-backend/internal/claims"
	"github.com/harwoodlegal/casefile-backend/internal/docgen"
	"github.com/harwoodlegal/casefile-backend/internal/medical"
	"github.com/harwoodlegal/casefile-backend/internal/settlements"
	"github.com/harwoodlegal/casefile-backend/internal/storage"
	"github.com/harwoodlegal/casefile-backend/pkg/database"
	"github.com/harwoodlegal/casefile-backend/pkg/logger"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))

	db := database.Init()
	if err := db.AutoMigrate(
		&models.User{}, &models.Case{}, &models.Client{}, &models.Defendant{},
		&models.InsuranceCarrier{}, &models.Adjuster{},
		&models.FirstPartyClaim{}, &models.ThirdPartyClaim{},
		&models.MedicalProvider{}, &models.MedicalBill{},
		&models.GeneralDamages{}, &models.MileageLogEntry{},
		&models.Settlement{}, &models.Document{}, &models.CaseActivity{},
	); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler,
	})

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api := app.Group("/api")

	// Auth
	authH := auth.NewHandler(db)
	api.Post("/signup", authH.Signup)
	api.Post("/login", authH.Login)
	api.Get("/me", auth.RequireAuth(), authH.Me)

	// Everything below needs a signed-in user.
	staff := api.Group("", auth.RequireAuth())

	// Cases
	caseH := cases.NewHandler(db)
	staff.Post("/cases", caseH.Create)
	staff.Get("/cases", caseH.List)
	staff.Get("/cases/:id", caseH.GetDetail)
	staff.Put("/cases/:id", caseH.Update)
	staff.Post("/cases/:id/archive", caseH.SetArchived(true))
	staff.Post("/cases/:id/unarchive", caseH.SetArchived(false))
	staff.Delete("/cases/:id", auth.RequireRole("attorney"), caseH.Delete)
	staff.Get("/cases/:id/activity", caseH.Activity)

	// Clients & defendants
	staff.Post("/cases/:id/clients", caseH.CreateClient)
	staff.Get("/cases/:id/clients", caseH.ListClients)
	staff.Put("/cases/:id/clients/:clientID", caseH.UpdateClient)
	staff.Delete("/cases/:id/clients/:clientID", caseH.DeleteClient)
	staff.Post("/cases/:id/defendants", caseH.CreateDefendant)
	staff.Get("/cases/:id/defendants", caseH.ListDefendants)
	staff.Put("/cases/:id/defendants/:defendantID", caseH.UpdateDefendant)
	staff.Delete("/cases/:id/defendants/:defendantID", caseH.DeleteDefendant)

	// Carriers, adjusters, and claims
	claimH := claims.NewHandler(db)
	staff.Post("/carriers", claimH.CreateCarrier)
	staff.Get("/carriers", claimH.ListCarriers)
	staff.Post("/adjusters", claimH.CreateAdjuster)
	staff.Get("/adjusters", claimH.ListAdjusters)
	staff.Put("/adjusters/:adjusterID", claimH.UpdateAdjuster)
	staff.Delete("/adjusters/:adjusterID", claimH.DeleteAdjuster)
	staff.Post("/cases/:id/claims/first-party", claimH.CreateFirstParty)
	staff.Get("/cases/:id/claims/first-party", claimH.ListFirstParty)
	staff.Put("/cases/:id/claims/first-party/:claimID", claimH.UpdateFirstParty)
	staff.Delete("/cases/:id/claims/first-party/:claimID", claimH.DeleteFirstParty)
	staff.Post("/cases/:id/claims/third-party", claimH.CreateThirdParty)
	staff.Get("/cases/:id/claims/third-party", claimH.ListThirdParty)
	staff.Put("/cases/:id/claims/third-party/:claimID", claimH.UpdateThirdParty)
	staff.Delete("/cases/:id/claims/third-party/:claimID", claimH.DeleteThirdParty)

	// Medical: providers, bills, mileage, general damages
	medH := medical.NewHandler(db)
	staff.Post("/providers", medH.CreateProvider)
	staff.Get("/providers", medH.ListProviders)
	staff.Put("/providers/:providerID", medH.UpdateProvider)
	staff.Delete("/providers/:providerID", medH.DeleteProvider)
	staff.Post("/cases/:id/bills", medH.CreateBill)
	staff.Get("/cases/:id/bills", medH.ListBills)
	staff.Put("/cases/:id/bills/:billID", medH.UpdateBill)
	staff.Delete("/cases/:id/bills/:billID", medH.DeleteBill)
	staff.Post("/cases/:id/mileage", medH.CreateMileage)
	staff.Get("/cases/:id/mileage", medH.ListMileage)
	staff.Put("/cases/:id/mileage/:entryID", medH.UpdateMileage)
	staff.Delete("/cases/:id/mileage/:entryID", medH.DeleteMileage)
	staff.Put("/cases/:id/general-damages", medH.UpsertGeneralDamages)
	staff.Get("/cases/:id/general-damages", medH.GetGeneralDamages)
	staff.Get("/cases/:id/totals", medH.Totals)

	// Settlements
	setH := settlements.NewHandler(db)
	staff.Put("/cases/:id/settlement", setH.Save)
	staff.Get("/cases/:id/settlement", setH.Get)
	staff.Post("/cases/:id/settlement/preview", setH.Preview)

	// Documents
	sb := storage.NewSupabase()
	gen := docgen.NewGenerator(db, sb, docgen.NewRenderer(), log)
	docH := docgen.NewHandler(db, sb, gen)
	staff.Post("/cases/:id/documents/generate", docH.Generate)
	staff.Get("/cases/:id/documents", docH.List)
	staff.Get("/documents/:docID/url", docH.SignedURL)
	staff.Delete("/documents/:docID", auth.RequireRole("attorney"), docH.Delete)
	staff.Get("/documents/placeholders", docH.Placeholders)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Info().Str("port", port).Msg("server listening")
	log.Fatal().Err(app.Listen(":" + port)).Msg("server stopped")
}
