package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

/* =============================== Enums ================================== */

// Role defines the type of staff user in the system.
type Role string

const (
	RoleAttorney  Role = "attorney"
	RoleParalegal Role = "paralegal"
)

// CaseStage tracks where a case sits in the firm's workflow.
type CaseStage string

const (
	StageIntake      CaseStage = "intake"
	StageTreatment   CaseStage = "treatment"
	StageDemand      CaseStage = "demand"
	StageNegotiation CaseStage = "negotiation"
	StageLitigation  CaseStage = "litigation"
	StageSettled     CaseStage = "settled"
	StageClosed      CaseStage = "closed"
)

// CaseStatus is the coarse open/closed state of a case.
type CaseStatus string

const (
	CaseActive CaseStatus = "active"
	CaseOnHold CaseStatus = "on_hold"
	CaseClosed CaseStatus = "closed"
)

// SettlementStatus defines lifecycle states for a settlement.
type SettlementStatus string

const (
	SettlementPending     SettlementStatus = "pending"
	SettlementNegotiating SettlementStatus = "negotiating"
	SettlementAccepted    SettlementStatus = "accepted"
	SettlementPaid        SettlementStatus = "paid"
	SettlementClosed      SettlementStatus = "closed"
)

/* =============================== Entities =============================== */

// User represents a staff member (attorney or paralegal).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         Role      `gorm:"type:varchar(20);not null"`
	Name         string
	BarNumber    string
	CreatedAt    time.Time
}

// Case represents a single personal-injury matter tracked end-to-end.
type Case struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseNumber string     `gorm:"uniqueIndex;not null"`
	DateOfLoss *time.Time `gorm:"type:date"`
	State      string     `gorm:"type:varchar(2)"`
	County     string
	Stage      CaseStage  `gorm:"type:varchar(20);default:'intake'"`
	Status     CaseStatus `gorm:"type:varchar(20);default:'active'"`
	IsArchived bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Relations
	Clients    []Client
	Defendants []Defendant
	Settlement *Settlement
}

// Client belongs to exactly one case. ClientNumber 1 is the primary
// client; higher numbers are co-clients.
type Client struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientNumber int       `gorm:"not null;default:1"`
	FirstName    string    `gorm:"not null"`
	MiddleName   string
	LastName     string `gorm:"not null"`
	Email        string
	Phone        string
	Address      string
	City         string
	State        string `gorm:"type:varchar(2)"`
	Zip          string
	DateOfBirth  *time.Time `gorm:"type:date"`
	IsDriver     bool       `gorm:"not null;default:false"`
	Injuries     string     `gorm:"type:text"`
	Narrative    string     `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Defendant is an at-fault party on a case. LiabilityPercentage is the
// assigned fault share; the sum across a case is advisory only and is
// never enforced on writes.
type Defendant struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name                string          `gorm:"not null"`
	LiabilityPercentage decimal.Decimal `gorm:"type:numeric(5,2);default:0"`
	IsPolicyholder      bool            `gorm:"not null;default:true"`
	PolicyholderName    string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// InsuranceCarrier is a company record shared across claims.
type InsuranceCarrier struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"not null"`
	Phone     string
	Fax       string
	Address   string
	CreatedAt time.Time
}

// Adjuster is a carrier-side contact. Not exclusively owned: the same
// adjuster may be linked from multiple claims.
type Adjuster struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CarrierID *uuid.UUID `gorm:"type:uuid;index"`
	FirstName string     `gorm:"not null"`
	LastName  string
	Email     string
	Phone     string
	Fax       string
	Address   string
	CreatedAt time.Time
}

// FirstPartyClaim is a claim against the client's own policy (PIP/MedPay).
type FirstPartyClaim struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	CarrierID       uuid.UUID  `gorm:"type:uuid;not null"`
	AdjusterID      *uuid.UUID `gorm:"type:uuid"`
	PolicyNumber    string
	ClaimNumber     string
	PIPAvailable    *decimal.Decimal `gorm:"type:numeric(12,2)"`
	PIPUsed         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	MedPayAvailable *decimal.Decimal `gorm:"type:numeric(12,2)"`
	MedPayUsed      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Carrier  InsuranceCarrier `gorm:"foreignKey:CarrierID;references:ID"`
	Adjuster *Adjuster        `gorm:"foreignKey:AdjusterID;references:ID"`
}

// ThirdPartyClaim is a claim against an at-fault defendant's policy.
type ThirdPartyClaim struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	DefendantID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	CarrierID        uuid.UUID  `gorm:"type:uuid;not null"`
	AdjusterID       *uuid.UUID `gorm:"type:uuid"`
	PolicyNumber     string
	ClaimNumber      string
	PolicyLimits     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DemandAmount     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	OfferAmount      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	SettlementAmount *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Carrier  InsuranceCarrier `gorm:"foreignKey:CarrierID;references:ID"`
	Adjuster *Adjuster        `gorm:"foreignKey:AdjusterID;references:ID"`
}

// MedicalProvider is a treating facility or physician.
type MedicalProvider struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"not null"`
	Phone     string
	Fax       string
	Address   string
	City      string
	State     string `gorm:"type:varchar(2)"`
	Zip       string
	CreatedAt time.Time
}

// MedicalBill is one provider's billing record for a client. Every money
// field is independently nullable; aggregation treats nil as zero.
type MedicalBill struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	ClientID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProviderID        uuid.UUID        `gorm:"type:uuid;not null"`
	AmountBilled      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	InsurancePaid     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	InsuranceAdjusted *decimal.Decimal `gorm:"type:numeric(12,2)"`
	MedPayPaid        *decimal.Decimal `gorm:"type:numeric(12,2)"`
	PatientPaid       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Reduction         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Expense           *decimal.Decimal `gorm:"type:numeric(12,2)"`
	BalanceDue        *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Provider MedicalProvider `gorm:"foreignKey:ProviderID;references:ID"`
}

// GeneralDamages holds the non-economic damage categories. One row per
// case; absent categories default to zero in the calculator.
type GeneralDamages struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	EmotionalDistress *decimal.Decimal `gorm:"type:numeric(12,2)"`
	PainAndSuffering  *decimal.Decimal `gorm:"type:numeric(12,2)"`
	LossOfEnjoyment   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	LossOfConsortium  *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DutiesUnderDuress *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MileageLogEntry is one trip logged against a case. Total is computed
// from miles and rate when the entry is saved.
type MileageLogEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	TravelDate  *time.Time `gorm:"type:date"`
	Description string
	Miles       decimal.Decimal `gorm:"type:numeric(8,1);default:0"`
	Rate        decimal.Decimal `gorm:"type:numeric(6,3);default:0"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);default:0"`
	CreatedAt   time.Time
}

// Settlement is the single current settlement record for a case.
// AttorneyFee and ClientNet are derived and recomputed on every write.
type Settlement struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID             uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	GrossAmount        decimal.Decimal  `gorm:"type:numeric(12,2);default:0"`
	AttorneyFeePercent decimal.Decimal  `gorm:"type:numeric(5,2);default:33.33"`
	CaseExpenses       decimal.Decimal  `gorm:"type:numeric(12,2);default:0"`
	MedicalLiens       decimal.Decimal  `gorm:"type:numeric(12,2);default:0"`
	AttorneyFee        decimal.Decimal  `gorm:"type:numeric(12,2);default:0"`
	ClientNet          decimal.Decimal  `gorm:"type:numeric(12,2);default:0"`
	Status             SettlementStatus `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Document is the metadata record for a generated or uploaded artifact
// stored in the blob store.
type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Key          string    `gorm:"not null"`
	Filename     string    `gorm:"not null"`
	Mime         string
	Size         int
	Category     string     `gorm:"type:varchar(40)"` // e.g. lor, demand, records_request
	UploadedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

// CaseActivity is an audit log entry for important case changes.
type CaseActivity struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Action    string    `gorm:"type:varchar(50);not null"` // e.g. created, settlement_saved, document_generated
	OldStage  CaseStage `gorm:"type:varchar(20)"`
	NewStage  CaseStage `gorm:"type:varchar(20)"`
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
