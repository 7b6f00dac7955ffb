// Package docgen assembles document payloads and drives the generation
// pipeline: assemble -> render via the external engine -> persist artifact
// -> record metadata and audit trail -> advance the case stage.
package docgen

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harwoodlegal/casefile-backend/internal/cases"
	"github.com/harwoodlegal/casefile-backend/internal/finance"
	"github.com/harwoodlegal/casefile-backend/pkg/format"
	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

// Input is everything the assembler may reference. The assembler is a pure
// function of this struct: same Input, same payload.
type Input struct {
	Case           models.Case
	Client         models.Client    // selected client for this instance
	AllClients     []models.Client  // every client on the case
	Defendant      *models.Defendant
	Provider       *models.MedicalProvider // set for records-request instances
	Bills          []models.MedicalBill
	Mileage        []models.MileageLogEntry
	GeneralDamages *models.GeneralDamages
	FirstParty     []models.FirstPartyClaim
	ThirdParty     []models.ThirdPartyClaim
	Settlement     *models.Settlement
	Now            time.Time // wall clock; only the current-date fields depend on it
}

// derived carries the computed values shared across bindings so they are
// produced once per assembly.
type derived struct {
	totals  finance.MedicalTotals
	mileage decimal.Decimal
	damages finance.DamagesSummary
}

/* ============================ Binding table ============================= */

// Every template placeholder is declared here as (name, resolver, default).
// The assembler walks this table mechanically, so a missing record can only
// ever produce the declared default — never a nil in the outgoing map.
//
// Money placeholders are emitted twice: "<key>" carries the raw number for
// arithmetic templates and "<key>_formatted" the currency text.

type binding struct {
	key     string
	text    func(in *Input, d *derived) (string, bool) // nil unless a text field
	money   func(in *Input, d *derived) decimal.Decimal
	date    func(in *Input, d *derived) *time.Time
	textDef string // default when a text resolver reports absent
}

func text(key, def string, fn func(in *Input, d *derived) (string, bool)) binding {
	return binding{key: key, text: fn, textDef: def}
}

func money(key string, fn func(in *Input, d *derived) decimal.Decimal) binding {
	return binding{key: key, money: fn}
}

func date(key string, fn func(in *Input, d *derived) *time.Time) binding {
	return binding{key: key, date: fn}
}

func zero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

// fpClaim picks the selected client's first-party claim, if any.
func fpClaim(in *Input) *models.FirstPartyClaim {
	for i := range in.FirstParty {
		if in.FirstParty[i].ClientID == in.Client.ID {
			return &in.FirstParty[i]
		}
	}
	return nil
}

// tpClaim picks the selected defendant's third-party claim, if any.
func tpClaim(in *Input) *models.ThirdPartyClaim {
	if in.Defendant == nil {
		return nil
	}
	for i := range in.ThirdParty {
		if in.ThirdParty[i].DefendantID == in.Defendant.ID {
			return &in.ThirdParty[i]
		}
	}
	return nil
}

func clientFullName(cl models.Client) string {
	parts := []string{cl.FirstName, cl.MiddleName, cl.LastName}
	out := make([]string, 0, 3)
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func adjusterName(a *models.Adjuster) (string, bool) {
	if a == nil {
		return "", false
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName), true
}

var bindings = []binding{
	// Case
	text("case_number", "N/A", func(in *Input, _ *derived) (string, bool) {
		return in.Case.CaseNumber, in.Case.CaseNumber != ""
	}),
	text("case_state", "N/A", func(in *Input, _ *derived) (string, bool) {
		return in.Case.State, in.Case.State != ""
	}),
	text("case_county", "N/A", func(in *Input, _ *derived) (string, bool) {
		return in.Case.County, in.Case.County != ""
	}),
	date("date_of_loss", func(in *Input, _ *derived) *time.Time { return in.Case.DateOfLoss }),
	date("statute_deadline", func(in *Input, _ *derived) *time.Time {
		return finance.StatuteDeadline(in.Case.DateOfLoss)
	}),
	date("current_date", func(in *Input, _ *derived) *time.Time { return &in.Now }),
	date("full_date", func(in *Input, _ *derived) *time.Time { return &in.Now }),

	// Selected client
	text("client_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		n := clientFullName(in.Client)
		return n, n != ""
	}),
	text("client_first_name", "", func(in *Input, _ *derived) (string, bool) {
		return in.Client.FirstName, in.Client.FirstName != ""
	}),
	text("client_last_name", "", func(in *Input, _ *derived) (string, bool) {
		return in.Client.LastName, in.Client.LastName != ""
	}),
	text("client_address", "", func(in *Input, _ *derived) (string, bool) {
		return in.Client.Address, in.Client.Address != ""
	}),
	text("client_city_state_zip", "", func(in *Input, _ *derived) (string, bool) {
		if in.Client.City == "" && in.Client.State == "" && in.Client.Zip == "" {
			return "", false
		}
		return strings.TrimSpace(strings.TrimSuffix(in.Client.City+", "+in.Client.State+" "+in.Client.Zip, ", ")), true
	}),
	text("client_phone", "N/A", func(in *Input, _ *derived) (string, bool) {
		return in.Client.Phone, in.Client.Phone != ""
	}),
	text("client_email", "N/A", func(in *Input, _ *derived) (string, bool) {
		return in.Client.Email, in.Client.Email != ""
	}),
	date("client_dob", func(in *Input, _ *derived) *time.Time { return in.Client.DateOfBirth }),
	text("client_injuries", "N/A", func(in *Input, _ *derived) (string, bool) {
		return in.Client.Injuries, in.Client.Injuries != ""
	}),
	text("all_clients", "N/A", func(in *Input, _ *derived) (string, bool) {
		if len(in.AllClients) == 0 {
			return "", false
		}
		names := make([]string, 0, len(in.AllClients))
		for _, cl := range in.AllClients {
			names = append(names, clientFullName(cl))
		}
		return strings.Join(names, "; "), true
	}),

	// Defendant
	text("defendant_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if in.Defendant == nil {
			return "", false
		}
		return in.Defendant.Name, in.Defendant.Name != ""
	}),
	text("defendant_liability", "0.00%", func(in *Input, _ *derived) (string, bool) {
		if in.Defendant == nil {
			return "", false
		}
		return in.Defendant.LiabilityPercentage.StringFixed(2) + "%", true
	}),
	text("policyholder_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if in.Defendant == nil {
			return "", false
		}
		if in.Defendant.IsPolicyholder {
			return in.Defendant.Name, in.Defendant.Name != ""
		}
		return in.Defendant.PolicyholderName, in.Defendant.PolicyholderName != ""
	}),

	// Provider (records requests)
	text("provider_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if in.Provider == nil {
			return "", false
		}
		return in.Provider.Name, in.Provider.Name != ""
	}),
	text("provider_address", "", func(in *Input, _ *derived) (string, bool) {
		if in.Provider == nil {
			return "", false
		}
		return in.Provider.Address, in.Provider.Address != ""
	}),
	text("provider_fax", "N/A", func(in *Input, _ *derived) (string, bool) {
		if in.Provider == nil {
			return "", false
		}
		return in.Provider.Fax, in.Provider.Fax != ""
	}),

	// First-party claim (selected client's)
	text("fp_carrier_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if fp := fpClaim(in); fp != nil {
			return fp.Carrier.Name, fp.Carrier.Name != ""
		}
		return "", false
	}),
	text("fp_claim_number", "N/A", func(in *Input, _ *derived) (string, bool) {
		if fp := fpClaim(in); fp != nil {
			return fp.ClaimNumber, fp.ClaimNumber != ""
		}
		return "", false
	}),
	text("fp_policy_number", "N/A", func(in *Input, _ *derived) (string, bool) {
		if fp := fpClaim(in); fp != nil {
			return fp.PolicyNumber, fp.PolicyNumber != ""
		}
		return "", false
	}),
	text("fp_adjuster_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if fp := fpClaim(in); fp != nil {
			return adjusterName(fp.Adjuster)
		}
		return "", false
	}),
	money("pip_available", func(in *Input, _ *derived) decimal.Decimal {
		if fp := fpClaim(in); fp != nil {
			return zero(fp.PIPAvailable)
		}
		return decimal.Zero
	}),
	money("pip_used", func(in *Input, _ *derived) decimal.Decimal {
		if fp := fpClaim(in); fp != nil {
			return zero(fp.PIPUsed)
		}
		return decimal.Zero
	}),
	money("medpay_available", func(in *Input, _ *derived) decimal.Decimal {
		if fp := fpClaim(in); fp != nil {
			return zero(fp.MedPayAvailable)
		}
		return decimal.Zero
	}),
	money("medpay_used", func(in *Input, _ *derived) decimal.Decimal {
		if fp := fpClaim(in); fp != nil {
			return zero(fp.MedPayUsed)
		}
		return decimal.Zero
	}),

	// Third-party claim (selected defendant's)
	text("tp_carrier_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if tp := tpClaim(in); tp != nil {
			return tp.Carrier.Name, tp.Carrier.Name != ""
		}
		return "", false
	}),
	text("tp_claim_number", "N/A", func(in *Input, _ *derived) (string, bool) {
		if tp := tpClaim(in); tp != nil {
			return tp.ClaimNumber, tp.ClaimNumber != ""
		}
		return "", false
	}),
	text("tp_policy_number", "N/A", func(in *Input, _ *derived) (string, bool) {
		if tp := tpClaim(in); tp != nil {
			return tp.PolicyNumber, tp.PolicyNumber != ""
		}
		return "", false
	}),
	text("tp_adjuster_name", "N/A", func(in *Input, _ *derived) (string, bool) {
		if tp := tpClaim(in); tp != nil {
			return adjusterName(tp.Adjuster)
		}
		return "", false
	}),
	money("policy_limits", func(in *Input, _ *derived) decimal.Decimal {
		if tp := tpClaim(in); tp != nil {
			return zero(tp.PolicyLimits)
		}
		return decimal.Zero
	}),
	money("demand_amount", func(in *Input, _ *derived) decimal.Decimal {
		if tp := tpClaim(in); tp != nil {
			return zero(tp.DemandAmount)
		}
		return decimal.Zero
	}),
	money("offer_amount", func(in *Input, _ *derived) decimal.Decimal {
		if tp := tpClaim(in); tp != nil {
			return zero(tp.OfferAmount)
		}
		return decimal.Zero
	}),

	// Medical totals
	money("total_billed", func(_ *Input, d *derived) decimal.Decimal { return d.totals.Billed }),
	money("total_insurance_paid", func(_ *Input, d *derived) decimal.Decimal { return d.totals.InsurancePaid }),
	money("total_insurance_adjusted", func(_ *Input, d *derived) decimal.Decimal { return d.totals.InsuranceAdjusted }),
	money("total_medpay_paid", func(_ *Input, d *derived) decimal.Decimal { return d.totals.MedPayPaid }),
	money("total_patient_paid", func(_ *Input, d *derived) decimal.Decimal { return d.totals.PatientPaid }),
	money("total_reductions", func(_ *Input, d *derived) decimal.Decimal { return d.totals.Reductions }),
	money("total_expenses", func(_ *Input, d *derived) decimal.Decimal { return d.totals.Expenses }),
	money("total_balance_due", func(_ *Input, d *derived) decimal.Decimal { return d.totals.BalanceDue }),
	money("mileage_total", func(_ *Input, d *derived) decimal.Decimal { return d.mileage }),

	// Damages
	money("special_damages_total", func(_ *Input, d *derived) decimal.Decimal { return d.damages.SpecialTotal }),
	money("general_damages_total", func(_ *Input, d *derived) decimal.Decimal { return d.damages.GeneralTotal }),
	money("total_damages", func(_ *Input, d *derived) decimal.Decimal { return d.damages.TotalDamages }),

	// Settlement
	money("gross_settlement", func(in *Input, _ *derived) decimal.Decimal {
		if in.Settlement == nil {
			return decimal.Zero
		}
		return in.Settlement.GrossAmount
	}),
	text("attorney_fee_percent", "33.33", func(in *Input, _ *derived) (string, bool) {
		if in.Settlement == nil {
			return "", false
		}
		return in.Settlement.AttorneyFeePercent.StringFixed(2), true
	}),
	money("attorney_fee", func(in *Input, _ *derived) decimal.Decimal {
		if in.Settlement == nil {
			return decimal.Zero
		}
		return in.Settlement.AttorneyFee
	}),
	money("case_expenses", func(in *Input, _ *derived) decimal.Decimal {
		if in.Settlement == nil {
			return decimal.Zero
		}
		return in.Settlement.CaseExpenses
	}),
	money("medical_liens", func(in *Input, _ *derived) decimal.Decimal {
		if in.Settlement == nil {
			return decimal.Zero
		}
		return in.Settlement.MedicalLiens
	}),
	money("client_net", func(in *Input, _ *derived) decimal.Decimal {
		if in.Settlement == nil {
			return decimal.Zero
		}
		return in.Settlement.ClientNet
	}),

	// Defendant roster context (advisory, mirrored into demand templates)
	text("liability_warning", "", func(in *Input, _ *derived) (string, bool) {
		w := cases.LiabilityWarning(defendantsOf(in))
		return w, w != ""
	}),
}

func defendantsOf(in *Input) []models.Defendant {
	return in.Case.Defendants
}

/* ============================== Assembler =============================== */

// Assemble walks the binding table and produces the flat placeholder map.
// Every declared key is present in the result; absent source data resolves
// to the declared default.
func Assemble(in *Input) map[string]any {
	d := &derived{
		totals:  finance.AggregateBills(in.Bills),
		mileage: finance.MileageTotal(in.Mileage),
	}
	d.damages = finance.ComputeDamages(d.totals, d.mileage, in.GeneralDamages)

	out := make(map[string]any, len(bindings)*2)
	for _, b := range bindings {
		switch {
		case b.text != nil:
			v, ok := b.text(in, d)
			if !ok {
				v = b.textDef
			}
			out[b.key] = v
		case b.money != nil:
			v := b.money(in, d)
			out[b.key] = v.InexactFloat64()
			out[b.key+"_formatted"] = format.Currency(v)
		case b.date != nil:
			out[b.key] = format.Date(b.date(in, d))
		}
	}
	return out
}

// Keys lists every placeholder the assembler can emit, sorted, for the
// template-authoring endpoint.
func Keys() []string {
	out := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		out = append(out, b.key)
		if b.money != nil {
			out = append(out, b.key+"_formatted")
		}
	}
	sort.Strings(out)
	return out
}
