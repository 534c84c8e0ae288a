// Package ipa implements the installment-payment-agreement calculator:
// a balloon-adjusted annuity schedule with TSF fee bookkeeping and the
// VAT-equilibrium solvers built on top of it.
package ipa

import (
	"fmt"
	"math"
)

// Default knob values applied when a request leaves them unset. They are
// substituted once at the API boundary, never inside the engine.
const (
	DefaultVATRate           = 0.18
	DefaultTelematicsMonthly = 10_000.0
	DefaultIRCRate           = 0.18  // applied to monthly interest
	DefaultBankingRate       = 0.026 // applied to (principal/term + monthly interest)

	identityTol = 1e-6

	// The API schedule is truncated to the first year; the full schedule
	// stays on the result for exports.
	scheduleRowsReturned = 12
)

// Inputs is the validated parameter set for one amortization run.
type Inputs struct {
	Principal  float64 `json:"principal"`
	Rate       float64 `json:"rate"`
	TermMonths int     `json:"term_months"`
	Balloon    float64 `json:"balloon"`

	VATRate  float64 `json:"vat_rate"`
	AssetVAT float64 `json:"asset_vat"`

	TelematicsMonthly float64 `json:"telematics_monthly"`
	IncludeIRC        bool    `json:"include_irc"`
	IncludeBanking    bool    `json:"include_banking"`
	IRCRate           float64 `json:"irc_rate"`
	BankingRate       float64 `json:"banking_rate"`
}

// ScheduleRow is one month of the amortization schedule. All money fields
// are rounded to 2 decimals for presentation; the recurrence itself runs
// on unrounded values.
type ScheduleRow struct {
	Month       int     `json:"month"`
	Interest    float64 `json:"interest"`
	TSF         float64 `json:"tsf"`
	Capital     float64 `json:"capital"`
	Annuity     float64 `json:"annuity"`
	Outstanding float64 `json:"outstanding"`
}

// Result is the full output of one amortization run.
type Result struct {
	Inputs            Inputs        `json:"inputs"`
	Annuity           float64       `json:"annuity"`
	IPANet            float64       `json:"ipa_net"`
	IPAVAT            float64       `json:"ipa_vat"`
	AssetVAT          float64       `json:"asset_vat"`
	VATDelta          float64       `json:"vat_delta"`
	AnnuityIdentityOK bool          `json:"annuity_identity_ok"`
	Schedule          []ScheduleRow `json:"schedule"`
	OutstandingFinal  float64       `json:"outstanding_final"`

	// FullSchedule keeps every period for spreadsheet export; the JSON
	// contract only carries the truncated Schedule.
	FullSchedule []ScheduleRow `json:"-"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

// PaymentWithBalloon computes the fixed monthly installment whose present
// value, together with the discounted balloon, equals pv. Term <= 0 is a
// degenerate no-payment case, not an error.
func PaymentWithBalloon(pv, annualRate float64, n int, fv float64) float64 {
	i := annualRate / 12.0
	if n <= 0 {
		return 0
	}
	denom := 1 - math.Pow(1+i, float64(-n))
	adjPV := pv - fv/math.Pow(1+i, float64(n))
	return i * adjPV / denom
}

func (inp Inputs) validate() error {
	if inp.Principal <= 0 {
		return fmt.Errorf("principal must be > 0")
	}
	if inp.Rate <= 0 {
		return fmt.Errorf("rate must be > 0")
	}
	if inp.TermMonths <= 0 {
		return fmt.Errorf("term_months must be > 0")
	}
	if inp.Balloon < 0 {
		return fmt.Errorf("balloon must be >= 0")
	}
	return nil
}

// Run produces the amortization schedule and VAT totals for the inputs.
// Interest accrues on the outstanding balance at rate/12; the TSF fee is
// the flat telematics charge plus the optional IRC and banking components;
// whatever the installment does not spend on interest and fees amortizes
// capital. A drift of more than 1e-6 between installment and the sum of
// its parts clears AnnuityIdentityOK instead of being silently dropped.
func Run(inp Inputs) (Result, error) {
	if err := inp.validate(); err != nil {
		return Result{}, err
	}

	monthly := inp.Rate / 12.0
	annuity := PaymentWithBalloon(inp.Principal, inp.Rate, inp.TermMonths, inp.Balloon)

	outstanding := inp.Principal
	identityOK := true
	rows := make([]ScheduleRow, 0, inp.TermMonths)

	for m := 1; m <= inp.TermMonths; m++ {
		interest := outstanding * monthly
		var irc, bank float64
		if inp.IncludeIRC {
			irc = inp.IRCRate * interest
		}
		if inp.IncludeBanking {
			bank = inp.BankingRate * (inp.Principal/float64(inp.TermMonths) + interest)
		}
		tsf := inp.TelematicsMonthly + irc + bank
		capital := annuity - interest - tsf
		outstanding -= capital

		if math.Abs((interest+tsf+capital)-annuity) > identityTol {
			identityOK = false
		}

		rows = append(rows, ScheduleRow{
			Month:       m,
			Interest:    round2(interest),
			TSF:         round2(tsf),
			Capital:     round2(capital),
			Annuity:     round2(annuity),
			Outstanding: round2(outstanding),
		})
	}

	ipaNet := annuity*float64(inp.TermMonths) + inp.Balloon
	ipaVAT := inp.VATRate * ipaNet
	vatDelta := ipaVAT - inp.AssetVAT

	returned := rows
	if len(returned) > scheduleRowsReturned {
		returned = returned[:scheduleRowsReturned]
	}

	return Result{
		Inputs:            inp,
		Annuity:           round2(annuity),
		IPANet:            round2(ipaNet),
		IPAVAT:            round2(ipaVAT),
		AssetVAT:          round2(inp.AssetVAT),
		VATDelta:          round2(vatDelta),
		AnnuityIdentityOK: identityOK,
		Schedule:          returned,
		OutstandingFinal:  round2(outstanding),
		FullSchedule:      rows,
	}, nil
}
