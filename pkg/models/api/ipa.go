package api

// CalcRequest is the IPA calculator payload. Optional knobs are pointers
// so that "absent" and "explicitly zero/false" stay distinguishable; the
// handler substitutes the documented defaults exactly once.
type CalcRequest struct {
	Principal  float64 `json:"principal"`
	Rate       float64 `json:"rate"`
	TermMonths int     `json:"term_months"`
	Balloon    float64 `json:"balloon"`

	VATRate    *float64 `json:"vat_rate,omitempty"`
	AssetVAT   float64  `json:"asset_vat"`
	AssetPrice float64  `json:"asset_price,omitempty"`

	TelematicsMonthly *float64 `json:"telematics_monthly,omitempty"`
	IncludeIRC        *bool    `json:"include_irc,omitempty"`
	IncludeBanking    *bool    `json:"include_banking,omitempty"`
	IRCRate           *float64 `json:"irc_rate,omitempty"`
	BankingRate       *float64 `json:"banking_rate,omitempty"`
}

// Totals is the back-compat block older spreadsheet clients read from the
// calculate response.
type Totals struct {
	Annuity  float64 `json:"annuity"`
	IPAVAT   float64 `json:"ipa_vat"`
	AssetVAT float64 `json:"asset_vat"`
	VATDelta float64 `json:"vat_delta"`
}

// FBisectRequest extends the calculator payload with the optional bracket
// controls of the f-bisection endpoint.
type FBisectRequest struct {
	CalcRequest
	Around  *float64 `json:"around,omitempty"`
	Span    float64  `json:"span,omitempty"`
	Tol     float64  `json:"tol,omitempty"`
	MaxIter int      `json:"max_iter,omitempty"`
}

// ErrorResponse is the generic JSON error body for non-optimizer failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
