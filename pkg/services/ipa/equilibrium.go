package ipa

import (
	"errors"
	"fmt"
	"math"
)

// Equilibrium solving: find the input that makes VAT charged on the
// agreement match VAT on the underlying asset (plus an optional delta f).

// ErrNoSignChange is returned by Bisect when the bracket endpoints do not
// straddle a root.
var ErrNoSignChange = errors.New("no sign change on [lo, hi]; cannot bracket root")

// BisectResult reports the root found together with the bracket
// evaluations, so callers can judge a best-effort answer when the
// iteration limit was hit before the tolerance.
type BisectResult struct {
	Root       float64
	Iterations int
	FLo        float64
	FHi        float64
}

// Bisect finds a root of fn on [lo, hi]. If maxIter runs out before
// |fn(mid)| <= tol, the last midpoint is returned without error; the
// caller decides whether that counts as success.
func Bisect(fn func(float64) float64, lo, hi, tol float64, maxIter int) (BisectResult, error) {
	fLo := fn(lo)
	fHi := fn(hi)
	if !(fLo == 0 || fHi == 0 || (fLo < 0 && 0 < fHi) || (fHi < 0 && 0 < fLo)) {
		return BisectResult{FLo: fLo, FHi: fHi}, ErrNoSignChange
	}

	a, b, fa := lo, hi, fLo
	for iters := 1; iters <= maxIter; iters++ {
		mid := (a + b) / 2
		fm := fn(mid)
		if math.Abs(fm) <= tol {
			return BisectResult{Root: mid, Iterations: iters, FLo: fLo, FHi: fHi}, nil
		}
		if (fa < 0 && 0 < fm) || (fm < 0 && 0 < fa) {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}
	return BisectResult{Root: (a + b) / 2, Iterations: maxIter, FLo: fLo, FHi: fHi}, nil
}

// Payload is an amortization input set plus the asset-price context the
// equilibrium solvers need. AssetPrice only matters when asset_vat is not
// supplied directly.
type Payload struct {
	Inputs
	AssetPrice float64 `json:"asset_price,omitempty"`
}

// VATAsset resolves the asset-side VAT: an explicit asset_vat wins,
// otherwise vat_rate applies to the asset price (or the principal when no
// price is given).
func (p Payload) VATAsset() float64 {
	if p.AssetVAT != 0 {
		return p.AssetVAT
	}
	base := p.AssetPrice
	if base == 0 {
		base = p.Principal
	}
	return base * p.VATRate
}

// PrincipalEquilibrium is the equilibrium block of a principal solve.
type PrincipalEquilibrium struct {
	OK                bool    `json:"ok"`
	Message           string  `json:"message,omitempty"`
	Tolerance         float64 `json:"tolerance,omitempty"`
	Iterations        int     `json:"iterations,omitempty"`
	PrincipalOriginal float64 `json:"principal_original"`
	PrincipalSolved   float64 `json:"principal_solved"`
	Lhs               float64 `json:"lhs"`
	Rhs               float64 `json:"rhs"`
	ErrorAbs          float64 `json:"error_abs"`
}

// PrincipalOutcome pairs the amortization run at the solved principal with
// the equilibrium report, mirroring the calculator's response envelope.
type PrincipalOutcome struct {
	Result      Result               `json:"result"`
	Equilibrium PrincipalEquilibrium `json:"equilibrium"`
}

// PrincipalOptions configures the principal search bracket and stopping
// rule. Zero values take the documented defaults.
type PrincipalOptions struct {
	LoFactor float64 // default 0.3
	HiFactor float64 // default 1.7
	Tol      float64 // default 0.01
	MaxIter  int     // default 64
}

func (o *PrincipalOptions) setDefaults() {
	if o.LoFactor == 0 {
		o.LoFactor = 0.3
	}
	if o.HiFactor == 0 {
		o.HiFactor = 1.7
	}
	if o.Tol == 0 {
		o.Tol = 0.01
	}
	if o.MaxIter == 0 {
		o.MaxIter = 64
	}
}

const bracketRetries = 6

// SolveEquilibriumPrincipal searches for the principal whose agreement VAT
// equals the asset VAT. The initial bracket is [0.3, 1.7] times the
// requested principal; on bracketing failure it widens by [0.5, 1.5] up to
// six times. A search that still cannot bracket is reported as ok:false
// with the original principal echoed back, not as an error.
func SolveEquilibriumPrincipal(p Payload, opts PrincipalOptions) (PrincipalOutcome, error) {
	opts.setDefaults()

	original := p.Principal
	if original <= 0 {
		return PrincipalOutcome{}, fmt.Errorf("principal must be > 0")
	}
	rhs := p.VATAsset()

	vatAt := func(principal float64) (float64, error) {
		run := p.Inputs
		run.Principal = principal
		res, err := Run(run)
		if err != nil {
			return 0, err
		}
		return res.IPAVAT, nil
	}

	var evalErr error
	equilibriumError := func(candidate float64) float64 {
		lhs, err := vatAt(candidate)
		if err != nil {
			evalErr = err
			return 0
		}
		return lhs - rhs
	}

	lo, hi := original*opts.LoFactor, original*opts.HiFactor
	var bis BisectResult
	bracketed := false
	for attempt := 0; attempt < bracketRetries; attempt++ {
		res, err := Bisect(equilibriumError, lo, hi, opts.Tol, opts.MaxIter)
		if evalErr != nil {
			return PrincipalOutcome{}, evalErr
		}
		if err == nil {
			bis = res
			bracketed = true
			break
		}
		lo *= 0.5
		hi *= 1.5
	}

	if !bracketed {
		res, err := Run(p.Inputs)
		if err != nil {
			return PrincipalOutcome{}, err
		}
		lhs := res.IPAVAT
		return PrincipalOutcome{
			Result: res,
			Equilibrium: PrincipalEquilibrium{
				OK:                false,
				Message:           "Could not bracket a root for principal",
				PrincipalOriginal: original,
				PrincipalSolved:   original,
				Lhs:               round2(lhs),
				Rhs:               round2(rhs),
				ErrorAbs:          round4(math.Abs(lhs - rhs)),
			},
		}, nil
	}

	solved := round2(bis.Root)
	run := p.Inputs
	run.Principal = solved
	res, err := Run(run)
	if err != nil {
		return PrincipalOutcome{}, err
	}
	lhs := res.IPAVAT
	errAbs := math.Abs(lhs - rhs)

	return PrincipalOutcome{
		Result: res,
		Equilibrium: PrincipalEquilibrium{
			OK:                errAbs <= opts.Tol,
			Tolerance:         opts.Tol,
			Iterations:        bis.Iterations,
			PrincipalOriginal: original,
			PrincipalSolved:   solved,
			Lhs:               round2(lhs),
			Rhs:               round2(rhs),
			ErrorAbs:          round4(errAbs),
		},
	}, nil
}

// FMethod names how the VAT-delta unknown was solved. The method is picked
// upfront; the bisection path only downgrades to the direct formula when
// the bracket genuinely fails to straddle a root.
type FMethod string

const (
	FDirect         FMethod = "f_direct"
	FBisection      FMethod = "f_bisection"
	FDirectFallback FMethod = "f_direct_fallback"
)

// FEquilibrium is the equilibrium block of a VAT-delta solve.
type FEquilibrium struct {
	Method     FMethod `json:"method"`
	OK         bool    `json:"ok"`
	Tolerance  float64 `json:"tolerance,omitempty"`
	Iterations int     `json:"iterations"`
	Lhs        float64 `json:"lhs"`
	Rhs        float64 `json:"rhs"`
	VATAsset   float64 `json:"vat_asset"`
	FSolved    float64 `json:"f_solved"`
	ErrorAbs   float64 `json:"error_abs"`
}

// FOutcome pairs the amortization run with the VAT-delta report.
type FOutcome struct {
	Result      Result       `json:"result"`
	Equilibrium FEquilibrium `json:"equilibrium"`
}

// SolveEquilibriumF solves VAT(IPA) = VAT(asset) + f directly: f* is the
// observed delta, exact by construction.
func SolveEquilibriumF(p Payload) (FOutcome, error) {
	res, err := Run(p.Inputs)
	if err != nil {
		return FOutcome{}, err
	}
	lhs := res.IPAVAT
	rhsBase := p.VATAsset()
	fStar := round2(lhs - rhsBase)
	return FOutcome{
		Result: res,
		Equilibrium: FEquilibrium{
			Method:   FDirect,
			OK:       true,
			Lhs:      round2(lhs),
			Rhs:      round2(rhsBase + fStar),
			VATAsset: round2(rhsBase),
			FSolved:  fStar,
			ErrorAbs: round4(math.Abs(lhs - (rhsBase + fStar))),
		},
	}, nil
}

// FBisectOptions configures the bisection variant of the VAT-delta solve.
type FBisectOptions struct {
	Around  *float64 // bracket center; default is the direct f*
	Span    float64  // default 1e6
	Tol     float64  // default 0.01
	MaxIter int      // default 64
}

func (o *FBisectOptions) setDefaults() {
	if o.Span == 0 {
		o.Span = 1e6
	}
	if o.Tol == 0 {
		o.Tol = 0.01
	}
	if o.MaxIter == 0 {
		o.MaxIter = 64
	}
}

// SolveEquilibriumFBisect solves for f by bisection around a center
// (supplied, or the direct f*) with a configurable span. The residual is
// linear in f, so this converges quickly; if the chosen bracket excludes
// the root the solver falls back to the direct formula and labels the
// result accordingly.
func SolveEquilibriumFBisect(p Payload, opts FBisectOptions) (FOutcome, error) {
	opts.setDefaults()

	res, err := Run(p.Inputs)
	if err != nil {
		return FOutcome{}, err
	}
	lhs := res.IPAVAT
	rhsBase := p.VATAsset()

	center := lhs - rhsBase
	if opts.Around != nil {
		center = *opts.Around
	}

	residual := func(f float64) float64 { return lhs - (rhsBase + f) }
	bis, bisErr := Bisect(residual, center-opts.Span, center+opts.Span, opts.Tol, opts.MaxIter)
	if bisErr != nil {
		fStar := round2(lhs - rhsBase)
		return FOutcome{
			Result: res,
			Equilibrium: FEquilibrium{
				Method:    FDirectFallback,
				OK:        true,
				Tolerance: opts.Tol,
				Lhs:       round2(lhs),
				Rhs:       round2(rhsBase + fStar),
				VATAsset:  round2(rhsBase),
				FSolved:   fStar,
				ErrorAbs:  0,
			},
		}, nil
	}

	fStar := round2(bis.Root)
	errAbs := math.Abs(residual(fStar))
	return FOutcome{
		Result: res,
		Equilibrium: FEquilibrium{
			Method:     FBisection,
			OK:         errAbs <= opts.Tol,
			Tolerance:  opts.Tol,
			Iterations: bis.Iterations,
			Lhs:        round2(lhs),
			Rhs:        round2(rhsBase + fStar),
			VATAsset:   round2(rhsBase),
			FSolved:    fStar,
			ErrorAbs:   round4(errAbs),
		},
	}, nil
}
