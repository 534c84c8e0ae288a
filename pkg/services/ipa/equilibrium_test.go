package ipa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func equilibriumPayload() Payload {
	return Payload{
		Inputs:     validInputs(),
		AssetPrice: 100_000,
	}
}

func TestBisectFindsRoot(t *testing.T) {
	fn := func(x float64) float64 { return x*x - 4 }
	res, err := Bisect(fn, 0, 10, 1e-6, 64)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Root, 1e-3)
	assert.Negative(t, res.FLo)
	assert.Positive(t, res.FHi)
	assert.Greater(t, res.Iterations, 0)
}

func TestBisectNoSignChange(t *testing.T) {
	fn := func(x float64) float64 { return x + 10 }
	_, err := Bisect(fn, 0, 1, 1e-6, 64)
	assert.ErrorIs(t, err, ErrNoSignChange)
}

func TestBisectIterationExhaustion(t *testing.T) {
	fn := func(x float64) float64 { return x - 1 }
	res, err := Bisect(fn, 0, 10, 1e-12, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Iterations)
	assert.InDelta(t, 1.0, res.Root, 10.0/8)
}

func TestSolveEquilibriumPrincipalConverges(t *testing.T) {
	out, err := SolveEquilibriumPrincipal(equilibriumPayload(), PrincipalOptions{Tol: 1.0})
	require.NoError(t, err)

	eq := out.Equilibrium
	assert.True(t, eq.OK)
	assert.LessOrEqual(t, math.Abs(eq.Lhs-eq.Rhs), 1.0+0.01)
	assert.InDelta(t, 18_000, eq.Rhs, 0.01) // 0.18 * asset price
	assert.Equal(t, 100_000.0, eq.PrincipalOriginal)
	assert.NotEqual(t, eq.PrincipalOriginal, eq.PrincipalSolved)
	assert.Greater(t, eq.Iterations, 0)

	// The result echoes the run at the solved principal.
	assert.Equal(t, eq.PrincipalSolved, out.Result.Inputs.Principal)
}

func TestSolveEquilibriumPrincipalUnbracketable(t *testing.T) {
	p := equilibriumPayload()
	p.AssetVAT = 1e9 // far beyond any reachable agreement VAT

	out, err := SolveEquilibriumPrincipal(p, PrincipalOptions{})
	require.NoError(t, err)

	eq := out.Equilibrium
	assert.False(t, eq.OK)
	assert.Equal(t, "Could not bracket a root for principal", eq.Message)
	assert.Equal(t, eq.PrincipalOriginal, eq.PrincipalSolved)
	assert.Equal(t, 100_000.0, eq.PrincipalSolved)
}

func TestSolveEquilibriumPrincipalRejectsNonPositive(t *testing.T) {
	p := equilibriumPayload()
	p.Principal = 0
	_, err := SolveEquilibriumPrincipal(p, PrincipalOptions{})
	assert.Error(t, err)
}

func TestSolveEquilibriumFExact(t *testing.T) {
	out, err := SolveEquilibriumF(equilibriumPayload())
	require.NoError(t, err)

	eq := out.Equilibrium
	assert.Equal(t, FDirect, eq.Method)
	assert.True(t, eq.OK)
	assert.LessOrEqual(t, eq.ErrorAbs, 0.01)
	assert.InDelta(t, eq.Lhs, eq.VATAsset+eq.FSolved, 0.01)
}

func TestSolveEquilibriumFBisect(t *testing.T) {
	out, err := SolveEquilibriumFBisect(equilibriumPayload(), FBisectOptions{})
	require.NoError(t, err)

	eq := out.Equilibrium
	assert.Equal(t, FBisection, eq.Method)
	assert.True(t, eq.OK)
	assert.LessOrEqual(t, eq.ErrorAbs, eq.Tolerance)
	assert.Greater(t, eq.Iterations, 0)
}

func TestSolveEquilibriumFBisectFallsBackWhenBracketMisses(t *testing.T) {
	around := 5e6 // center the bracket far from the true delta
	out, err := SolveEquilibriumFBisect(equilibriumPayload(), FBisectOptions{Around: &around, Span: 1e5})
	require.NoError(t, err)

	eq := out.Equilibrium
	assert.Equal(t, FDirectFallback, eq.Method)
	assert.True(t, eq.OK)
	assert.Zero(t, eq.ErrorAbs)
	assert.Zero(t, eq.Iterations)
}

func TestVATAssetResolution(t *testing.T) {
	p := equilibriumPayload()
	assert.InDelta(t, 18_000, p.VATAsset(), 1e-9)

	p.AssetVAT = 12_345
	assert.Equal(t, 12_345.0, p.VATAsset())

	p = Payload{Inputs: validInputs()} // no asset price: falls back to principal
	assert.InDelta(t, 18_000, p.VATAsset(), 1e-9)
}
