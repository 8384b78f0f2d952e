package abi

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/core"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMangleReplacesDotsWithDoubleUnderscore(t *testing.T) {
	assert.Equal(t, "daisy_math__geo__area", Mangle("math.geo", "area"))
}

func TestSignatureHashIsStableAndSixteenChars(t *testing.T) {
	h1 := SignatureHash([]string{"int", "int"}, "int")
	h2 := SignatureHash([]string{"int", "int"}, "int")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)
}

func TestSignatureHashChangesWithSignature(t *testing.T) {
	h1 := SignatureHash([]string{"int"}, "int")
	h2 := SignatureHash([]string{"int", "int"}, "int")
	assert.NotEqual(t, h1, h2)
}

func TestBuildSortsFunctionsByName(t *testing.T) {
	mod := &core.Module{Functions: []core.Function{
		{Name: "zeta", ReturnType: "int"},
		{Name: "alpha", ReturnType: "int"},
	}}
	m := Build("m", mod)
	require.Len(t, m.Functions, 2)
	assert.Equal(t, "alpha", m.Functions[0].Name)
	assert.Equal(t, "zeta", m.Functions[1].Name)
}

func TestCompareDetectsSignatureChangeForStillPresentFunction(t *testing.T) {
	prev := &Manifest{Module: "m", AbiVersion: Version{2, 15}, Functions: []FunctionSymbol{
		{Name: "foo", Params: []string{"int"}, Return: "int", Sig: SignatureHash([]string{"int"}, "int")},
	}}
	cur := &Manifest{Module: "m", AbiVersion: Version{2, 15}, Functions: []FunctionSymbol{
		{Name: "foo", Params: []string{"int", "int"}, Return: "int", Sig: SignatureHash([]string{"int", "int"}, "int")},
	}}
	_, err := Compare(prev, cur)
	require.Error(t, err)
	fatal := err.(*daisyerrors.FatalError)
	assert.Equal(t, daisyerrors.ABI002, fatal.Code)
}

func TestCompareDetectsRemovedSymbol(t *testing.T) {
	prev := &Manifest{Module: "m", AbiVersion: Version{2, 15}, Functions: []FunctionSymbol{
		{Name: "foo", Sig: "abc"},
	}}
	cur := &Manifest{Module: "m", AbiVersion: Version{2, 15}}
	_, err := Compare(prev, cur)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.ABI001, err.(*daisyerrors.FatalError).Code)
}

func TestCompareDetectsMajorVersionMismatch(t *testing.T) {
	prev := &Manifest{Module: "m", AbiVersion: Version{2, 15}}
	cur := &Manifest{Module: "m", AbiVersion: Version{3, 0}}
	_, err := Compare(prev, cur)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.ABI003, err.(*daisyerrors.FatalError).Code)
}

func TestCompareRequiresMinorBumpForAddedSymbols(t *testing.T) {
	prev := &Manifest{Module: "m", AbiVersion: Version{2, 15}}
	cur := &Manifest{Module: "m", AbiVersion: Version{2, 15}, Functions: []FunctionSymbol{
		{Name: "newFunc", Sig: "xyz"},
	}}
	_, err := Compare(prev, cur)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.ABI004, err.(*daisyerrors.FatalError).Code)
}

func TestCompareAllowsAddedSymbolsWithMinorBump(t *testing.T) {
	prev := &Manifest{Module: "m", AbiVersion: Version{2, 15}}
	cur := &Manifest{Module: "m", AbiVersion: Version{2, 16}, Functions: []FunctionSymbol{
		{Name: "newFunc", Sig: "xyz"},
	}}
	log, err := Compare(prev, cur)
	assert.NoError(t, err)
	assert.Equal(t, []string{"newFunc"}, log.Added)
}

func TestCompareAllowsUnchangedManifest(t *testing.T) {
	m := &Manifest{Module: "m", AbiVersion: Version{2, 15}, Functions: []FunctionSymbol{
		{Name: "foo", Sig: "abc"},
	}}
	_, err := Compare(m, m)
	assert.NoError(t, err)
}
