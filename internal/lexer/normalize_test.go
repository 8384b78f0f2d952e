package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestNormalizeStripsBOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("module m")...)
	got := Normalize(input)
	assert.Equal(t, []byte("module m"), got)
}

func TestNormalizeLeavesPlainInputUnchanged(t *testing.T) {
	input := []byte("module m\n")
	assert.Equal(t, input, Normalize(input))
}

func TestNormalizeAppliesNFCToHangul(t *testing.T) {
	decomposed := norm.NFD.Bytes([]byte("한국어: 함수 메인"))
	got := Normalize(decomposed)
	assert.True(t, norm.NFC.IsNormal(got))
	assert.Equal(t, norm.NFC.Bytes(decomposed), got)
}
