package common

import (
	"encoding/binary"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	for c := 0; c < 256; c++ {
		b := byte(c)
		alnum := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
		assert.Equal(t, alnum, IsAlnum(b), "IsAlnum(%#x)", b)
		space := b == ' ' || (b >= '\t' && b <= '\r')
		assert.Equal(t, space, IsSpace(b), "IsSpace(%#x)", b)
	}
	// high bytes never classify, whatever the platform locale would say
	require.False(t, IsAlnum(0xE9))
	require.False(t, IsSpace(0xA0))
}

func TestCaseMapping(t *testing.T) {
	require.Equal(t, byte('a'), ToLower('A'))
	require.Equal(t, byte('Z'), ToUpper('z'))
	require.Equal(t, byte('5'), ToUpper('5'))
	require.Equal(t, byte('@'), ToLower('@'))
	require.Equal(t, byte('['), ToLower('['))
	require.Equal(t, byte(0xC9), ToLower(0xC9))
}

func TestHexValue(t *testing.T) {
	for i := 0; i < 16; i++ {
		require.Equal(t, i, HexValue(HexLower[i]))
		require.Equal(t, i, HexValue(HexUpper[i]))
	}
	for _, c := range []byte("gG/:@` \x00\xff") {
		require.Equal(t, -1, HexValue(c), "digit %q", c)
	}
}

func TestVarUint(t *testing.T) {
	condition := func(x uint64) bool {
		buf := WriteVarUintTo(nil, x)
		return string(buf) == string(binary.AppendUvarint(nil, x)) && len(buf) == VarUintLen(x)
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))

	require.Equal(t, []byte{0xAC, 0x02}, WriteVarUintTo(nil, 300))
	require.Equal(t, []byte{'x', 0}, WriteVarUintTo([]byte{'x'}, 0))
}
