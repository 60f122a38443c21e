package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripColorCodes(t *testing.T) {
	require.Equal(t, "WIN", StripColorCodes("^3WIN"))
	require.Equal(t, "ABC", StripColorCodes("A^1B^2C"))
	require.Equal(t, "plain", StripColorCodes("plain"))
	require.Equal(t, "", StripColorCodes(""))
}

func TestPlayerLineDisplayName(t *testing.T) {
	require.Equal(t, "[WIN] winner1", PlayerLine{Username: "winner1", ClanTag: "WIN"}.DisplayName())
	require.Equal(t, "solo", PlayerLine{Username: "solo"}.DisplayName())
}

func TestNewStatError(t *testing.T) {
	rec := NewStatError("ghost#1", "player ghost#1 not found for platform psn")
	require.Equal(t, "ghost#1", rec.Username)
	require.NotEmpty(t, rec.Error)
	require.Zero(t, rec.Kills)
	require.Zero(t, rec.Wins)
}
