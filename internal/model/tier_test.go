package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Tier
	}{
		{"1", TierBeginner},
		{"2", TierIntermediate},
		{"3", TierExpert},
		{"beginner", TierBeginner},
		{" Intermediate", TierIntermediate},
		{"EXPERT", TierExpert},
	}
	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTier_Unknown(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0", "4", "-1", "advanced", ""} {
		_, err := ParseTier(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrUnknownTier), in)
	}
}

func TestTier_Validate(t *testing.T) {
	t.Parallel()

	for _, tier := range AllTiers() {
		assert.NoError(t, tier.Validate())
	}
	assert.ErrorIs(t, Tier(4).Validate(), ErrUnknownTier)
	assert.ErrorIs(t, Tier(0).Validate(), ErrUnknownTier)
}

func TestTier_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "beginner", TierBeginner.String())
	assert.Equal(t, "expert", TierExpert.String())
	assert.Equal(t, "tier(7)", Tier(7).String())
}

func TestTier_UnmarshalJSON(t *testing.T) {
	var req struct {
		Tier Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tier": 2}`), &req))
	assert.Equal(t, TierIntermediate, req.Tier)

	require.NoError(t, json.Unmarshal([]byte(`{"tier": "expert"}`), &req))
	assert.Equal(t, TierExpert, req.Tier)

	require.NoError(t, json.Unmarshal([]byte(`{"tier": null}`), &req))
	assert.Equal(t, Tier(0), req.Tier)

	err := json.Unmarshal([]byte(`{"tier": 4}`), &req)
	assert.ErrorIs(t, err, ErrUnknownTier)
}
