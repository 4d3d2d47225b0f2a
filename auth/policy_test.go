package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsOnlyRejectEmpty(t *testing.T) {
	opts := DefaultValidateOptions()
	assert.NoError(t, ValidateMasterPassword([]byte("p1"), opts))
	assert.ErrorIs(t, ValidateMasterPassword(nil, opts), ErrEmptyInput)
}

func TestStrictOptions(t *testing.T) {
	opts := StrictValidateOptions()
	opts.MinZXCVBNScore = 0

	cases := map[string]error{
		"Sh0rt!":            ErrTooShort,
		"alllowercase1!":    ErrNoUpper,
		"NoDigitsHere!!":    ErrNoDigit,
		"NoSpecials12345":   ErrNoSpecial,
		"Correct-Horse-42x": nil,
	}
	for pw, want := range cases {
		err := ValidateMasterPassword([]byte(pw), opts)
		if want == nil {
			assert.NoError(t, err, pw)
			continue
		}
		assert.ErrorIs(t, err, want, pw)
	}
}

func TestMinLengthCountsCharacters(t *testing.T) {
	opts := ValidateOptions{MinLength: 4}
	assert.NoError(t, ValidateMasterPassword([]byte("ключ"), opts))
	assert.ErrorIs(t, ValidateMasterPassword([]byte("日本"), opts), ErrTooShort)
}

func TestStrengthScore(t *testing.T) {
	assert.Equal(t, 0, Strength(nil))
	assert.LessOrEqual(t, Strength([]byte("password")), 1)
	assert.GreaterOrEqual(t, Strength([]byte("vK7#qPz!2mW9xR$eL4tN")), 3)

	opts := ValidateOptions{MinLength: 1, MinZXCVBNScore: 3}
	err := ValidateMasterPassword([]byte("password"), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooWeak)
}
