package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aoideee/catalogs/internal/validator"
)

func Test_Validator_FirstReportsEarliestFailure(t *testing.T) {
	v := validator.New()
	assert.True(t, v.Valid())

	_, _, ok := v.First()
	assert.False(t, ok)

	v.Check(true, "name", "never recorded")
	v.Check(false, "hardness", "must be between 1.0 and 10.0")
	v.Check(false, "rarity", "not a recognized value")
	v.Check(false, "hardness", "overwritten?")

	key, msg, ok := v.First()
	assert.True(t, ok)
	assert.False(t, v.Valid())
	assert.Equal(t, "hardness", key)
	assert.Equal(t, "must be between 1.0 and 10.0", msg)
	assert.Len(t, v.Errors, 2)
}

func Test_IdentifierRX(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AB-1234", true},
		{"ZZ-0000", true},
		{"ab-1234", false},
		{"AB-123", false},
		{"AB-12345", false},
		{"ABC-1234", false},
		{" AB-1234", false},
		{"AB1234", false},
		{"AB-١٢٣٤", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.Matches(tt.in, validator.IdentifierRX))
		})
	}
}

func Test_MinChars(t *testing.T) {
	assert.True(t, validator.MinChars("abc", 3))
	assert.False(t, validator.MinChars("  ab  ", 3))
	assert.True(t, validator.MinChars("  Äöü ", 3))
	assert.False(t, validator.MinChars("", 1))
}

func Test_In(t *testing.T) {
	assert.True(t, validator.In("RARE", "COMMON", "RARE"))
	assert.False(t, validator.In("rare", "COMMON", "RARE"))
}
