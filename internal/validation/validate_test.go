package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"abc", "user_42", "A_B_C", strings.Repeat("a", 30)}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{"", "ab", "has space", "tür", "dash-ed", strings.Repeat("a", 31)}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), u)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "student@campus.example.edu"}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}

	invalid := []string{"", "no-at.example.com", "two@@example.com", "spaces in@example.com", "a@b"}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePassword("password1"))
	assert.NoError(t, ValidatePassword("Abcdef12"))

	assert.Error(t, ValidatePassword("short1"))
	assert.Error(t, ValidatePassword("lettersonly"))
	assert.Error(t, ValidatePassword("12345678"))
	assert.Error(t, ValidatePassword(strings.Repeat("a1", 65)))
}

func TestValidateCoordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lng     float64
		lat     float64
		wantErr bool
	}{
		{"campus point", 29.0453, 41.0862, false},
		{"zero zero", 0, 0, false},
		{"boundary east pole", 180, 90, false},
		{"boundary west pole", -180, -90, false},
		{"lng too large", 180.001, 0, true},
		{"lng too small", -180.001, 0, true},
		{"lat too large", 0, 90.001, true},
		{"lat too small", 0, -90.001, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCoordinates(tc.lng, tc.lat)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
