package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
		reasons  Reasons
	}{
		{name: "minimum length", password: "Abc123", valid: true},
		{name: "maximum length", password: "Abcdefghijklmnopqr12", valid: true},
		{name: "too short", password: "abc12", reasons: ReasonLength | ReasonUppercase},
		{name: "too long", password: "Abcdefghijklmnopqrst1", reasons: ReasonLength},
		{name: "no uppercase", password: "abcdef1", reasons: ReasonUppercase},
		{name: "no lowercase", password: "ABCDEF1", reasons: ReasonLowercase},
		{name: "no digit", password: "Abcdefg", reasons: ReasonDigit},
		{name: "empty", password: "", reasons: ReasonLength | ReasonUppercase | ReasonLowercase | ReasonDigit},
		{name: "non ascii letters do not count", password: "ÄÖÜäöü1", reasons: ReasonUppercase | ReasonLowercase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}

func TestValidatePasswordCountsCharacters(t *testing.T) {
	// 6 文字だが UTF-8 では 6 バイトを超える
	got := ValidatePassword("Ab1äöü")
	assert.True(t, got.Valid)

	// 絵文字も 1 文字として数える
	got = ValidatePassword("Ab1😀😀")
	assert.False(t, got.Valid)
	assert.Equal(t, ReasonLength, got.Reasons)

	got = ValidatePassword("Ab1😀😀😀")
	assert.True(t, got.Valid)
}

func TestReasonsMessage(t *testing.T) {
	assert.Equal(t, "", Reasons(0).Message())
	assert.Equal(t, "Password must contain: 6-20 characters", ReasonLength.Message())
	assert.Equal(t,
		"Password must contain: 6-20 characters, uppercase letter, lowercase letter, number",
		(ReasonLength | ReasonUppercase | ReasonLowercase | ReasonDigit).Message(),
	)
	assert.Equal(t, "Password must contain: uppercase letter, number", (ReasonDigit | ReasonUppercase).Message())
}

func TestReasonsHas(t *testing.T) {
	r := ReasonLength | ReasonDigit
	assert.True(t, r.Has(ReasonLength))
	assert.True(t, r.Has(ReasonDigit))
	assert.False(t, r.Has(ReasonUppercase))
}
