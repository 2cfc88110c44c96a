package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid with uppercase", "Abcdefgh", false},
		{"valid long mixed", "CorrectHorseBattery1", false},
		{"exactly eight chars", "Aaaaaaaa", false},
		{"too short", "Abcdefg", true},
		{"no uppercase", "abcdefgh", true},
		{"empty", "", true},
		{"seven chars no upper", "abcdefg", true},
		{"non-ascii letters only", "ßßßßßßßß", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNickname(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateNickname("alice"))
	assert.NoError(t, ValidateNickname("abcdefghijklmnopqrstuvwxyz1234")) // 30 chars
	assert.Error(t, ValidateNickname(""))
	assert.Error(t, ValidateNickname("abcdefghijklmnopqrstuvwxyz12345")) // 31 chars
}
