// Package validation provides input validation utilities
package validation

import "fmt"

const (
	minPasswordLen = 8
	maxNicknameLen = 30
)

// ValidatePassword checks if a password meets the account policy: at least
// 8 characters and at least one ASCII uppercase letter.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}

	hasUpper := false
	for _, r := range password {
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	return nil
}

// ValidateNickname checks if a display nickname meets requirements.
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return fmt.Errorf("nickname is required")
	}
	if len(nickname) > maxNicknameLen {
		return fmt.Errorf("nickname must not exceed %d characters", maxNicknameLen)
	}
	return nil
}
