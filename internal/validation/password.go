package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MinAdminPasswordLength — минимальная длина пароля администратора.
const MinAdminPasswordLength = 10

// ValidatePassword проверяет пароль администратора перед хешированием.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinAdminPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinAdminPasswordLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain an uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain a lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain a digit")
	}

	return nil
}
