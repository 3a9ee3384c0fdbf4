package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinReporterNameLength  = 2
	MaxReporterNameLength  = 100
	MaxStreetAddressLength = 200
	MaxEmailLength         = 254
	MaxStatusMessageLength = 1000
	MaxAssigneeLength      = 100
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	// Мобильные 09XXXXXXXXX / +639XXXXXXXXX и городские 02-XXXX-XXXX.
	mobileRegex   = regexp.MustCompile(`^(09|\+639|639)\d{9}$`)
	landlineRegex = regexp.MustCompile(`^(02|\+632)\d{7,8}$`)
	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email is too long")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("email must contain a single @")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("email local part must be 1 to 64 characters")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("email local part contains invalid characters")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("email domain is invalid")
	}

	return nil
}

// NormalizePhone убирает пробелы, дефисы и скобки.
func NormalizePhone(phone string) string {
	return phoneStripper.Replace(strings.TrimSpace(phone))
}

// ValidatePhone принимает филиппинские мобильные и манильские городские номера.
func ValidatePhone(phone string) error {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return fmt.Errorf("phone is required")
	}
	if mobileRegex.MatchString(normalized) || landlineRegex.MatchString(normalized) {
		return nil
	}
	return fmt.Errorf("phone must be a Philippine number, e.g. 0917 123 4567")
}

// ValidateReporterName проверяет имя заявителя.
func ValidateReporterName(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateNonEmpty("name", name); err != nil {
		return err
	}
	return ValidateLength("name", name, MinReporterNameLength, MaxReporterNameLength)
}

// ValidateStreetAddress проверяет необязательный адрес.
func ValidateStreetAddress(address string) error {
	return ValidateLength("street address", strings.TrimSpace(address), 0, MaxStreetAddressLength)
}

// ValidateContact проверяет, что указан хотя бы один способ связи, и проверяет заданные.
func ValidateContact(phone, email string) map[string]string {
	errs := make(map[string]string)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)

	if phone == "" && email == "" {
		errs["phone"] = "provide a phone number or an email"
		return errs
	}
	if phone != "" {
		if err := ValidatePhone(phone); err != nil {
			errs["phone"] = err.Error()
		}
	}
	if email != "" {
		if err := ValidateEmail(email); err != nil {
			errs["email"] = err.Error()
		}
	}
	return errs
}
