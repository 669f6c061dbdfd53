package service

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Фиксированный набор допустимых специальных символов пароля
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

const (
	msgRequired        = "обязательное поле"
	msgInvalidEmail    = "введите корректный email"
	msgEmailTaken      = "пользователь с таким email уже существует"
	msgShortFullName   = "имя должно содержать не менее 2 символов"
	msgPasswordsDiffer = "пароли не совпадают"
)

func validEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

func validFullName(fullName string) bool {
	return len([]rune(strings.TrimSpace(fullName))) >= 2
}

// validatePasswordPolicy возвращает все нарушенные правила политики,
// а не первое попавшееся
func validatePasswordPolicy(password string) []string {
	var violations []string

	if len(password) < 8 {
		violations = append(violations, "пароль должен содержать минимум 8 символов")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		}
	}

	if !hasUpper {
		violations = append(violations, "пароль должен содержать хотя бы одну заглавную букву")
	}
	if !hasLower {
		violations = append(violations, "пароль должен содержать хотя бы одну строчную букву")
	}
	if !hasDigit {
		violations = append(violations, "пароль должен содержать хотя бы одну цифру")
	}
	if !hasSpecial {
		violations = append(violations, "пароль должен содержать хотя бы один специальный символ")
	}

	return violations
}
