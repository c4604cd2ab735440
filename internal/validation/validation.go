// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"
)

// IsValidAmount проверяет, что сумма операции положительна.
func IsValidAmount(amount int64) bool {
	return amount > 0
}

// IsValidUsername проверяет имя пользователя: 3-30 символов,
// латинские буквы, цифры и подчёркивание.
func IsValidUsername(username string) bool {
	if len(username) < 3 || len(username) > 30 {
		return false
	}

	for _, ch := range username {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' {
			return false
		}
	}

	return true
}

// IsValidAccountNumber проверяет номер кошелька мобильных платежей:
// 11 цифр с префиксом 03.
func IsValidAccountNumber(number string) bool {
	if len(number) != 11 {
		return false
	}

	for _, ch := range number {
		if !unicode.IsDigit(ch) {
			return false
		}
	}

	return strings.HasPrefix(number, "03")
}

// SupportLink приводит контакт поддержки к ссылке на чат.
// Готовая ссылка возвращается как есть, телефонный номер очищается
// от нецифровых символов и оборачивается в https://wa.me/.
func SupportLink(contact string) string {
	if contact == "" {
		return ""
	}

	if strings.HasPrefix(contact, "http://") || strings.HasPrefix(contact, "https://") {
		return contact
	}

	var digits strings.Builder
	for _, ch := range contact {
		if unicode.IsDigit(ch) {
			digits.WriteRune(ch)
		}
	}

	if digits.Len() == 0 {
		return ""
	}

	return "https://wa.me/" + digits.String()
}
