// Package validation содержит функции валидации входных данных.
package validation

import (
	"net/mail"
	"unicode/utf8"
)

// MinPasswordLength задаёт минимально допустимую длину пароля.
const MinPasswordLength = 6

// IsValidEmail проверяет синтаксическую корректность адреса электронной почты.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

// IsValidPassword проверяет минимальные требования к паролю.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// IsValidDimensions проверяет размеры ковра, заявленные заказчиком.
func IsValidDimensions(width, length float64) bool {
	return width > 0 && length > 0
}

// IsValidArea проверяет обмеренную площадь ковра.
func IsValidArea(area float64) bool {
	return area > 0
}
