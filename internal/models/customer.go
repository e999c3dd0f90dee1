package models

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidPhone = errors.New("invalid phone number")

type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:50;not null"`
	Phone     string    `json:"phone" gorm:"size:20;uniqueIndex;not null"`
	Address   string    `json:"address" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizePhone converts Kenyan national numbers to E.164 and validates
// numbers already given in international form.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "+"):
		if n := len(digits) - 1; n < 8 || n > 15 {
			return "", ErrInvalidPhone
		}
		return digits, nil
	case strings.HasPrefix(digits, "254") && len(digits) == 12:
		return "+" + digits, nil
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		return "+254" + digits[1:], nil
	case (strings.HasPrefix(digits, "7") || strings.HasPrefix(digits, "1")) && len(digits) == 9:
		return "+254" + digits, nil
	}
	return "", ErrInvalidPhone
}
