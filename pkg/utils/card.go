package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// CardNumberLength is the length of every generated debit card number
const CardNumberLength = 16

var issuerPrefixes = map[string]string{
	"visa":       "4",
	"mastercard": "51",
	"jcb":        "35",
}

// IssuerPrefix returns the leading digits for a card type, "9" for unknown issuers
func IssuerPrefix(cardType string) string {
	if prefix, ok := issuerPrefixes[strings.ToLower(strings.TrimSpace(cardType))]; ok {
		return prefix
	}
	return "9"
}

// GenerateCardNumber draws a random CardNumberLength-digit number starting with prefix
// and ending in a Luhn check digit
func GenerateCardNumber(prefix string) (string, error) {
	if len(prefix) >= CardNumberLength {
		return "", fmt.Errorf("prefix %q leaves no room for random digits", prefix)
	}

	digits := []byte(prefix)
	buf := make([]byte, 1)
	for len(digits) < CardNumberLength-1 {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random digit: %w", err)
		}
		// 250..255 would bias the modulo
		if buf[0] >= 250 {
			continue
		}
		digits = append(digits, '0'+buf[0]%10)
	}

	return string(digits) + string('0'+luhnCheckDigit(string(digits))), nil
}

// LuhnValid reports whether number is all digits and passes the Luhn checksum
func LuhnValid(number string) bool {
	if len(number) < 2 {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return luhnCheckDigit(number[:len(number)-1]) == number[len(number)-1]-'0'
}

func luhnCheckDigit(payload string) byte {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte((10 - sum%10) % 10)
}

// MaskCardNumber keeps the last four digits visible
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
