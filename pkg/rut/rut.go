package rut

import (
	"errors"
	"strings"
)

var (
	ErrEmpty   = errors.New("rut is required")
	ErrFormat  = errors.New("rut format is invalid")
	ErrAgainst = errors.New("rut check digit does not match")
)

// Normalize strips dots, hyphens and spaces and uppercases the check digit.
func Normalize(raw string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(raw)))
}

// Validate verifies the mod-11 check digit of a Chilean RUT and returns it
// in canonical form ("12345678-5"). Validation happens before any database
// lookup, so a bad RUT never produces side effects.
func Validate(raw string) (string, error) {
	clean := Normalize(raw)
	if clean == "" {
		return "", ErrEmpty
	}
	if len(clean) < 2 || len(clean) > 9 {
		return "", ErrFormat
	}

	body := clean[:len(clean)-1]
	dv := clean[len(clean)-1:]

	for _, c := range body {
		if c < '0' || c > '9' {
			return "", ErrFormat
		}
	}
	if dv != "K" && (dv[0] < '0' || dv[0] > '9') {
		return "", ErrFormat
	}

	if checkDigit(body) != dv {
		return "", ErrAgainst
	}
	return body + "-" + dv, nil
}

// checkDigit computes the expected digit with the 2..7 cycling factors,
// walking the body right to left.
func checkDigit(body string) string {
	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch rest := 11 - sum%11; rest {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return string(rune('0' + rest))
	}
}
