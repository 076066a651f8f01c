// Package validation holds the pure input predicates used by the request
// handlers. Every predicate reports failure by returning false.
package validation

import (
	"math"
	"regexp"
	"strconv"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10,}$`)
	isbnRegex  = regexp.MustCompile(`^[0-9]{13}$`)
	yearRegex  = regexp.MustCompile(`^[0-9]{4}$`)
)

// IsStringProvided reports whether v is non-empty. No trimming is done, so a
// whitespace-only value counts as provided.
func IsStringProvided(v string) bool {
	return len(v) > 0
}

// IsNumberProvided reports whether v is non-empty and parses as a number.
func IsNumberProvided(v string) bool {
	_, ok := parseNumber(v)
	return ok
}

func parseNumber(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// IsValidPassword requires at least 8 characters with an ASCII upper case
// letter, an ASCII lower case letter and an ASCII digit.
func IsValidPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit bool
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// IsValidPhone accepts ten or more ASCII digits and nothing else.
func IsValidPhone(p string) bool {
	return phoneRegex.MatchString(p)
}

// IsValidEmail is deliberately permissive: something@something.something.
func IsValidEmail(e string) bool {
	return emailRegex.MatchString(e)
}

// IsValidRole accepts integer values from 1 to 5 inclusive.
func IsValidRole(r string) bool {
	f, ok := parseNumber(r)
	if !ok {
		return false
	}
	return f == math.Trunc(f) && f >= 1 && f <= 5
}

// IsValidISBN13 accepts exactly 13 ASCII digits.
func IsValidISBN13(isbn string) bool {
	return isbnRegex.MatchString(isbn)
}

// IsValidTitle accepts any non-empty value that is not itself a number.
func IsValidTitle(title string) bool {
	return IsStringProvided(title) && !IsNumberProvided(title)
}

// IsValidYear accepts a four digit year.
func IsValidYear(year string) bool {
	return yearRegex.MatchString(year)
}

// IsValidRating accepts a number between 0 and 5 inclusive.
func IsValidRating(r string) bool {
	f, ok := parseNumber(r)
	return ok && f >= 0 && f <= 5
}

// IsNonNegativeInteger accepts whole numbers >= 0, including "3.0".
func IsNonNegativeInteger(v string) bool {
	f, ok := parseNumber(v)
	return ok && f >= 0 && f == math.Trunc(f) && !math.IsInf(f, 0)
}
