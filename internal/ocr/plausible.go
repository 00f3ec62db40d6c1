package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// currencyAmount matches prices such as "$4.99", "€12", "3,50€" or "10 USD".
	currencyAmount = regexp.MustCompile(`^(?:[$€£¥]\s?\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s?(?:[$€£¥]|usd|eur|gbp|jpy))$`)

	// numeric matches plain numbers, times and dates.
	numeric = regexp.MustCompile(`^\d+(?:[.,:/-]\d+)*%?$`)

	// unitSuffix matches numbers with a short unit or ordinal suffix.
	unitSuffix = regexp.MustCompile(`^\d+(?:st|nd|rd|th|am|pm|kg|g|km|m|cm|mm|ml|l|mg|oz|lb|lbs|ft|in)$`)
)

// Letters that never appear doubled in English words.
const forbiddenDoubles = "hjkqvwxy"

// IsPlausibleWord reports whether an OCR token looks like real text rather
// than noise.
//
// Currency amounts, numbers and number-unit pairs are always kept. Letter
// tokens must have a sensible share of vowels (short all-caps tokens such as
// "TV" are exempt), must not repeat a letter three times in a row, and must
// not double a letter English never doubles. Tokens mixing letters and
// digits in any other way are rejected.
func IsPlausibleWord(token string) bool {
	w := strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) && !strings.ContainsRune("$€£¥%", r)
	})
	if w == "" {
		return false
	}

	lower := strings.ToLower(w)
	if currencyAmount.MatchString(lower) || numeric.MatchString(lower) || unitSuffix.MatchString(lower) {
		return true
	}

	var letters, vowels, digits, upper int
	var prev rune
	run := 0
	for _, r := range lower {
		if r == prev {
			run++
		} else {
			run = 1
		}
		prev = r

		switch {
		case unicode.IsLetter(r):
			letters++
			if strings.ContainsRune("aeiouy", r) {
				vowels++
			}
			if run >= 3 {
				return false
			}
			if run == 2 && strings.ContainsRune(forbiddenDoubles, r) {
				return false
			}
		case unicode.IsDigit(r):
			digits++
		}
	}
	for _, r := range w {
		if unicode.IsUpper(r) {
			upper++
		}
	}

	if letters == 0 || digits > 0 {
		return false
	}
	if letters == 1 {
		return lower == "a" || lower == "i"
	}
	if upper == letters && letters <= 5 {
		return true
	}

	ratio := float64(vowels) / float64(letters)
	if ratio < 0.1 {
		return false
	}
	return letters < 4 || ratio <= 0.85
}
