// Package identity extracts and validates Indian ID numbers (Aadhaar, PAN)
// from OCR text.
package identity

import (
	"regexp"
	"strings"
)

// Match is a candidate ID number found in free text.
type Match struct {
	// Value is the normalized number: digits only for Aadhaar, uppercase for
	// PAN.
	Value string
	// Raw is the text as it appeared, including separators.
	Raw string
	// Valid reports whether the number passed the scheme's integrity check
	// (Verhoeff checksum for Aadhaar, structural check for PAN), not just the
	// format pattern.
	Valid bool
}

var (
	aadhaarRe = regexp.MustCompile(`\d{4}[\s-]?\d{4}[\s-]?\d{4}`)
	panRe     = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)
)

// FindAadhaar returns all Aadhaar-like 12-digit candidates in text, in order
// of appearance. Numbers starting with 0 or 1 are not issued and are skipped.
func FindAadhaar(text string) []Match {
	var out []Match
	for _, raw := range aadhaarRe.FindAllString(text, -1) {
		digits := normalizeDigits(raw)
		if len(digits) != 12 {
			continue
		}
		if digits[0] == '0' || digits[0] == '1' {
			continue
		}
		out = append(out, Match{Value: digits, Raw: raw, Valid: verhoeffValid(digits)})
	}
	return out
}

// BestAadhaar returns the first checksum-valid candidate, falling back to the
// first format-only match, mirroring how review UIs surface "found" numbers.
func BestAadhaar(text string) (Match, bool) {
	return best(FindAadhaar(text))
}

// FindPAN returns all PAN-like candidates in the uppercased text.
func FindPAN(text string) []Match {
	var out []Match
	for _, raw := range panRe.FindAllString(strings.ToUpper(text), -1) {
		out = append(out, Match{Value: raw, Raw: raw, Valid: panStructureValid(raw)})
	}
	return out
}

// BestPAN returns the first structurally valid PAN, falling back to the first
// format-only match.
func BestPAN(text string) (Match, bool) {
	return best(FindPAN(text))
}

func best(matches []Match) (Match, bool) {
	for _, m := range matches {
		if m.Valid {
			return m, true
		}
	}
	if len(matches) > 0 {
		return matches[0], true
	}
	return Match{}, false
}

func normalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Verhoeff dihedral group tables. Aadhaar numbers carry a Verhoeff check
// digit in the last position.
var (
	verhoeffD = [10][10]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
		{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
		{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
		{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
		{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
		{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
		{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
		{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
		{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	}
	verhoeffP = [8][10]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
		{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
		{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
		{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
		{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
		{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
		{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
	}
)

func verhoeffValid(digits string) bool {
	c := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		c = verhoeffD[c][verhoeffP[i%8][d]]
	}
	return c == 0
}

// panStructureValid checks the holder-type code in the fourth position of an
// already format-matched PAN. P=person, C=company, H=HUF, F=firm, A=AOP,
// T=trust, B=BOI, L=local authority, J=artificial juridical person, G=government.
func panStructureValid(pan string) bool {
	return strings.ContainsRune("PFCHATBLJG", rune(pan[3]))
}
