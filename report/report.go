// Package report assembles the final fraud detection report from a session
// record and exports it as PDF, Markdown, or HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/wudi/fraudguard/session"
)

// Title is the fixed report heading.
const Title = "Banking Fraud Guard - Fraud Detection Report"

const (
	maxSectionChars = 200
	remarksWrap     = 90
)

// Meta carries the operator-supplied report fields.
type Meta struct {
	Customer    string
	Reference   string
	Remarks     string
	GeneratedAt time.Time
}

// Section is one analysis entry in the fixed report layout.
type Section struct {
	Title string
	// Value is the rendered result line; "Not analyzed" when the analysis
	// never ran.
	Value    string
	Analyzed bool
}

// Report is the assembled document, ready for any of the writers.
type Report struct {
	Title    string
	Meta     Meta
	Sections []Section
	// Remarks is the free-text remark wrapped to the layout width.
	Remarks []string
}

// Build renders the session record into the fixed section layout. Sections
// appear in the dashboard tab order regardless of which analyses ran.
func Build(rec session.Record, meta Meta) Report {
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}
	sections := []Section{
		scoreSection("Document Forgery", rec.ForgeryScore),
		scoreSection("Signature Verification", rec.SignatureScore),
		textSection("Aadhaar OCR", rec.AadhaarText),
		textSection("PAN OCR", rec.PANText),
		faceSection(rec.FaceDistance, rec.FaceVerified),
		countSection("Transaction Summary", rec.FraudCount),
	}
	remarks := meta.Remarks
	if strings.TrimSpace(remarks) == "" {
		remarks = "None"
	}
	return Report{
		Title:    Title,
		Meta:     meta,
		Sections: sections,
		Remarks:  wrap(remarks, remarksWrap),
	}
}

func scoreSection(title string, score *float64) Section {
	if score == nil {
		return Section{Title: title, Value: "Not analyzed"}
	}
	return Section{Title: title, Value: fmt.Sprintf("%.3f", *score), Analyzed: true}
}

func textSection(title string, text *string) Section {
	if text == nil {
		return Section{Title: title, Value: "Not analyzed"}
	}
	v := strings.ReplaceAll(*text, "\n", " ")
	if r := []rune(v); len(r) > maxSectionChars {
		v = string(r[:maxSectionChars])
	}
	return Section{Title: title, Value: v + "...", Analyzed: true}
}

func faceSection(distance *float64, verified *bool) Section {
	if distance == nil {
		return Section{Title: "KYC Face Match", Value: "Not analyzed"}
	}
	v := fmt.Sprintf("%.4f", *distance)
	if verified != nil {
		if *verified {
			v += " (verified)"
		} else {
			v += " (mismatch)"
		}
	}
	return Section{Title: "KYC Face Match", Value: v, Analyzed: true}
}

func countSection(title string, count *int) Section {
	if count == nil {
		return Section{Title: title, Value: "Not analyzed"}
	}
	return Section{Title: title, Value: fmt.Sprintf("%d", *count), Analyzed: true}
}

// wrap splits s into width-sized lines, counting runes so multi-byte OCR
// text never gets cut mid-sequence.
func wrap(s string, width int) []string {
	r := []rune(s)
	var lines []string
	for len(r) > width {
		lines = append(lines, string(r[:width]))
		r = r[width:]
	}
	return append(lines, string(r))
}
