package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/wudi/fraudguard/session"
)

func sampleRecord() session.Record {
	return session.Record{
		ID:             "abc",
		ForgeryScore:   session.Ptr(0.912),
		SignatureScore: session.Ptr(0.543),
		AadhaarText:    session.Ptr("Government of India\n2341 2341 2346"),
		FaceDistance:   session.Ptr(0.3127),
		FaceVerified:   session.Ptr(true),
		FraudCount:     session.Ptr(2),
	}
}

func TestBuild(t *testing.T) {
	rep := Build(sampleRecord(), Meta{
		Customer:    "A Sharma",
		Reference:   "AC-1001",
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	})
	if len(rep.Sections) != 6 {
		t.Fatalf("sections = %d, want 6", len(rep.Sections))
	}
	if rep.Sections[0].Value != "0.912" || !rep.Sections[0].Analyzed {
		t.Fatalf("forgery section: %+v", rep.Sections[0])
	}
	if rep.Sections[3].Value != "Not analyzed" || rep.Sections[3].Analyzed {
		t.Fatalf("pan section should be unanalyzed: %+v", rep.Sections[3])
	}
	if got := rep.Sections[2].Value; strings.Contains(got, "\n") || !strings.HasSuffix(got, "...") {
		t.Fatalf("aadhaar text not flattened: %q", got)
	}
	if rep.Sections[4].Value != "0.3127 (verified)" {
		t.Fatalf("face section: %+v", rep.Sections[4])
	}
	if rep.Remarks[0] != "None" {
		t.Fatalf("default remarks: %+v", rep.Remarks)
	}
}

func TestBuildTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 500)
	rep := Build(session.Record{AadhaarText: &long}, Meta{GeneratedAt: time.Now()})
	if got := rep.Sections[2].Value; len(got) != 203 {
		t.Fatalf("truncated length = %d, want 200 + ellipsis", len(got))
	}
}

func TestBuildWrapsRemarks(t *testing.T) {
	rep := Build(session.Record{}, Meta{
		Remarks:     strings.Repeat("a", 200),
		GeneratedAt: time.Now(),
	})
	if len(rep.Remarks) != 3 {
		t.Fatalf("remark lines = %d, want 3", len(rep.Remarks))
	}
	if len(rep.Remarks[0]) != 90 || len(rep.Remarks[2]) != 20 {
		t.Fatalf("unexpected wrap: %d/%d", len(rep.Remarks[0]), len(rep.Remarks[2]))
	}
}

func TestBuildKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("क", 250)
	rep := Build(session.Record{AadhaarText: &long}, Meta{
		Remarks:     strings.Repeat("x", 89) + "नमस्ते",
		GeneratedAt: time.Now(),
	})
	got := rep.Sections[2].Value
	if !utf8.ValidString(got) {
		t.Fatalf("aadhaar section is invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != 200 {
		t.Fatalf("truncated rune count = %d, want 200", n)
	}
	for i, line := range rep.Remarks {
		if !utf8.ValidString(line) {
			t.Fatalf("remarks line %d is invalid UTF-8: %q", i, line)
		}
	}
	if got := rep.Remarks[0]; !strings.HasSuffix(got, "न") {
		t.Fatalf("first remark line split mid-rune: %q", got)
	}
}

func TestWritePDF(t *testing.T) {
	rep := Build(sampleRecord(), Meta{
		Customer:    "A (Sharma)",
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	})
	var buf bytes.Buffer
	if err := WritePDF(&buf, rep); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-1.7\n") {
		t.Fatalf("missing PDF header: %q", out[:16])
	}
	for _, want := range []string{
		"/Type /Catalog",
		"/BaseFont /Helvetica-Bold",
		"Banking Fraud Guard - Fraud Detection Report",
		`A \(Sharma\)`,
		"xref",
		"startxref",
		"%%EOF",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("pdf output missing %q", want)
		}
	}
	if strings.Count(out, "endobj") != 6 {
		t.Fatalf("object count = %d, want 6", strings.Count(out, "endobj"))
	}
}

func TestWriteMarkdownAndHTML(t *testing.T) {
	rep := Build(sampleRecord(), Meta{
		Customer:    "A Sharma",
		Reference:   "AC-1001",
		Remarks:     "manual review requested",
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	})
	var md bytes.Buffer
	if err := WriteMarkdown(&md, rep); err != nil {
		t.Fatalf("WriteMarkdown() error = %v", err)
	}
	if !strings.Contains(md.String(), "## Transaction Summary") {
		t.Fatalf("markdown missing section: %s", md.String())
	}

	html, err := HTML(rep)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(string(html), "<h2>KYC Face Match</h2>") {
		t.Fatalf("html missing heading: %s", html)
	}
}
