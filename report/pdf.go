package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// A4 page size in points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	mm         = 72.0 / 25.4
)

// WritePDF emits the report as a minimal single-page PDF using the built-in
// Helvetica fonts: a fixed text layout, one content stream, a classic xref
// table. No compression, so the output is easy to inspect in tests.
func WritePDF(w io.Writer, rep Report) error {
	content := renderContent(rep)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, 0, 6)
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(fmt.Sprintf(
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << /Font << /F1 4 0 R /F2 5 0 R >> >> /Contents 6 0 R >>",
		pageWidth, pageHeight))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold >>")
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefStart)

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// renderContent lays the report out top-down, matching the dashboard's fixed
// export format.
func renderContent(rep Report) string {
	var b strings.Builder
	text := func(bold bool, size, x, y float64, s string) {
		font := "/F2"
		if bold {
			font = "/F1"
		}
		fmt.Fprintf(&b, "BT %s %.0f Tf %.2f %.2f Td (%s) Tj ET\n", font, size, x, y, escapeText(s))
	}

	h := pageHeight
	text(true, 16, 20*mm, h-20*mm, rep.Title)
	text(false, 10, 20*mm, h-26*mm, "Generated: "+rep.Meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	if rep.Meta.Customer != "" {
		text(false, 10, 20*mm, h-32*mm, "Customer: "+rep.Meta.Customer)
	}
	if rep.Meta.Reference != "" {
		text(false, 10, 20*mm, h-38*mm, "Ref: "+rep.Meta.Reference)
	}

	y := h - 48*mm
	for _, sec := range rep.Sections {
		text(true, 12, 20*mm, y, sec.Title)
		y -= 6 * mm
		text(false, 10, 20*mm, y, sec.Value)
		y -= 8 * mm
	}

	text(true, 12, 20*mm, y, "Remarks")
	y -= 6 * mm
	for _, line := range rep.Remarks {
		text(false, 10, 20*mm, y, line)
		y -= 6 * mm
	}
	return b.String()
}

// escapeText escapes the PDF literal-string delimiters.
func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
