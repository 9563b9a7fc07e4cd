package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
)

// WriteMarkdown emits the report as Markdown, mirroring the PDF section order.
func WriteMarkdown(w io.Writer, rep Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rep.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.Meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	if rep.Meta.Customer != "" {
		fmt.Fprintf(&b, "Customer: %s\n\n", rep.Meta.Customer)
	}
	if rep.Meta.Reference != "" {
		fmt.Fprintf(&b, "Ref: %s\n\n", rep.Meta.Reference)
	}
	for _, sec := range rep.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.Title, sec.Value)
	}
	b.WriteString("## Remarks\n\n")
	for _, line := range rep.Remarks {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// HTML renders the Markdown form of the report through goldmark, for the
// dashboard-side preview.
func HTML(rep Report) ([]byte, error) {
	var md bytes.Buffer
	if err := WriteMarkdown(&md, rep); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return out.Bytes(), nil
}
