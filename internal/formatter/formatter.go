// package formatter renders tab data as terminal-safe text and exports the
// collection to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/fretless/tabstash/internal/models"
)

// Escape converts arbitrary user-supplied text to safe displayable text.
//
// All four tab fields are free-form remote data; a crafted value could carry
// ANSI escape sequences or control characters that reposition the cursor,
// rewrite earlier output or retitle the terminal. Escape strips ESC-initiated
// sequences (CSI and OSC included) and all other C0/C1 controls except
// newline and horizontal tab. Display code must route every user-supplied
// field through it.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == 0x1b { // ESC: swallow the whole sequence
			i += escapeSequenceLen(runes[i+1:])
			continue
		}

		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}

		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// escapeSequenceLen returns how many runes after ESC belong to the sequence.
func escapeSequenceLen(rest []rune) int {
	if len(rest) == 0 {
		return 0
	}

	switch rest[0] {
	case '[': // CSI: parameters end at a byte in 0x40..0x7e
		for i := 1; i < len(rest); i++ {
			if rest[i] >= 0x40 && rest[i] <= 0x7e {
				return i + 1
			}
		}
		return len(rest)
	case ']': // OSC: terminated by BEL or ST (ESC \)
		for i := 1; i < len(rest); i++ {
			if rest[i] == 0x07 {
				return i + 1
			}
			if rest[i] == 0x1b && i+1 < len(rest) && rest[i+1] == '\\' {
				return i + 2
			}
		}
		return len(rest)
	default: // two-character sequence
		return 1
	}
}

// SummaryLine renders the collapsed one-line form of a tab: title, artist,
// and the optional tuning separated by a bullet.
func SummaryLine(tab models.Tab) string {
	line := fmt.Sprintf("%s — %s", Escape(tab.Title), Escape(tab.Artist))
	if tab.Tuning != "" {
		line = fmt.Sprintf("%s • %s", line, Escape(tab.Tuning))
	}
	return line
}

// ExportToCSV converts a tab collection to CSV with columns: ID, Title, Artist, Tuning
func ExportToCSV(collection []models.Tab) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Tuning"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, tab := range collection {
		record := []string{tab.ID, tab.Title, tab.Artist, tab.Tuning}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a tab collection to Markdown, one section per tab
// with the content in a fenced code block.
func ExportToMarkdown(collection []models.Tab) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Guitar Tabs\n\n")
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(collection)))

	for _, tab := range collection {
		buf.WriteString(fmt.Sprintf("## %s — %s\n\n", tab.Title, tab.Artist))
		if tab.Tuning != "" {
			buf.WriteString(fmt.Sprintf("**Tuning**: %s\n\n", tab.Tuning))
		}
		buf.WriteString("```\n")
		buf.WriteString(tab.Content)
		if !strings.HasSuffix(tab.Content, "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString("```\n\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a tab collection to plain text, summary lines only.
func ExportToText(collection []models.Tab) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tabs: %d\n\n", len(collection)))
	for i, tab := range collection {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, SummaryLine(tab)))
	}

	return buf.Bytes(), nil
}

// WriteExport writes the collection to path in the given format
// ("csv", "md" or "text").
func WriteExport(collection []models.Tab, format, path string) error {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = ExportToCSV(collection)
	case "md", "markdown":
		data, err = ExportToMarkdown(collection)
	case "text", "txt":
		data, err = ExportToText(collection)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
