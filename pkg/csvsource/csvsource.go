package csvsource

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/guestflow/platform/pkg/fieldmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Candidate delimiters, in fallback preference order.
var candidates = []rune{',', ';', '\t', '|'}

const sniffSample = 4096

// Document is a decoded CSV upload: raw text, the resolved delimiter, the
// header row as read, and one alias-resolvable map per data row.
type Document struct {
	Text      string
	Delimiter rune
	Headers   []string
	Rows      []fieldmap.Row
}

// Decode turns raw upload bytes into text plus a delimiter. It strips a
// UTF-8 byte-order mark, sniffs the first 4KB for a consistent delimiter,
// and falls back to the most frequent candidate in the header line. It
// always returns one of the four candidates and never fails.
func Decode(raw []byte) (string, rune) {
	text := string(bytes.TrimPrefix(raw, utf8BOM))

	sample := text
	if len(sample) > sniffSample {
		sample = sample[:sniffSample]
	}

	if delim, ok := sniff(sample); ok {
		return text, delim
	}

	firstLine := ""
	if lines := strings.SplitN(text, "\n", 2); len(lines) > 0 {
		firstLine = strings.TrimRight(lines[0], "\r")
	}

	best := ','
	bestCount := 0
	for _, d := range candidates {
		if n := strings.Count(firstLine, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return text, best
}

// sniff looks for a candidate that appears a consistent, nonzero number of
// times on every sampled line. Ties go to the candidate with the higher
// per-line count.
func sniff(sample string) (rune, bool) {
	var lines []string
	for _, line := range strings.Split(sample, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		if len(lines) >= 10 {
			break
		}
	}
	if len(lines) < 2 {
		return 0, false
	}

	best := rune(0)
	bestCount := 0
	for _, d := range candidates {
		count := strings.Count(lines[0], string(d))
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if strings.Count(line, string(d)) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best = d
			bestCount = count
		}
	}
	if bestCount == 0 {
		return 0, false
	}
	return best, true
}

// Parse decodes raw bytes and reads every row into a header-keyed map.
// Rows that cannot be tokenized at all are skipped; short rows get empty
// strings for the missing columns.
func Parse(raw []byte) Document {
	text, delim := Decode(raw)
	doc := Document{Text: text, Delimiter: delim}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return doc
	}
	doc.Headers = make([]string, len(header))
	for i, h := range header {
		doc.Headers[i] = strings.TrimSpace(h)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		row := make(fieldmap.Row, len(doc.Headers))
		for i, h := range doc.Headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		doc.Rows = append(doc.Rows, row)
	}

	return doc
}
