package csvsource

import (
	"reflect"
	"testing"
)

func TestParseCommaFile(t *testing.T) {
	raw := []byte("email,created_at\na@x.com,2024-01-01\nb@x.com,2024-01-02\n")
	doc := Parse(raw)
	if doc.Delimiter != ',' {
		t.Fatalf("expected comma delimiter, got %q", doc.Delimiter)
	}
	if !reflect.DeepEqual(doc.Headers, []string{"email", "created_at"}) {
		t.Fatalf("unexpected headers: %v", doc.Headers)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(doc.Rows))
	}
	if doc.Rows[0]["email"] != "a@x.com" || doc.Rows[1]["created_at"] != "2024-01-02" {
		t.Fatalf("unexpected rows: %v", doc.Rows)
	}
}

func TestParseSemicolonWithBOMEqualsComma(t *testing.T) {
	comma := Parse([]byte("email,created_at\na@x.com,2024-01-01\n"))
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("email;created_at\na@x.com;2024-01-01\n")...)
	semi := Parse(bom)

	if semi.Delimiter != ';' {
		t.Fatalf("expected semicolon delimiter, got %q", semi.Delimiter)
	}
	if !reflect.DeepEqual(comma.Headers, semi.Headers) {
		t.Fatalf("headers differ: %v vs %v", comma.Headers, semi.Headers)
	}
	if !reflect.DeepEqual(comma.Rows, semi.Rows) {
		t.Fatalf("rows differ: %v vs %v", comma.Rows, semi.Rows)
	}
}

func TestParseTabAndPipe(t *testing.T) {
	tab := Parse([]byte("a\tb\n1\t2\n"))
	if tab.Delimiter != '\t' {
		t.Fatalf("expected tab, got %q", tab.Delimiter)
	}
	pipe := Parse([]byte("a|b\n1|2\n"))
	if pipe.Delimiter != '|' {
		t.Fatalf("expected pipe, got %q", pipe.Delimiter)
	}
	if pipe.Rows[0]["b"] != "2" {
		t.Fatalf("unexpected pipe rows: %v", pipe.Rows)
	}
}

func TestParseDefaultsToCommaWhenUndetectable(t *testing.T) {
	doc := Parse([]byte("email\na@x.com\n"))
	if doc.Delimiter != ',' {
		t.Fatalf("expected comma fallback, got %q", doc.Delimiter)
	}
	if len(doc.Rows) != 1 || doc.Rows[0]["email"] != "a@x.com" {
		t.Fatalf("unexpected rows: %v", doc.Rows)
	}
}

func TestParsePadsShortRows(t *testing.T) {
	doc := Parse([]byte("a,b,c\n1,2\n"))
	if len(doc.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(doc.Rows))
	}
	if doc.Rows[0]["c"] != "" {
		t.Fatalf("expected short row padded with empty string, got %q", doc.Rows[0]["c"])
	}
}

func TestParseEmptyInput(t *testing.T) {
	doc := Parse(nil)
	if len(doc.Headers) != 0 || len(doc.Rows) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestDecodeQuotedCommasDoNotConfuseSniffer(t *testing.T) {
	raw := []byte("name;note\nalice;\"hello, world\"\nbob;\"a, b, c\"\n")
	_, delim := Decode(raw)
	if delim != ';' {
		t.Fatalf("expected semicolon despite quoted commas, got %q", delim)
	}
}
