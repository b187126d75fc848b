package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadItemRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.jsonl")
	content := `{"id":"a","embedding":[1,2],"metadata":{"k":"v"},"document":"hello"}

{"embedding":[3,4]}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	records, err := readItemRecords(path)
	if err != nil {
		t.Fatalf("readItemRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a" || records[0].Document != "hello" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].ID != "" || len(records[1].Embedding) != 2 {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestReadItemRecords_BadLineNamesPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":\"ok\"}\nnot json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readItemRecords(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParseWhere(t *testing.T) {
	where, err := parseWhere(`{"category":{"$eq":"x"}}`)
	if err != nil {
		t.Fatalf("parseWhere: %v", err)
	}
	if where == nil {
		t.Fatal("expected a filter")
	}
	if _, err := parseWhere("not json"); err == nil {
		t.Fatal("expected error for malformed filter")
	}
	if where, err := parseWhere(""); err != nil || where != nil {
		t.Fatalf("empty filter should be nil, got (%v, %v)", where, err)
	}
}

func TestFormatMetadata(t *testing.T) {
	if got := formatMetadata(nil); got != "-" {
		t.Fatalf("formatMetadata(nil) = %q", got)
	}
	if got := formatMetadata(map[string]any{"k": "v"}); got != `{"k":"v"}` {
		t.Fatalf("formatMetadata = %q", got)
	}
}
