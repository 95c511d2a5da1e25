package jsonx

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_FencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"a\": 1}\n```\nLet me know if you need more."
	got, err := Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("extracted %q", got)
	}
}

func TestExtract_UntaggedFence(t *testing.T) {
	text := "```\n[1, 2, 3]\n```"
	got, err := Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[1, 2, 3]` {
		t.Errorf("extracted %q", got)
	}
}

func TestExtract_BraceSlice(t *testing.T) {
	text := `Sure! The result is {"insights": [{"title": "x"}]} — hope that helps.`
	got, err := Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"insights": [{"title": "x"}]}` {
		t.Errorf("extracted %q", got)
	}
}

func TestExtract_BracketSlice(t *testing.T) {
	text := `The list: [“a”, “b”] as requested.`
	got, err := Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[“a”, “b”]` {
		t.Errorf("extracted %q", got)
	}
}

func TestExtract_NoJSON(t *testing.T) {
	if _, err := Extract("I could not produce any structured output, sorry."); err == nil {
		t.Fatal("expected error when no JSON present")
	}
	if _, err := Extract(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParse_CleanJSON(t *testing.T) {
	var v map[string]int
	if err := Parse(`{"a": 1, "b": 2}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["a"] != 1 || v["b"] != 2 {
		t.Errorf("parsed %v", v)
	}
}

func TestParse_FenceMatchesDirectParse(t *testing.T) {
	inner := `{"observations": [{"description": "d", "evidence": "e", "confidence": 7}]}`
	fenced := "```json\n" + inner + "\n```"

	var fromFence, direct map[string]any
	if err := Parse(fenced, &fromFence); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Parse(inner, &direct); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fromFence, direct) {
		t.Errorf("fenced parse %v != direct parse %v", fromFence, direct)
	}
}

func TestParse_SmartQuotes(t *testing.T) {
	var v map[string]string
	if err := Parse("{“title”: “Deep focus”}", &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["title"] != "Deep focus" {
		t.Errorf("parsed %v", v)
	}
}

func TestParse_TrailingComma(t *testing.T) {
	var v map[string][]string
	if err := Parse(`{"tags": ["a", "b",],}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v["tags"]) != 2 {
		t.Errorf("parsed %v", v)
	}
}

func TestParse_BareIdentifierSoleElement(t *testing.T) {
	var v map[string][]string
	if err := Parse(`{"modality": [TEXTBOX]}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v["modality"]) != 1 || v["modality"][0] != "TEXTBOX" {
		t.Errorf("parsed %v", v)
	}
}

func TestParse_BareIdentifierPropertyValue(t *testing.T) {
	var v map[string]string
	if err := Parse(`{"modality": TEXTBOX}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["modality"] != "TEXTBOX" {
		t.Errorf("parsed %v", v)
	}
}

func TestParse_CombinedRepairs(t *testing.T) {
	text := "```json\n{“kind”: [WIDGET], \"tags\": [\"a\",],}\n```"
	var v map[string]any
	if err := Parse(text, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kind := v["kind"].([]any)
	if kind[0] != "WIDGET" {
		t.Errorf("parsed %v", v)
	}
}

func TestParse_KeepsBooleanValues(t *testing.T) {
	var v map[string]any
	if err := Parse(`{"flag": true, "tags": ["a",],}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["flag"] != true {
		t.Errorf("expected boolean true to survive repair, got %T %v", v["flag"], v["flag"])
	}
}

func TestParse_UnrecoverableGarbage(t *testing.T) {
	var v map[string]any
	err := Parse(`{"a": 1 "b": }}}{{`, &v)
	if err == nil {
		t.Fatal("expected error for unrecoverable input")
	}
	if !strings.Contains(err.Error(), "unable to parse JSON") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParse_Idempotent(t *testing.T) {
	text := "{“count”: [ONE, TWO,],}"
	var first map[string]any
	if err := Parse(text, &first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A successfully parsed snippet re-extracts and re-parses identically.
	snippet, err := Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repaired := QuoteBareIdentifiers(StripTrailingCommas(ReplaceSmartQuotes(snippet)))
	var second map[string]any
	if err := Parse(repaired, &second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repair is not idempotent: %v vs %v", first, second)
	}
}

func TestRepairTransforms(t *testing.T) {
	if got := ReplaceSmartQuotes("“a” ‘b’"); got != `"a" 'b'` {
		t.Errorf("ReplaceSmartQuotes = %q", got)
	}
	if got := StripTrailingCommas(`{"a": [1,2,], }`); got != `{"a": [1,2] }` {
		t.Errorf("StripTrailingCommas = %q", got)
	}
	if got := QuoteBareIdentifiers(`[alpha, beta]`); got != `["alpha", "beta"]` {
		t.Errorf("QuoteBareIdentifiers = %q", got)
	}
}
