// Package jsonx extracts and repairs JSON embedded in free-form model output.
// Models wrap JSON in prose, code fences, smart quotes, trailing commas and
// the occasional unquoted identifier; every pipeline stage funnels its raw
// responses through here so that tolerance lives in one place.
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

var smartQuotes = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

	// Unquoted identifiers as array elements: [FOO], [a, FOO, b].
	soleBareElementRe  = regexp.MustCompile(`\[\s*([A-Za-z_][A-Za-z0-9_]*)\s*\]`)
	midBareElementRe   = regexp.MustCompile(`(\[[^\]]*?),\s*([A-Za-z_][A-Za-z0-9_]*)\s*([,\]])`)
	firstBareElementRe = regexp.MustCompile(`(\[)\s*([A-Za-z_][A-Za-z0-9_]*)\s*([,\]])`)

	// Unquoted identifiers as property values: "key": FOO.
	barePropertyValueRe = regexp.MustCompile(`(["']:\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*[,}])`)
)

// Extract returns the most likely JSON snippet from model output: the interior
// of the first fenced code block, or the slice from the first opening brace or
// bracket to the last matching closer.
func Extract(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("no text supplied for JSON extraction")
	}

	var candidate string
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else {
		start := strings.IndexAny(text, "{[")
		if start < 0 {
			return "", fmt.Errorf("no JSON object or array detected in model response")
		}
		closing := "}"
		if text[start] == '[' {
			closing = "]"
		}
		end := strings.LastIndex(text, closing)
		if end < start {
			return "", fmt.Errorf("no matching %q for JSON payload", closing)
		}
		candidate = text[start : end+1]
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", fmt.Errorf("extracted JSON snippet is empty")
	}
	return candidate, nil
}

// ReplaceSmartQuotes translates Unicode quotation marks to their ASCII forms.
func ReplaceSmartQuotes(s string) string {
	return smartQuotes.Replace(s)
}

// StripTrailingCommas removes commas that sit immediately before a closing
// brace or bracket.
func StripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// QuoteBareIdentifiers wraps unquoted identifier tokens in double quotes where
// they appear as array elements or property values. Literal true/false/null
// property values are left alone.
func QuoteBareIdentifiers(s string) string {
	s = soleBareElementRe.ReplaceAllString(s, `["$1"]`)
	s = midBareElementRe.ReplaceAllString(s, `$1, "$2"$3`)
	s = firstBareElementRe.ReplaceAllString(s, `$1"$2"$3`)
	s = barePropertyValueRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := barePropertyValueRe.FindStringSubmatch(m)
		switch sub[2] {
		case "true", "false", "null":
			return m
		}
		return sub[1] + `"` + sub[2] + `"` + sub[3]
	})
	return s
}

// repairs are applied in order, with a fresh parse attempt after each one.
var repairs = []func(string) string{
	ReplaceSmartQuotes,
	StripTrailingCommas,
	QuoteBareIdentifiers,
}

// Parse extracts the JSON payload from text and unmarshals it into v. On a
// parse failure it applies the repair passes in order, re-attempting after
// each. It either fills v with data that round-trips through encoding/json or
// returns an error naming the original failure; it never returns guessed
// structure.
func Parse(text string, v any) error {
	snippet, err := Extract(text)
	if err != nil {
		return err
	}

	firstErr := json.Unmarshal([]byte(snippet), v)
	if firstErr == nil {
		return nil
	}

	repaired := snippet
	for _, fix := range repairs {
		repaired = fix(repaired)
		if json.Unmarshal([]byte(repaired), v) == nil {
			return nil
		}
	}

	return fmt.Errorf("unable to parse JSON from model response: %w (snippet %q)", firstErr, truncate(snippet, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
