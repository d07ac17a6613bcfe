// Package filterdsl parses the free-text span search expression into a
// storage.SpanFilter and renders a filter back to its canonical DSL form
// (spec.md §4.D). Grammar: whitespace-separated tokens of the form
// key:value or bare words; bare words concatenate into name_contains.
package filterdsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tracewayhq/traceway/ids"
	"github.com/tracewayhq/traceway/storage"
)

var recognizedKeys = map[string]bool{
	"kind": true, "model": true, "provider": true, "status": true,
	"name": true, "path": true, "trace": true, "since": true, "until": true,
}

var relativeOffset = regexp.MustCompile(`^(\d+)(m|h|d)$`)

// Parse tokenizes expr and builds a storage.SpanFilter. since/until values
// are resolved against clock.Now() when they match a relative offset.
func Parse(expr string, clock ids.Clock) (storage.SpanFilter, error) {
	var f storage.SpanFilter
	var nameParts []string

	tokens, err := tokenize(expr)
	if err != nil {
		return f, err
	}

	for _, tok := range tokens {
		key, value, hasKey := splitToken(tok)
		if !hasKey || !recognizedKeys[key] {
			nameParts = append(nameParts, tok)
			continue
		}
		switch key {
		case "kind":
			f.Kind = strPtr(value)
		case "model":
			f.Model = strPtr(value)
		case "provider":
			f.Provider = strPtr(value)
		case "status":
			f.Status = strPtr(value)
		case "name":
			nameParts = append(nameParts, value)
		case "path":
			f.Path = strPtr(value)
		case "trace":
			f.TraceID = strPtr(value)
		case "since":
			t, err := resolveTime(value, clock)
			if err != nil {
				return f, fmt.Errorf("since: %w", err)
			}
			f.Since = &t
		case "until":
			t, err := resolveTime(value, clock)
			if err != nil {
				return f, fmt.Errorf("until: %w", err)
			}
			f.Until = &t
		}
	}

	if len(nameParts) > 0 {
		f.NameContains = strPtr(strings.Join(nameParts, " "))
	}
	return f, nil
}

// ToDSL renders f back to its canonical DSL form. Values containing
// whitespace are double-quoted so that Parse(ToDSL(f)) round-trips.
func ToDSL(f storage.SpanFilter) string {
	var parts []string
	add := func(key string, v *string) {
		if v == nil || *v == "" {
			return
		}
		parts = append(parts, key+":"+quoteIfNeeded(*v))
	}
	add("trace", f.TraceID)
	add("status", f.Status)
	add("kind", f.Kind)
	add("model", f.Model)
	add("provider", f.Provider)
	add("path", f.Path)
	if f.Since != nil {
		parts = append(parts, "since:"+f.Since.UTC().Format(time.RFC3339))
	}
	if f.Until != nil {
		parts = append(parts, "until:"+f.Until.UTC().Format(time.RFC3339))
	}
	if f.NameContains != nil && *f.NameContains != "" {
		parts = append(parts, quoteIfNeeded(*f.NameContains))
	}
	return strings.Join(parts, " ")
}

func resolveTime(value string, clock ids.Clock) (time.Time, error) {
	if m := relativeOffset.FindStringSubmatch(value); m != nil {
		n, _ := strconv.Atoi(m[1])
		var d time.Duration
		switch m[2] {
		case "m":
			d = time.Duration(n) * time.Minute
		case "h":
			d = time.Duration(n) * time.Hour
		case "d":
			d = time.Duration(n) * 24 * time.Hour
		}
		return clock.Now().Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither ISO-8601 nor a relative offset", value)
	}
	return t, nil
}

// tokenize splits expr on whitespace, respecting double-quoted spans.
func tokenize(expr string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quoted value")
	}
	flush()
	return tokens, nil
}

// splitToken splits "key:value" at its first colon into (key, value, true);
// a token with no colon, or one starting with a colon, returns
// ("", "", false). Whether key is a recognized key is left to the caller.
func splitToken(tok string) (key, value string, ok bool) {
	idx := strings.Index(tok, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = tok[:idx]
	value = tok[idx+1:]
	return key, value, true
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

func strPtr(s string) *string { return &s }
