// Package parse coerces free-text model responses into typed values.
//
// Every parser is total: malformed, truncated or prose responses produce a
// default-shaped value with empty (never nil) collections.
package parse

import (
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const (
	// maxExtractBytes bounds the text scanned for JSON; longer replies are cut.
	maxExtractBytes = 256 << 10
	// maxCandidates bounds how many opening brackets are tried as value starts.
	maxCandidates = 64
)

// ExtractJSON returns the first complete JSON object or array embedded in
// raw, or "" when there is none. Markdown code fences and surrounding prose
// are ignored. Scanning is bounded by maxExtractBytes and maxCandidates.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > maxExtractBytes {
		s = s[:maxExtractBytes]
	}
	if s == "" {
		return ""
	}
	if gjson.Valid(s) && (s[0] == '{' || s[0] == '[') {
		return s
	}

	tried := 0
	for start := 0; start < len(s) && tried < maxCandidates; start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		tried++
		end, terminated := matchingClose(s, start)
		if !terminated {
			// Every later opener lies inside this unclosed value.
			return ""
		}
		if end < 0 {
			continue
		}
		candidate := s[start : end+1]
		if gjson.Valid(candidate) {
			return candidate
		}
	}
	return ""
}

// matchingClose returns the index of the bracket closing s[start], honouring
// string literals. end is -1 on a mismatched closer; terminated is false when
// the input ends before the value closes.
func matchingClose(s string, start int) (end int, terminated bool) {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1, true
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// document is the parsed root of a response. ok is false when no JSON was found.
type document struct {
	root gjson.Result
	ok   bool
}

func newDocument(raw string) document {
	js := ExtractJSON(raw)
	if js == "" {
		return document{}
	}
	return document{root: gjson.Parse(js), ok: true}
}

// get looks up the first present path.
func (d document) get(paths ...string) gjson.Result {
	if !d.ok {
		return gjson.Result{}
	}
	for _, p := range paths {
		if r := d.root.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// list returns the array at the first present path, or the root when it is
// itself an array and no path matched.
func (d document) list(paths ...string) []gjson.Result {
	if r := d.get(paths...); r.IsArray() {
		return r.Array()
	}
	if d.ok && d.root.IsArray() {
		return d.root.Array()
	}
	return nil
}

// stringList converts a JSON array into trimmed, non-empty strings. Objects
// inside the array contribute their "text", "title" or "name" field.
func stringList(r gjson.Result) []string {
	if !r.IsArray() {
		if s := strings.TrimSpace(r.String()); r.Type == gjson.String && s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := lo.FilterMap(r.Array(), func(item gjson.Result, _ int) (string, bool) {
		var s string
		if item.IsObject() {
			s = firstString(item, "text", "title", "name", "label")
		} else {
			s = item.String()
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	if out == nil {
		return []string{}
	}
	return out
}

func firstString(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

func firstNumber(r gjson.Result, keys ...string) float64 {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			f := v.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return 0
			}
			return f
		}
	}
	return 0
}

// round1 rounds to one decimal place.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Clamp bounds f to [min, max], mapping NaN to min.
func Clamp(f, min, max float64) float64 {
	if math.IsNaN(f) {
		return min
	}
	return lo.Clamp(f, min, max)
}

// fallbackText returns the trimmed raw response when no JSON was found.
func (d document) fallbackText(raw string) string {
	if d.ok {
		return ""
	}
	return strings.TrimSpace(stripFences(raw))
}

func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	lines = lo.Filter(lines, func(l string, _ int) bool {
		return !strings.HasPrefix(strings.TrimSpace(l), "```")
	})
	return strings.Join(lines, "\n")
}
