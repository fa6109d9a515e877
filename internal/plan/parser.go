package plan

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/buger/jsonparser"
)

// Recognized keys. Legacy keys are consulted when the current key is absent
// or empty.
const (
	keyType             = "type"
	keyConceptName      = "concept_name"
	keyConceptNameOld   = "new_name"
	keyConcernedClasses = "classes_concernees"
	keyConcernedOld     = "classes"
	keyElements         = "elements_remontes"
	keyElementsOld      = "features"
	keyReason           = "raison"
	keyReasonAlt        = "reason"
)

// Parse turns a plan document into a Plan. It never fails: unreadable input
// yields an empty plan and malformed or incomplete objects are dropped while
// the remaining ones are still parsed.
//
// The document is a JSON array of flat objects, optionally wrapped in a
// Markdown code fence. A single top-level object is accepted as a one-action
// plan.
func Parse(raw []byte) *Plan {
	p := &Plan{}
	body := unwrap(raw)
	if len(body) == 0 {
		return p
	}

	for _, obj := range splitObjects(body) {
		action, ok := parseAction(obj)
		if ok {
			p.Actions = append(p.Actions, action)
		}
	}
	return p
}

// ParseFile reads and parses a plan file. A missing file is not an error and
// yields an empty plan.
func ParseFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Plan{}, nil
		}
		return &Plan{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data), nil
}

// unwrap strips whitespace, Markdown fences and anything outside the
// outermost array (or object, when no array is present).
func unwrap(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start >= 0 && end > start {
		objStart := strings.Index(s, "{")
		if objStart < 0 || start < objStart {
			return []byte(s[start+1 : end])
		}
	}
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		return []byte(s[start : end+1])
	}
	return nil
}

// splitObjects returns the top-level {...} spans of body. Braces inside
// string literals are ignored, so values containing "},{" stay intact. An
// unterminated trailing object is dropped.
func splitObjects(body []byte) [][]byte {
	var objects [][]byte
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, ch := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				objects = append(objects, body[start:i+1])
				start = -1
			}
		}
	}
	return objects
}

// parseAction extracts one action from a JSON object. ok is false when the
// object is malformed or lacks a type or concept name.
func parseAction(obj []byte) (Action, bool) {
	if err := jsonparser.ObjectEach(obj, func(_, _ []byte, _ jsonparser.ValueType, _ int) error {
		return nil
	}); err != nil {
		return Action{}, false
	}

	rawKind := stringField(obj, keyType)
	conceptName := firstNonEmpty(stringField(obj, keyConceptName), stringField(obj, keyConceptNameOld))
	if rawKind == "" || conceptName == "" {
		return Action{}, false
	}

	concerned := arrayField(obj, keyConcernedClasses)
	if len(concerned) == 0 {
		concerned = arrayField(obj, keyConcernedOld)
	}
	elements := arrayField(obj, keyElements)
	if len(elements) == 0 {
		elements = arrayField(obj, keyElementsOld)
	}

	return Action{
		Kind:             ParseKind(rawKind),
		RawKind:          rawKind,
		ConceptName:      conceptName,
		ConcernedClasses: concerned,
		ElementsToMove:   elements,
		Reason:           firstNonEmpty(stringField(obj, keyReason), stringField(obj, keyReasonAlt)),
	}, true
}

// stringField returns the trimmed string value of key, or "" when the key is
// missing or not a string.
func stringField(obj []byte, key string) string {
	value, err := jsonparser.GetString(obj, key)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

// arrayField returns the non-empty string entries of the array at key, with
// surrounding whitespace and quote characters removed.
func arrayField(obj []byte, key string) []string {
	var out []string
	_, _ = jsonparser.ArrayEach(obj, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.String {
			return
		}
		s, perr := jsonparser.ParseString(value)
		if perr != nil {
			s = string(bytes.TrimSpace(value))
		}
		s = strings.Trim(s, " \t\r\n\"'")
		if s != "" {
			out = append(out, s)
		}
	}, key)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
