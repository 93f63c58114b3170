// Package runevent decodes the JSON payloads carried on a SedStart run stream
// and resolves the run status they report.
//
// The server does not publish a schema. Payloads are matched against the
// known shapes in a fixed precedence order:
//
//	{"result": {"status": "..."}}
//	{"run":    {"status": "..."}}
//	{"data":   {"status": "..."}}
//
// Later shapes are more specific and win when several are present in the
// same event.
package runevent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// StatusUnknown is the final status before the stream reports any.
	StatusUnknown = "UNKNOWN"

	StatusPass    = "PASS"
	StatusSuccess = "SUCCESS"
)

// ErrMalformed is returned for candidate payloads that are not a JSON object.
var ErrMalformed = errors.New("malformed event payload")

// Shape names one of the nested objects that may carry a status.
type Shape string

const (
	ShapeResult Shape = "result"
	ShapeRun    Shape = "run"
	ShapeData   Shape = "data"
)

// shapes is the status precedence, lowest first.
var shapes = []Shape{ShapeResult, ShapeRun, ShapeData}

// Section holds the recognised fields of one object in the payload. Display
// fields are flattened to text; Status is only set from a JSON string.
type Section struct {
	Status  string
	Message string
	Name    string
	Time    string
	Error   string
	Video   string
	Step    string
}

// Event is a decoded run stream payload.
type Event struct {
	// Top holds fields found at the top level of the payload.
	Top Section

	// Nested holds the sections found under each shape key whose value is a
	// JSON object. Shapes with any other value are absent.
	Nested map[Shape]Section
}

// Decode parses a candidate payload. Anything that is not a JSON object,
// including null, fails with ErrMalformed.
func Decode(candidate string) (*Event, error) {
	top, err := decodeObject([]byte(candidate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	ev := &Event{
		Top:    sectionFrom(top),
		Nested: make(map[Shape]Section, len(shapes)),
	}

	for _, shape := range shapes {
		raw, ok := top[string(shape)]
		if !ok {
			continue
		}

		obj, err := decodeObject(raw)
		if err != nil {
			// "data": "string" and friends carry no status.
			continue
		}

		ev.Nested[shape] = sectionFrom(obj)
	}

	return ev, nil
}

// Status returns the status reported by the event. Each shape in precedence
// order overwrites the previous one when it carries a status; ok is false
// when no shape does.
func (e *Event) Status() (status string, ok bool) {
	for _, shape := range shapes {
		sec, found := e.Nested[shape]
		if !found || sec.Status == "" {
			continue
		}
		status, ok = sec.Status, true
	}
	return status, ok
}

// Field returns the most specific non-empty value for a display field,
// searching the nested shapes from most to least specific and then the top
// level.
func (e *Event) Field(pick func(Section) string) string {
	for i := len(shapes) - 1; i >= 0; i-- {
		if sec, ok := e.Nested[shapes[i]]; ok {
			if v := pick(sec); v != "" {
				return v
			}
		}
	}
	return pick(e.Top)
}

// IsSuccess reports whether status is an accepted success token. The match
// is case-sensitive.
func IsSuccess(status string) bool {
	return status == StatusPass || status == StatusSuccess
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("not a JSON object")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func sectionFrom(obj map[string]json.RawMessage) Section {
	status, isString := scalarText(obj["status"])
	if !isString {
		status = ""
	}

	return Section{
		Status:  status,
		Message: text(obj["message"]),
		Name:    text(obj["name"]),
		Time:    text(obj["time"]),
		Error:   text(obj["error"]),
		Video:   text(obj["video"]),
		Step:    text(obj["step"]),
	}
}

func text(raw json.RawMessage) string {
	s, _ := scalarText(raw)
	return s
}

// scalarText flattens a JSON value to display text. Strings are unquoted,
// null and absent values are empty and everything else is compacted.
func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s, true
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed), false
	}
	return buf.String(), false
}
