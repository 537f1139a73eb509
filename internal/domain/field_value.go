package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FieldValue is how a multi-valued column looks once it leaves the store.
// The set of implementations is closed: Absent, Text, TextList and Other.
type FieldValue interface {
	isFieldValue()
	// Strings returns the value as a list of entries for matching and display.
	Strings() []string
}

// Absent is a NULL or missing value.
type Absent struct{}

// Text is a value stored as a single, possibly pre-joined, string.
type Text string

// TextList is a value stored as an array of scalars.
type TextList []string

// Other is any representation the decoder does not recognize, kept verbatim.
type Other struct {
	Raw string
}

func (Absent) isFieldValue()   {}
func (Text) isFieldValue()     {}
func (TextList) isFieldValue() {}
func (Other) isFieldValue()    {}

func (Absent) Strings() []string     { return []string{} }
func (t Text) Strings() []string     { return []string{string(t)} }
func (l TextList) Strings() []string { return append([]string{}, l...) }
func (o Other) Strings() []string    { return []string{o.Raw} }

func (Absent) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (t Text) MarshalJSON() ([]byte, error) { return json.Marshal(string(t)) }

func (l TextList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (o Other) MarshalJSON() ([]byte, error) {
	if json.Valid([]byte(o.Raw)) {
		return []byte(o.Raw), nil
	}
	return json.Marshal(o.Raw)
}

// List builds a TextList from a string slice, never returning nil.
func List(values ...string) TextList {
	if values == nil {
		return TextList{}
	}
	return TextList(values)
}

// DecodeFieldValue classifies a raw JSON column value. It never fails:
// anything it cannot place lands in Other.
func DecodeFieldValue(raw []byte) FieldValue {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Absent{}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return Text(s)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			if list, ok := scalarList(items); ok {
				return list
			}
		}
	}

	return Other{Raw: string(trimmed)}
}

// scalarList converts an array of JSON scalars into their textual form.
// It reports false when any element is an object or a nested array.
func scalarList(items []json.RawMessage) (TextList, bool) {
	out := make(TextList, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			return nil, false
		}
		switch item[0] {
		case '{', '[':
			return nil, false
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, false
			}
			out = append(out, s)
		case 'n':
			out = append(out, "")
		default:
			// numbers and booleans keep their literal form
			if _, err := strconv.ParseFloat(string(item), 64); err != nil &&
				string(item) != "true" && string(item) != "false" {
				return nil, false
			}
			out = append(out, string(item))
		}
	}
	return out, true
}
