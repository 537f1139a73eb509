package domain

import "encoding/json"

// StringList decodes a JSON array of strings leniently.
// Non-array input (a bare string, a number, an object) becomes an empty list,
// and non-string array elements are dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = StringList{}
		return nil
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
