package rest

import (
	"encoding/json"
	"fmt"
)

// flexString accepts a JSON string or number and keeps its text. Numbers keep
// their literal form, so 3 becomes "3" and 4.50 becomes "4.50".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}
