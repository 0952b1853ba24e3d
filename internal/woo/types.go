package woo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the site-local timestamp format used by the *_gmt fields
const dateLayout = "2006-01-02T15:04:05"

var jsonNull = []byte("null")

// FlexString decodes a JSON string or number into a string.
// Some stores return prices as numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// FlexBool decodes a JSON bool or string. manage_stock on variations is
// "parent" when stock is managed at the product level, which counts as true.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*b = false
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case string:
		switch strings.ToLower(t) {
		case "true", "yes", "1", "parent":
			*b = true
		default:
			*b = false
		}
	case float64:
		*b = t != 0
	}
	return nil
}

// FlexInt decodes a JSON number or numeric string into an int64
type FlexInt int64

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*i = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*i = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return err
		}
		n = int64(f)
	}
	*i = FlexInt(n)
	return nil
}

// Time decodes the API's zone-less timestamps as UTC. Empty and null give the zero time.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return jsonNull, nil
	}
	return json.Marshal(t.UTC().Format(dateLayout))
}
