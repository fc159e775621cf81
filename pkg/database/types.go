package database

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores a list of strings as a JSON text column so the same
// schema works on PostgreSQL, MySQL and SQLite.
type StringArray []string

// Scan implements the sql.Scanner interface for reading from the database.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("StringArray: unsupported scan type")
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*a = StringArray{}
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		// Plain value written by hand or by an older schema.
		*a = StringArray{trimmed}
		return nil
	}
	return json.Unmarshal([]byte(trimmed), (*[]string)(a))
}

// Value implements the driver.Valuer interface for writing to the database.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := marshalJSON([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// JSONString encodes s the way StringArray stores each element, quotes included.
func JSONString(s string) string {
	data, err := marshalJSON(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// marshalJSON encodes v without HTML escaping so stored text stays searchable.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}

// Contains reports whether s is in the array, ignoring case.
func (a StringArray) Contains(s string) bool {
	for _, item := range a {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
