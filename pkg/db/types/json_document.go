package dbtypes

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONDocument stores an arbitrary JSON value in a jsonb column. It scans from
// both the text form (SQLite, simple protocol) and the binary form.
type JSONDocument json.RawMessage

// NewJSONDocument marshals v into a document.
func NewJSONDocument(v any) (JSONDocument, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("JSONDocument: marshal: %w", err)
	}
	return JSONDocument(raw), nil
}

func (d *JSONDocument) Scan(src any) error {
	if src == nil {
		*d = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = append([]byte(nil), v...)
	default:
		return fmt.Errorf("JSONDocument: unsupported Scan type %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*d = nil
		return nil
	}
	if !json.Valid(raw) {
		return fmt.Errorf("JSONDocument: invalid json")
	}
	*d = JSONDocument(raw)
	return nil
}

func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return []byte(d), nil
}

func (d *JSONDocument) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}
	*d = append((*d)[0:0], data...)
	return nil
}

// Decode unmarshals the document into dest.
func (d JSONDocument) Decode(dest any) error {
	if len(d) == 0 {
		return nil
	}
	return json.Unmarshal(d, dest)
}

// GormDataType lets AutoMigrate pick a json-ish column.
func (JSONDocument) GormDataType() string {
	return "jsonb"
}
