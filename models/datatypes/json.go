package datatypes

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON stores a raw json document (order snapshots in history records).
type JSON []byte

// Value return json value, implement driver.Valuer interface
func (m JSON) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "null", nil
	}
	return string(m), nil
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (m *JSON) Scan(val interface{}) error {
	if val == nil {
		*m = JSON("null")
		return nil
	}
	switch v := val.(type) {
	case []byte:
		*m = JSON(append([]byte{}, v...))
	case string:
		*m = JSON(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", val))
	}
	return nil
}

func (m JSON) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *JSON) UnmarshalJSON(data []byte) error {
	*m = JSON(append([]byte{}, data...))
	return nil
}

// GormDataType gorm common data type
func (m JSON) GormDataType() string {
	return "jsonmap"
}

// GormDBDataType gorm db data type
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "JSON"
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	}
	return ""
}
