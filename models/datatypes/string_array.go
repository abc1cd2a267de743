package datatypes

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON defined JSON data type, need to implements driver.Valuer, sql.Scanner interface
type StringArray []string

// Value return json value, implement driver.Valuer interface
func (m StringArray) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	return string(data), err
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (m *StringArray) Scan(val interface{}) error {
	if val == nil {
		*m = StringArray{}
		return nil
	}
	var ba []byte
	switch v := val.(type) {
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", val))
	}
	t := StringArray{}
	err := json.Unmarshal(ba, &t)
	*m = StringArray(t)
	return err
}

// GormDataType gorm common data type
func (m StringArray) GormDataType() string {
	return "jsonmap"
}

// GormDBDataType gorm db data type
func (StringArray) GormDBDataType(db *gorm.DB, field *schema.Field) string {
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
