package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Int64Array stores as a native bigint[] on Postgres and as the serialized
// array literal on other dialects (in-memory SQLite in tests).
type Int64Array pq.Int64Array

func (a Int64Array) Value() (driver.Value, error) {
	return pq.Int64Array(a).Value()
}

func (a *Int64Array) Scan(src interface{}) error {
	return (*pq.Int64Array)(a).Scan(src)
}

func (Int64Array) GormDataType() string {
	return "text"
}

func (Int64Array) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bigint[]"
	}
	return "text"
}

// StringArray stores as a native text[] on Postgres and as the serialized
// array literal elsewhere.
type StringArray pq.StringArray

func (a StringArray) Value() (driver.Value, error) {
	return pq.StringArray(a).Value()
}

func (a *StringArray) Scan(src interface{}) error {
	return (*pq.StringArray)(a).Scan(src)
}

func (StringArray) GormDataType() string {
	return "text"
}

func (StringArray) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
