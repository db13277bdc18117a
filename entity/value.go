package entity

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Value wraps a scanned record value. Columns are typed at the store, so
// display needs only a string rendering plus time for date formatting.
type Value struct {
	Raw any
}

// String renders the value for display; nil renders empty.
func (val Value) String() string {
	if val.Raw == nil {
		return ""
	}
	return fmt.Sprintf("%v", val.Raw)
}

// Time returns the value as a time.Time.
func (val Value) Time() (time.Time, error) {
	t, ok := val.Raw.(time.Time)
	if !ok {
		return time.Time{}, errors.Errorf("value is not a time.Time: %T", val.Raw)
	}
	return t, nil
}

// Field names a queryable column and its backend type.
type Field struct {
	Name string
	Type string
}

// Line is a single record from a store page.
type Line struct {
	Id     string
	Values []Value
}

// Record is a field-keyed view of a single row, used for in-memory matching.
type Record map[string]any
