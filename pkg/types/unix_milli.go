package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"github.com/pkg/errors"
	"strconv"
	"time"
)

// UnixMilli is a nullable millisecond UNIX timestamp in databases and JSON.
// The zero value stands for "not set".
type UnixMilli time.Time

// Time returns the time.Time conversion of UnixMilli.
func (t UnixMilli) Time() time.Time {
	return time.Time(t)
}

// IsZero reports whether t is not set.
func (t UnixMilli) IsZero() bool {
	return time.Time(t).IsZero()
}

// MarshalJSON implements the json.Marshaler interface.
// Marshals to milliseconds. Supports JSON null.
func (t UnixMilli) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatInt(time.Time(t).UnixMilli(), 10)), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *UnixMilli) UnmarshalText(text []byte) error {
	parsed, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return CantParseFloat64(err, string(text))
	}

	*t = fromUnixMilli(int64(parsed))
	return nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Unmarshals from milliseconds. Supports JSON null.
func (t *UnixMilli) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || len(data) == 0 {
		return nil
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return CantParseFloat64(err, string(data))
	}

	*t = fromUnixMilli(int64(ms))
	return nil
}

// Scan implements the sql.Scanner interface.
// Scans from milliseconds. Supports SQL NULL.
func (t *UnixMilli) Scan(src interface{}) error {
	if src == nil {
		return nil
	}

	v, ok := src.(int64)
	if !ok {
		return errors.Errorf("bad int64 type assertion from %#v", src)
	}

	*t = fromUnixMilli(v)
	return nil
}

// Value implements the driver.Valuer interface.
// Returns milliseconds. Supports SQL NULL.
func (t UnixMilli) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}

	return t.Time().UnixMilli(), nil
}

// fromUnixMilli maps 0 to the zero UnixMilli, i.e. "not set".
func fromUnixMilli(ms int64) UnixMilli {
	if ms == 0 {
		return UnixMilli{}
	}

	return UnixMilli(time.UnixMilli(ms))
}

// Assert interface compliance.
var (
	_ json.Marshaler           = (*UnixMilli)(nil)
	_ encoding.TextUnmarshaler = (*UnixMilli)(nil)
	_ json.Unmarshaler         = (*UnixMilli)(nil)
	_ sql.Scanner              = (*UnixMilli)(nil)
	_ driver.Valuer            = (*UnixMilli)(nil)
)
