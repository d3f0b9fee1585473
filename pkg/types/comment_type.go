package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
	"strconv"
)

// CommentType specifies a comment's origin's kind.
type CommentType uint8

const (
	CommentUser            CommentType = 1
	CommentDowntime        CommentType = 2
	CommentFlapping        CommentType = 3
	CommentAcknowledgement CommentType = 4
)

// String returns the short name of the comment type.
func (ct CommentType) String() string {
	if name, ok := commentTypes[ct]; ok {
		return name
	}

	return "unknown"
}

// Valid reports whether ct is one of the known comment types.
func (ct CommentType) Valid() bool {
	_, ok := commentTypes[ct]
	return ok
}

// MarshalJSON implements the json.Marshaler interface.
func (ct CommentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(ct))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (ct *CommentType) UnmarshalJSON(bytes []byte) error {
	var i uint8
	if err := json.Unmarshal(bytes, &i); err != nil {
		return err
	}

	c := CommentType(i)
	if !c.Valid() {
		return BadCommentType{bytes}
	}

	*ct = c
	return nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (ct *CommentType) UnmarshalText(bytes []byte) error {
	text := string(bytes)

	i, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return CantParseUint64(err, text)
	}

	c := CommentType(i)
	if uint64(c) != i {
		// Truncated due to above cast, obviously too high
		return BadCommentType{text}
	}

	if !c.Valid() {
		return BadCommentType{text}
	}

	*ct = c
	return nil
}

// Scan implements the sql.Scanner interface.
func (ct *CommentType) Scan(src interface{}) error {
	v, ok := src.(int64)
	if !ok {
		return BadCommentType{src}
	}

	c := CommentType(v)
	if int64(c) != v || !c.Valid() {
		return BadCommentType{v}
	}

	*ct = c
	return nil
}

// Value implements the driver.Valuer interface.
func (ct CommentType) Value() (driver.Value, error) {
	if ct.Valid() {
		return int64(ct), nil
	} else {
		return nil, BadCommentType{ct}
	}
}

// BadCommentType complains about a syntactically, but not semantically valid CommentType.
type BadCommentType struct {
	Type interface{}
}

// Error implements the error interface.
func (bct BadCommentType) Error() string {
	return fmt.Sprintf("bad comment type: %#v", bct.Type)
}

// commentTypes maps all valid CommentType values to their name.
var commentTypes = map[CommentType]string{
	CommentUser:            "comment",
	CommentDowntime:        "downtime",
	CommentFlapping:        "flapping",
	CommentAcknowledgement: "ack",
}

// Assert interface compliance.
var (
	_ error                    = BadCommentType{}
	_ fmt.Stringer             = CommentType(0)
	_ json.Marshaler           = CommentType(0)
	_ json.Unmarshaler         = (*CommentType)(nil)
	_ encoding.TextUnmarshaler = (*CommentType)(nil)
	_ sql.Scanner              = (*CommentType)(nil)
	_ driver.Valuer            = CommentType(0)
)
