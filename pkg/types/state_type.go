package types

import (
	"encoding"
	"fmt"
	"strconv"
)

// StateType specifies a state's hardness.
type StateType uint8

const (
	StateSoft StateType = 0
	StateHard StateType = 1
)

// String returns "soft" or "hard".
func (st StateType) String() string {
	if name, ok := stateTypes[st]; ok {
		return name
	}

	return strconv.FormatUint(uint64(st), 10)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (st StateType) MarshalText() ([]byte, error) {
	if _, ok := stateTypes[st]; !ok {
		return nil, BadStateType{st}
	}

	return []byte(st.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// It accepts both the name and the numeric value.
func (st *StateType) UnmarshalText(bytes []byte) error {
	text := string(bytes)

	for s, name := range stateTypes {
		if name == text {
			*st = s
			return nil
		}
	}

	i, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return BadStateType{text}
	}

	s := StateType(i)
	if _, ok := stateTypes[s]; !ok {
		return BadStateType{text}
	}

	*st = s
	return nil
}

// BadStateType complains about a syntactically, but not semantically valid StateType.
type BadStateType struct {
	Type interface{}
}

// Error implements the error interface.
func (bst BadStateType) Error() string {
	return fmt.Sprintf("bad state type: %#v", bst.Type)
}

var stateTypes = map[StateType]string{
	StateSoft: "soft",
	StateHard: "hard",
}

// Assert interface compliance.
var (
	_ error                    = BadStateType{}
	_ encoding.TextMarshaler   = StateType(0)
	_ encoding.TextUnmarshaler = (*StateType)(nil)
)
