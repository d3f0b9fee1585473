package types

import (
	"encoding"
	"fmt"
	"strconv"
)

// ServiceState is the state of a check result.
type ServiceState uint8

const (
	ServiceOK       ServiceState = 0
	ServiceWarning  ServiceState = 1
	ServiceCritical ServiceState = 2
	ServiceUnknown  ServiceState = 3
)

// String returns the uppercase state name as used in the SERVICESTATE macro.
func (ss ServiceState) String() string {
	if name, ok := serviceStates[ss]; ok {
		return name
	}

	return "UNKNOWN"
}

// HostState maps the state of a host check result to the host's state.
// OK and WARNING mean UP, everything else means DOWN.
func (ss ServiceState) HostState() HostState {
	if ss <= ServiceWarning {
		return HostUp
	}

	return HostDown
}

// MarshalText implements the encoding.TextMarshaler interface.
func (ss ServiceState) MarshalText() ([]byte, error) {
	if _, ok := serviceStates[ss]; !ok {
		return nil, BadServiceState{ss}
	}

	return []byte(ss.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// It accepts both the name, case-sensitive, and the numeric value.
func (ss *ServiceState) UnmarshalText(bytes []byte) error {
	text := string(bytes)

	for s, name := range serviceStates {
		if name == text {
			*ss = s
			return nil
		}
	}

	i, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return BadServiceState{text}
	}

	s := ServiceState(i)
	if _, ok := serviceStates[s]; !ok {
		return BadServiceState{text}
	}

	*ss = s
	return nil
}

// HostState is the state of a host, derived from its host check.
type HostState uint8

const (
	HostUp   HostState = 0
	HostDown HostState = 1
)

// String returns "UP" or "DOWN".
func (hs HostState) String() string {
	if hs == HostUp {
		return "UP"
	}

	return "DOWN"
}

// BadServiceState complains about a syntactically, but not semantically valid ServiceState.
type BadServiceState struct {
	State interface{}
}

// Error implements the error interface.
func (bss BadServiceState) Error() string {
	return fmt.Sprintf("bad service state: %#v", bss.State)
}

var serviceStates = map[ServiceState]string{
	ServiceOK:       "OK",
	ServiceWarning:  "WARNING",
	ServiceCritical: "CRITICAL",
	ServiceUnknown:  "UNKNOWN",
}

// Assert interface compliance.
var (
	_ error                    = BadServiceState{}
	_ fmt.Stringer             = HostState(0)
	_ encoding.TextMarshaler   = ServiceState(0)
	_ encoding.TextUnmarshaler = (*ServiceState)(nil)
)
