package types

import (
	"database/sql/driver"
	"encoding"
	"fmt"
	"strconv"
)

// NotificationType specifies the reason of a sent notification.
type NotificationType uint16

const (
	NotificationDowntimeStart   NotificationType = 1
	NotificationDowntimeEnd     NotificationType = 2
	NotificationDowntimeRemoved NotificationType = 4
	NotificationCustom          NotificationType = 8
	NotificationAcknowledgement NotificationType = 16
	NotificationProblem         NotificationType = 32
	NotificationRecovery        NotificationType = 64
)

// UnknownNotificationType is the token of every NotificationType without a canonical name.
const UnknownNotificationType = "UNKNOWN_NOTIFICATION"

// ParseNotificationType returns the NotificationType for the given canonical token.
func ParseNotificationType(token string) (NotificationType, error) {
	for nt, name := range notificationTypes {
		if name == token {
			return nt, nil
		}
	}

	return 0, BadNotificationType{token}
}

// String returns the canonical uppercase token of the notification type,
// as exposed in the NOTIFICATIONTYPE macro.
// Out-of-range values yield UnknownNotificationType.
func (nt NotificationType) String() string {
	if name, ok := notificationTypes[nt]; ok {
		return name
	}

	return UnknownNotificationType
}

// MarshalText implements the encoding.TextMarshaler interface.
func (nt NotificationType) MarshalText() ([]byte, error) {
	return []byte(nt.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Accepts both the canonical token and the numeric value.
func (nt *NotificationType) UnmarshalText(bytes []byte) error {
	text := string(bytes)

	if n, err := ParseNotificationType(text); err == nil {
		*nt = n
		return nil
	}

	i, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return BadNotificationType{text}
	}

	n := NotificationType(i)
	if uint64(n) != i {
		// Truncated due to above cast, obviously too high
		return BadNotificationType{text}
	}

	if _, ok := notificationTypes[n]; !ok {
		return BadNotificationType{text}
	}

	*nt = n
	return nil
}

// Value implements the driver.Valuer interface.
func (nt NotificationType) Value() (driver.Value, error) {
	if _, ok := notificationTypes[nt]; ok {
		return int64(nt), nil
	} else {
		return nil, BadNotificationType{nt}
	}
}

// BadNotificationType complains about a syntactically, but not semantically valid NotificationType.
type BadNotificationType struct {
	Type interface{}
}

// Error implements the error interface.
func (bnt BadNotificationType) Error() string {
	return fmt.Sprintf("bad notification type: %#v", bnt.Type)
}

// notificationTypes maps all valid NotificationType values to their canonical token.
var notificationTypes = map[NotificationType]string{
	NotificationDowntimeStart:   "DOWNTIMESTART",
	NotificationDowntimeEnd:     "DOWNTIMEEND",
	NotificationDowntimeRemoved: "DOWNTIMECANCELLED",
	NotificationCustom:          "CUSTOM",
	NotificationAcknowledgement: "ACKNOWLEDGEMENT",
	NotificationProblem:         "PROBLEM",
	NotificationRecovery:        "RECOVERY",
}

// Assert interface compliance.
var (
	_ error                    = BadNotificationType{}
	_ fmt.Stringer             = NotificationType(0)
	_ encoding.TextMarshaler   = NotificationType(0)
	_ encoding.TextUnmarshaler = (*NotificationType)(nil)
	_ driver.Valuer            = NotificationType(0)
)
