package types

import (
	"github.com/stretchr/testify/require"
	"testing"
	"time"
	"unicode/utf8"
)

func TestUnixMilli_MarshalJSON(t *testing.T) {
	subtests := []struct {
		name   string
		input  UnixMilli
		output string
	}{
		{"zero", UnixMilli{}, `null`},
		{"nonzero", UnixMilli(time.Unix(1234567890, 62500000)), `1234567890062`},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			actual, err := st.input.MarshalJSON()

			require.NoError(t, err)
			require.True(t, utf8.Valid(actual))
			require.Equal(t, st.output, string(actual))
		})
	}
}

func TestUnixMilli_UnmarshalJSON(t *testing.T) {
	subtests := []struct {
		name   string
		input  string
		output UnixMilli
	}{
		{"null", `null`, UnixMilli{}},
		{"zero", `0`, UnixMilli{}},
		{"nonzero", `1234567890062`, UnixMilli(time.UnixMilli(1234567890062))},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			var actual UnixMilli
			err := actual.UnmarshalJSON([]byte(st.input))

			require.NoError(t, err)
			require.Equal(t, st.output, actual)
		})
	}
}

func TestUnixMilli_ScanValue(t *testing.T) {
	var um UnixMilli
	require.NoError(t, um.Scan(nil))
	require.True(t, um.IsZero())

	v, err := um.Value()
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, um.Scan(int64(1234567890062)))
	require.Equal(t, int64(1234567890062), um.Time().UnixMilli())

	v, err = um.Value()
	require.NoError(t, err)
	require.Equal(t, int64(1234567890062), v)

	require.Error(t, um.Scan("1234567890062"))
}
