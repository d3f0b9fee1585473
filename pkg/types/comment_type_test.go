package types

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCommentType_UnmarshalJSON(t *testing.T) {
	subtests := []struct {
		name   string
		input  string
		output CommentType
		error  bool
	}{
		{name: "user", input: `1`, output: CommentUser},
		{name: "ack", input: `4`, output: CommentAcknowledgement},
		{name: "zero", input: `0`, error: true},
		{name: "unknown", input: `5`, error: true},
		{name: "string", input: `"1"`, error: true},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			var actual CommentType
			err := actual.UnmarshalJSON([]byte(st.input))

			if st.error {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, st.output, actual)
			}
		})
	}
}

func TestCommentType_Scan(t *testing.T) {
	var ct CommentType
	require.NoError(t, ct.Scan(int64(3)))
	require.Equal(t, CommentFlapping, ct)
	require.Equal(t, "flapping", ct.String())

	require.Error(t, ct.Scan(int64(260)))
	require.Error(t, ct.Scan("3"))

	_, err := CommentType(0).Value()
	require.Error(t, err)
}
