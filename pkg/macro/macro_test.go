package macro

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMerge(t *testing.T) {
	subtests := []struct {
		name   string
		input  []Macros
		output Macros
	}{
		{name: "nil", output: Macros{}},
		{name: "empty", input: []Macros{}, output: Macros{}},
		{name: "nil_layers", input: []Macros{nil, nil}, output: Macros{}},
		{
			name:   "one",
			input:  []Macros{{"HOSTNAME": "web01"}},
			output: Macros{"HOSTNAME": "web01"},
		},
		{
			name:   "disjoint",
			input:  []Macros{{"HOSTNAME": "web01"}, nil, {"SERVICEDESC": "ping"}},
			output: Macros{"HOSTNAME": "web01", "SERVICEDESC": "ping"},
		},
		{
			name: "later_wins",
			input: []Macros{
				{"A": "1", "B": "1"},
				{"A": "2"},
				{"A": "3", "C": "3"},
			},
			output: Macros{"A": "3", "B": "1", "C": "3"},
		},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			require.Equal(t, st.output, Merge(st.input...))
		})
	}
}

func TestMerge_DoesNotModifyLayers(t *testing.T) {
	first := Macros{"A": "1"}
	second := Macros{"A": "2"}

	merged := Merge(first, second)
	merged["B"] = "x"

	require.Equal(t, Macros{"A": "1"}, first)
	require.Equal(t, Macros{"A": "2"}, second)
}

func TestResolve(t *testing.T) {
	macros := Macros{"HOSTNAME": "web01", "SERVICEDESC": "ping", "EMPTY": ""}

	subtests := []struct {
		name   string
		input  string
		output string
		error  bool
	}{
		{name: "plain", input: "no macros", output: "no macros"},
		{name: "single", input: "$HOSTNAME$", output: "web01"},
		{name: "embedded", input: "host=$HOSTNAME$ svc=$SERVICEDESC$!", output: "host=web01 svc=ping!"},
		{name: "empty_value", input: "[$EMPTY$]", output: "[]"},
		{name: "dollar", input: "costs 5$$", output: "costs 5$"},
		{name: "undefined", input: "$NOPE$", error: true},
		{name: "unterminated", input: "$HOSTNAME", error: true},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			actual, err := Resolve(st.input, macros)

			if st.error {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, st.output, actual)
			}
		})
	}
}
