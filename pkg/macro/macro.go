// Package macro merges layered macro sets and substitutes macros into command lines and messages.
package macro

import (
	"github.com/pkg/errors"
	"strings"
)

// Macros maps macro names, e.g. HOSTNAME, to their values.
type Macros map[string]string

// Merge merges the given layers into one fresh Macros.
// Layers are applied in the given order, so on key collision the later layer wins.
// Nil layers are skipped. The layers themselves are never modified.
func Merge(layers ...Macros) Macros {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}

	merged := make(Macros, size)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}

	return merged
}

// Resolve replaces every $NAME$ in str with the value of the macro NAME.
// $$ yields a literal $.
// An undefined macro or an unterminated $ results in an error.
func Resolve(str string, macros Macros) (string, error) {
	var b strings.Builder
	b.Grow(len(str))

	for rest := str; ; {
		start := strings.IndexByte(rest, '$')
		if start < 0 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:start])
		rest = rest[start+1:]

		end := strings.IndexByte(rest, '$')
		if end < 0 {
			return "", errors.Errorf("closing $ not found in macro format string %q", str)
		}

		name := rest[:end]
		rest = rest[end+1:]

		if name == "" {
			b.WriteByte('$')
			continue
		}

		value, ok := macros[name]
		if !ok {
			return "", errors.Errorf("macro %q is not defined", name)
		}

		b.WriteString(value)
	}

	return b.String(), nil
}
