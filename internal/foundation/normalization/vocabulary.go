package normalization

import (
	"fmt"
	"strings"
)

// Vocabulary is a fixed, ordered list of accepted identifiers, such as the
// names of build modules a user may select on the command line.
type Vocabulary struct {
	name    string
	choices []string
	index   map[string]string
}

// NewVocabulary builds a vocabulary. name is used in error messages.
func NewVocabulary(name string, choices ...string) *Vocabulary {
	v := &Vocabulary{name: name, choices: choices, index: make(map[string]string, len(choices))}
	for _, c := range choices {
		v.index[c] = c
	}
	return v
}

// Choices returns the accepted values in declaration order.
func (v *Vocabulary) Choices() []string {
	out := make([]string, len(v.choices))
	copy(out, v.choices)
	return out
}

// Contains reports whether value is an accepted choice. Matching is exact,
// the same way the command line compares choices.
func (v *Vocabulary) Contains(value string) bool {
	_, ok := v.index[value]
	return ok
}

// Validate returns an error naming the first value that is not a choice.
func (v *Vocabulary) Validate(values []string) error {
	for _, value := range values {
		if !v.Contains(value) {
			quoted := make([]string, len(v.choices))
			for i, c := range v.choices {
				quoted[i] = fmt.Sprintf("'%s'", c)
			}
			return fmt.Errorf("%s: invalid choice: '%s' (choose from %s)", v.name, value, strings.Join(quoted, ", "))
		}
	}
	return nil
}
