package action

import (
	"os"
	"strings"
)

// Inputs supplies named string inputs. Missing inputs read as "".
type Inputs interface {
	Input(name string) string
}

// EnvInputs reads inputs the way the workflow runner passes them to an
// action: INPUT_<NAME> with the name upper-cased and spaces replaced by
// underscores. Values are trimmed.
type EnvInputs struct {
	Getenv func(string) string // nil means os.Getenv
}

func (e EnvInputs) Input(name string) string {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(getenv(key))
}

// MapInputs serves inputs from a map.
type MapInputs map[string]string

func (m MapInputs) Input(name string) string {
	return strings.TrimSpace(m[name])
}

// Overlay consults each source in order and returns the first non-empty value.
type Overlay []Inputs

func (o Overlay) Input(name string) string {
	for _, in := range o {
		if v := in.Input(name); v != "" {
			return v
		}
	}
	return ""
}
