package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Mode is the runtime mode selected by the MODE environment variable.
type Mode string

const (
	ModeDebug Mode = "DEBUG"
	ModeProd  Mode = "PROD"
)

// ModeVariable is the name of the required environment variable.
const ModeVariable = "MODE"

// MissingVariableError reports a required variable that is not set.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("environment variable %s is not set", e.Name)
}

// WrongVariableError reports a variable with a value outside its allowed set.
type WrongVariableError struct {
	Name    string
	Value   string
	Allowed []string
}

func (e *WrongVariableError) Error() string {
	return fmt.Sprintf("environment variable %s=%q, expected one of %s",
		e.Name, e.Value, strings.Join(e.Allowed, ", "))
}

// CheckEnvironment validates the required environment variables and returns
// the runtime mode.
func CheckEnvironment() (Mode, error) {
	return checkEnvironment(os.LookupEnv)
}

func checkEnvironment(lookup func(string) (string, bool)) (Mode, error) {
	var errs []error

	mode := ModeProd
	value, ok := lookup(ModeVariable)
	switch {
	case !ok:
		errs = append(errs, &MissingVariableError{Name: ModeVariable})
	case Mode(value) == ModeDebug || Mode(value) == ModeProd:
		mode = Mode(value)
	default:
		errs = append(errs, &WrongVariableError{
			Name:    ModeVariable,
			Value:   value,
			Allowed: []string{string(ModeDebug), string(ModeProd)},
		})
	}

	if err := errors.Join(errs...); err != nil {
		return mode, err
	}
	return mode, nil
}

// Debug reports whether the mode enables debug output.
func (m Mode) Debug() bool {
	return m == ModeDebug
}
