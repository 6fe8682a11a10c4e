// Package enum provides a pflag value restricted to a fixed set of strings.
package enum

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

type value struct {
	allowed []string
	current string
}

var _ pflag.Value = (*value)(nil)

func (v *value) String() string {
	return v.current
}

func (v *value) Set(s string) error {
	if !slices.Contains(v.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(v.allowed, "|"))
	}
	v.current = s
	return nil
}

func (v *value) Type() string {
	return "enum"
}

// Var registers a flag accepting only the given values, the first of which
// is the default.
func Var(flags *pflag.FlagSet, name string, allowed []string, usage string) {
	VarP(flags, name, "", allowed, usage)
}

// VarP is Var with a shorthand.
func VarP(flags *pflag.FlagSet, name, shorthand string, allowed []string, usage string) {
	flags.VarP(&value{
		allowed: allowed,
		current: allowed[0],
	}, name, shorthand, fmt.Sprintf("%s (must be one of %s)", usage, strings.Join(allowed, "|")))
}

// Get returns the current value of an enum flag registered with Var or VarP.
func Get(flags *pflag.FlagSet, name string) (string, error) {
	flag := flags.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag %q does not exist", name)
	}
	enum, ok := flag.Value.(*value)
	if !ok {
		return "", fmt.Errorf("flag %q is not an enum flag", name)
	}
	return enum.current, nil
}
