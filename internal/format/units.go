package format

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/agbru/autotime/internal/errors"
)

// Unit names accepted by Units.Set, smallest first.
const (
	UnitNano  = "nano"
	UnitMicro = "micro"
	UnitMilli = "ms"
	UnitSec   = "sec"
	UnitMin   = "min"
	UnitHour  = "hr"
	UnitDay   = "d"
)

// UnitNames lists every unit name in ascending order of scale.
var UnitNames = []string{UnitNano, UnitMicro, UnitMilli, UnitSec, UnitMin, UnitHour, UnitDay}

// Units maps each time scale to the suffix displayed after a value.
// The zero value is not usable; start from DefaultUnits.
type Units struct {
	Nano  string
	Micro string
	Milli string
	Sec   string
	Min   string
	Hour  string
	Day   string
}

// DefaultUnits returns the standard suffixes.
func DefaultUnits() Units {
	return Units{
		Nano:  "ns",
		Micro: "µs",
		Milli: "ms",
		Sec:   "s",
		Min:   "min",
		Hour:  "h",
		Day:   "d",
	}
}

func (u *Units) field(name string) *string {
	switch name {
	case UnitNano:
		return &u.Nano
	case UnitMicro:
		return &u.Micro
	case UnitMilli:
		return &u.Milli
	case UnitSec:
		return &u.Sec
	case UnitMin:
		return &u.Min
	case UnitHour:
		return &u.Hour
	case UnitDay:
		return &u.Day
	}
	return nil
}

// Get returns the suffix for name and whether name is a known unit.
func (u Units) Get(name string) (string, bool) {
	p := u.field(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Set applies label overrides. Every key must be a known unit name and every
// value a string; otherwise Set returns an error wrapping
// apperrors.ErrInvalidArgument and leaves u unchanged.
func (u *Units) Set(overrides map[string]any) error {
	next := *u
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		p := next.field(name)
		if p == nil {
			return apperrors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("unknown unit (want one of %s)", strings.Join(UnitNames, ", ")),
			}
		}
		label, ok := overrides[name].(string)
		if !ok {
			return apperrors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("label must be a string, got %T", overrides[name]),
			}
		}
		*p = label
	}
	*u = next
	return nil
}

// SetLabel overrides a single unit label.
func (u *Units) SetLabel(name, label string) error {
	return u.Set(map[string]any{name: label})
}

// ParseOverrides turns "name=label" pairs into the map accepted by Set.
func ParseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, label, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, apperrors.ValidationError{Field: pair, Message: "expected name=label"}
		}
		out[name] = label
	}
	return out, nil
}

// Pairs returns the table as "name=label" strings in UnitNames order.
func (u Units) Pairs() []string {
	out := make([]string, 0, len(UnitNames))
	for _, name := range UnitNames {
		label, _ := u.Get(name)
		out = append(out, name+"="+label)
	}
	return out
}
