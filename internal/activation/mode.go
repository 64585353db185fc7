// Package activation tracks which conditions are switched on and in which form.
package activation

import (
	"fmt"
	"sort"
)

// Mode is the activation state of one condition.
type Mode int

const (
	Inactive Mode = iota
	Normal
	Inverted
)

// Valid reports whether m is one of the three defined modes.
func (m Mode) Valid() bool { return m >= Inactive && m <= Inverted }

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Inverted:
		return "inverted"
	default:
		return "inactive"
	}
}

// ParseMode accepts the names produced by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "inactive", "":
		return Inactive, nil
	case "normal":
		return Normal, nil
	case "inverted":
		return Inverted, nil
	}
	return Inactive, fmt.Errorf("invalid activation mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Set is an immutable snapshot of active conditions. Absent ids are Inactive.
type Set struct {
	modes map[int]Mode
}

// NewSet builds a Set from an id->mode map, dropping Inactive entries.
func NewSet(modes map[int]Mode) Set {
	s := Set{modes: make(map[int]Mode, len(modes))}
	for id, m := range modes {
		if m != Inactive {
			s.modes[id] = m
		}
	}
	return s
}

// Mode returns the activation of id.
func (s Set) Mode(id int) Mode { return s.modes[id] }

// Len returns the number of active conditions.
func (s Set) Len() int { return len(s.modes) }

// IDs returns the active ids in ascending order.
func (s Set) IDs() []int {
	out := make([]int, 0, len(s.modes))
	for id := range s.modes {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Map returns a copy of the active entries.
func (s Set) Map() map[int]Mode {
	out := make(map[int]Mode, len(s.modes))
	for id, m := range s.modes {
		out[id] = m
	}
	return out
}
