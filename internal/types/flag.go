package types

import (
	"fmt"
	"strings"
)

// Flag is one of the independent markers a note can carry.
type Flag uint8

const (
	FlagImportant Flag = 1 << iota
	FlagTodo
	FlagFavorite
)

// AllFlags lists every flag in display order.
var AllFlags = []Flag{FlagImportant, FlagTodo, FlagFavorite}

var flagNames = map[string]Flag{
	"important": FlagImportant,
	"to-do":     FlagTodo,
	"todo":      FlagTodo,
	"favorite":  FlagFavorite,
	"favorites": FlagFavorite,
}

// ParseFlag resolves a flag from its name. Matching is case-insensitive and
// accepts both the singular and the plural filter labels.
func ParseFlag(name string) (Flag, error) {
	f, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown flag: %q (want important, to-do or favorite)", name)
	}
	return f, nil
}

// ParseFlags resolves a list of flag names.
func ParseFlags(names []string) ([]Flag, error) {
	flags := make([]Flag, 0, len(names))
	for _, name := range names {
		f, err := ParseFlag(name)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

func (f Flag) String() string {
	switch f {
	case FlagImportant:
		return "important"
	case FlagTodo:
		return "to-do"
	case FlagFavorite:
		return "favorite"
	default:
		return fmt.Sprintf("Flag(%d)", uint8(f))
	}
}

// FlagSet is a set of flags. The zero value is the empty set.
type FlagSet uint8

// NewFlagSet builds a set from the given flags.
func NewFlagSet(flags ...Flag) FlagSet {
	var s FlagSet
	for _, f := range flags {
		s |= FlagSet(f)
	}
	return s
}

// Has reports whether f is in the set.
func (s FlagSet) Has(f Flag) bool {
	return s&FlagSet(f) != 0
}

// With returns the set with f present or absent depending on on.
func (s FlagSet) With(f Flag, on bool) FlagSet {
	if on {
		return s | FlagSet(f)
	}
	return s &^ FlagSet(f)
}

// Toggle returns the set with f flipped.
func (s FlagSet) Toggle(f Flag) FlagSet {
	return s ^ FlagSet(f)
}

// Empty reports whether no flag is set.
func (s FlagSet) Empty() bool {
	return s == 0
}

// Intersects reports whether the two sets share a flag.
func (s FlagSet) Intersects(o FlagSet) bool {
	return s&o != 0
}

// Flags lists the members of the set in display order.
func (s FlagSet) Flags() []Flag {
	var out []Flag
	for _, f := range AllFlags {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Names lists the member names of the set in display order.
func (s FlagSet) Names() []string {
	var out []string
	for _, f := range s.Flags() {
		out = append(out, f.String())
	}
	return out
}
