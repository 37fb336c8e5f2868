// Package filter selects notes by their flags.
package filter

import (
	"github.com/taigrr/notebox/internal/types"
)

// Filter keeps the notes carrying at least one of its active flags. A filter
// with no active flag keeps every note.
type Filter struct {
	active types.FlagSet
}

// New creates a Filter with the given active flags.
func New(flags ...types.Flag) *Filter {
	return &Filter{active: types.NewFlagSet(flags...)}
}

// Parse creates a Filter from flag names such as "important", "to-do" or
// "favorites".
func Parse(names []string) (*Filter, error) {
	flags, err := types.ParseFlags(names)
	if err != nil {
		return nil, err
	}
	return New(flags...), nil
}

// Active returns the active flags.
func (f *Filter) Active() types.FlagSet {
	return f.active
}

// Matches checks if a note passes the filter.
func (f *Filter) Matches(note types.Note) bool {
	if f.active.Empty() {
		return true
	}
	return note.Flags.Intersects(f.active)
}

// Apply returns a new slice holding the matching notes in their original
// order. The input is never modified.
func (f *Filter) Apply(notes []types.Note) []types.Note {
	matched := make([]types.Note, 0, len(notes))
	for _, note := range notes {
		if f.Matches(note) {
			matched = append(matched, note)
		}
	}
	return matched
}
