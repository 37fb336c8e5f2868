// Package types defines the data structures shared across notebox.
package types

import (
	"slices"

	"github.com/bytedance/sonic"
)

type (
	// ChecklistItem is a single checkbox line of a note.
	ChecklistItem struct {
		Text    string `json:"text"`
		Checked bool   `json:"checked"`
	}

	// Note is a single user-authored entry.
	Note struct {
		ID        string
		Title     string
		Content   string
		Date      string
		Tags      []string
		Checklist []ChecklistItem
		Flags     FlagSet
	}

	// FolderSummary describes a folder in a listing.
	FolderSummary struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
)

// noteWire is the persisted shape of a Note.
type noteWire struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Date        string          `json:"date"`
	Tags        []string        `json:"tags"`
	Checklist   []ChecklistItem `json:"checklist"`
	IsImportant bool            `json:"isImportant"`
	IsTodo      bool            `json:"isTodo"`
	IsFavorite  bool            `json:"isFavorite"`
}

// MarshalJSON encodes the note in the persisted document shape.
func (n Note) MarshalJSON() ([]byte, error) {
	w := noteWire{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Date:        n.Date,
		Tags:        n.Tags,
		Checklist:   n.Checklist,
		IsImportant: n.Flags.Has(FlagImportant),
		IsTodo:      n.Flags.Has(FlagTodo),
		IsFavorite:  n.Flags.Has(FlagFavorite),
	}
	// Empty lists are written as [] rather than null.
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if w.Checklist == nil {
		w.Checklist = []ChecklistItem{}
	}
	return sonic.Marshal(w)
}

// UnmarshalJSON decodes the persisted document shape.
func (n *Note) UnmarshalJSON(data []byte) error {
	var w noteWire
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Note{
		ID:        w.ID,
		Title:     w.Title,
		Content:   w.Content,
		Date:      w.Date,
		Tags:      w.Tags,
		Checklist: w.Checklist,
	}
	n.Flags = n.Flags.With(FlagImportant, w.IsImportant).
		With(FlagTodo, w.IsTodo).
		With(FlagFavorite, w.IsFavorite)
	return nil
}

// Toggle flips a single flag on the note. The other flags are untouched.
func (n *Note) Toggle(f Flag) {
	n.Flags = n.Flags.Toggle(f)
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	c := n
	c.Tags = slices.Clone(n.Tags)
	c.Checklist = slices.Clone(n.Checklist)
	return c
}

// Equal reports whether two notes carry the same data. Nil and empty lists
// compare equal, matching what survives a round trip through storage.
func (n Note) Equal(o Note) bool {
	if n.ID != o.ID || n.Title != o.Title || n.Content != o.Content ||
		n.Date != o.Date || n.Flags != o.Flags {
		return false
	}
	return slices.Equal(n.Tags, o.Tags) && slices.Equal(n.Checklist, o.Checklist)
}
