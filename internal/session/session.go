// Package session holds the interactive state that sits in front of the
// store: the open folder, the note being edited and the active filters.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/taigrr/notebox/internal/logging"
	"github.com/taigrr/notebox/internal/store"
	"github.com/taigrr/notebox/internal/types"
)

var (
	// ErrNoFolder is returned by operations that need an open folder.
	ErrNoFolder = errors.New("no folder is open")
	// ErrNoCurrentNote is returned when editing without a current note.
	ErrNoCurrentNote = errors.New("no note is being edited")
	// ErrChecklistIndex is returned for a checklist index out of range.
	ErrChecklistIndex = errors.New("checklist index out of range")
	// ErrFolderNotFound is returned when opening an unknown folder.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrNoteNotFound is returned when editing an unknown note.
	ErrNoteNotFound = errors.New("note not found")
)

// Session tracks one user's position in the notes. It is safe for
// concurrent use.
type Session struct {
	mu      sync.Mutex
	store   *store.Store
	folder  string
	current *types.Note
	filters types.FlagSet
	logger  *zap.Logger
}

// New creates a session over st with no folder open.
func New(st *store.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: st, logger: logger}
}

// Store returns the underlying store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Open makes name the current folder. Any note being edited is dropped;
// active filters are kept.
func (s *Session) Open(name string) error {
	if !s.store.HasFolder(name) {
		return fmt.Errorf("%w: %q", ErrFolderNotFound, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folder = name
	s.current = nil
	return nil
}

// Folder returns the open folder, or "" when none is open.
func (s *Session) Folder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

// NewNote starts a draft in the open folder. The draft is stored only once
// saved.
func (s *Session) NewNote() (types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folder == "" {
		return types.Note{}, ErrNoFolder
	}
	note := s.store.NewNote(s.folder)
	s.current = &note
	return note.Clone(), nil
}

// EditNote makes a copy of the stored note the current note.
func (s *Session) EditNote(id string) (types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folder == "" {
		return types.Note{}, ErrNoFolder
	}
	note, ok := s.store.Note(s.folder, id)
	if !ok {
		return types.Note{}, fmt.Errorf("%w: %q in %q", ErrNoteNotFound, id, s.folder)
	}
	s.current = &note
	return note.Clone(), nil
}

// Current returns a copy of the note being edited.
func (s *Session) Current() (types.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return types.Note{}, false
	}
	return s.current.Clone(), true
}

// edit applies fn to the current note and returns a copy of the result.
func (s *Session) edit(fn func(n *types.Note) error) (types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return types.Note{}, ErrNoCurrentNote
	}
	if err := fn(s.current); err != nil {
		return types.Note{}, err
	}
	return s.current.Clone(), nil
}

// SetTitle replaces the title of the current note.
func (s *Session) SetTitle(title string) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		n.Title = title
		return nil
	})
}

// SetContent replaces the content of the current note.
func (s *Session) SetContent(content string) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		n.Content = content
		return nil
	})
}

// SetTags replaces the tags of the current note.
func (s *Session) SetTags(tags []string) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		n.Tags = slices.Clone(tags)
		if n.Tags == nil {
			n.Tags = []string{}
		}
		return nil
	})
}

// ToggleFlag flips one flag on the current note. Nothing is stored until
// Save.
func (s *Session) ToggleFlag(f types.Flag) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		n.Toggle(f)
		return nil
	})
}

// AddChecklistItem appends an unchecked item.
func (s *Session) AddChecklistItem(text string) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		n.Checklist = append(n.Checklist, types.ChecklistItem{Text: text})
		return nil
	})
}

// ToggleChecklistItem flips the checked state of item i.
func (s *Session) ToggleChecklistItem(i int) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		if err := checkIndex(n, i); err != nil {
			return err
		}
		n.Checklist[i].Checked = !n.Checklist[i].Checked
		return nil
	})
}

// SetChecklistItemText replaces the text of item i.
func (s *Session) SetChecklistItemText(i int, text string) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		if err := checkIndex(n, i); err != nil {
			return err
		}
		n.Checklist[i].Text = text
		return nil
	})
}

// RemoveChecklistItem deletes item i.
func (s *Session) RemoveChecklistItem(i int) (types.Note, error) {
	return s.edit(func(n *types.Note) error {
		if err := checkIndex(n, i); err != nil {
			return err
		}
		n.Checklist = slices.Delete(n.Checklist, i, i+1)
		return nil
	})
}

func checkIndex(n *types.Note, i int) error {
	if i < 0 || i >= len(n.Checklist) {
		return fmt.Errorf("%w: %d (have %d items)", ErrChecklistIndex, i, len(n.Checklist))
	}
	return nil
}

// Save stores the current note in the open folder. The note stays current
// so editing can continue.
func (s *Session) Save(ctx context.Context) (types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folder == "" {
		return types.Note{}, ErrNoFolder
	}
	if s.current == nil {
		return types.Note{}, ErrNoCurrentNote
	}
	if err := s.store.SaveNote(ctx, s.folder, *s.current); err != nil {
		return types.Note{}, err
	}
	s.logger.Debug("session saved note",
		zap.String(logging.FieldFolder, s.folder),
		zap.String(logging.FieldNoteID, s.current.ID))
	return s.current.Clone(), nil
}

// Discard drops the current note without saving it.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// ToggleFilter adds f to the active filters, or removes it when already
// active, and returns the new filter set.
func (s *Session) ToggleFilter(f types.Flag) types.FlagSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Toggle(f)
	return s.filters
}

// Filters returns the active filters.
func (s *Session) Filters() types.FlagSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// ClearFilters deactivates every filter.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = 0
}

// VisibleNotes returns the open folder's notes that pass the active filters.
func (s *Session) VisibleNotes() ([]types.Note, error) {
	s.mu.Lock()
	folder, filters := s.folder, s.filters
	s.mu.Unlock()
	if folder == "" {
		return nil, ErrNoFolder
	}
	return s.store.FilterNotes(folder, filters), nil
}

// Delete removes a note from the open folder. If it was the current note,
// the current note is cleared.
func (s *Session) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folder == "" {
		return false, ErrNoFolder
	}
	removed, err := s.store.DeleteNote(ctx, s.folder, id)
	if removed && s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return removed, err
}
