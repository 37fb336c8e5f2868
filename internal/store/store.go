// Package store owns the folders of notes and persists them as one JSON
// document under a single storage key.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/notebox/internal/codec"
	"github.com/taigrr/notebox/internal/filter"
	"github.com/taigrr/notebox/internal/kv"
	"github.com/taigrr/notebox/internal/logging"
	"github.com/taigrr/notebox/internal/types"
	"github.com/taigrr/notebox/internal/writequeue"
)

var (
	// ErrEmptyFolderName is returned when a note is saved without a folder.
	ErrEmptyFolderName = errors.New("folder name cannot be empty")
	// ErrEmptyNoteID is returned when a note without an id is saved.
	ErrEmptyNoteID = errors.New("note id cannot be empty")
)

// Config holds store settings.
type Config struct {
	// Key is the storage key of the document.
	Key string
	// DateLayout formats the date of new notes.
	DateLayout string
	// Queue configures the write queue.
	Queue writequeue.Config
	// Now replaces the clock, for tests.
	Now func() time.Time
}

// DefaultConfig returns the default store settings.
func DefaultConfig() Config {
	return Config{
		Key:        "folders",
		DateLayout: "1/2/2006",
		Queue:      writequeue.DefaultConfig(),
	}
}

// Store is the single owner of the folders mapping. Every mutation goes
// through its methods and is followed by a write of the whole document.
type Store struct {
	mu  sync.RWMutex
	doc *types.Document

	storage    kv.Storage
	queue      *writequeue.Queue
	key        string
	dateLayout string
	now        func() time.Time
	ids        *idGenerator
	logger     *zap.Logger
}

// New creates an empty store persisting to storage. A nil cfg uses
// DefaultConfig and a nil logger is replaced by a no-op logger.
func New(storage kv.Storage, cfg *Config, logger *zap.Logger) *Store {
	config := DefaultConfig()
	if cfg != nil {
		if cfg.Key != "" {
			config.Key = cfg.Key
		}
		if cfg.DateLayout != "" {
			config.DateLayout = cfg.DateLayout
		}
		config.Queue = cfg.Queue
		config.Now = cfg.Now
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		doc:        types.NewDocument(),
		storage:    storage,
		queue:      writequeue.New(&config.Queue, logger.Named("writequeue")),
		key:        config.Key,
		dateLayout: config.DateLayout,
		now:        config.Now,
		ids:        newIDGenerator(config.Now),
		logger:     logger,
	}
}

// Load replaces the in-memory folders with the persisted document. A missing
// document leaves the store unchanged. A malformed document or a failed read
// is logged, the store keeps its prior state, and the error is returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	// Reads go through the queue so they observe every write enqueued
	// before them.
	err := s.queue.Execute(ctx, func(ctx context.Context) error {
		v, err := s.storage.Get(ctx, s.key)
		data = v
		return err
	})
	if errors.Is(err, kv.ErrNotFound) {
		s.logger.Debug("no persisted document", zap.String(logging.FieldKey, s.key))
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to read persisted document",
			zap.String(logging.FieldKey, s.key), zap.Error(err))
		return fmt.Errorf("load %s: %w", s.key, err)
	}

	doc, err := codec.Decode(data)
	if err != nil {
		s.logger.Warn("ignoring malformed persisted document",
			zap.String(logging.FieldKey, s.key),
			zap.Int(logging.FieldSize, len(data)),
			zap.Error(err))
		return fmt.Errorf("load %s: %w", s.key, err)
	}

	s.doc = doc
	s.logger.Info("loaded notes",
		zap.String(logging.FieldKey, s.key),
		zap.Int(logging.FieldCount, doc.Len()))
	return nil
}

// CreateFolder adds an empty folder and persists the store. Blank names are
// ignored. An existing folder keeps its notes. The name is used as given.
// It reports whether a new folder was added.
func (s *Store) CreateFolder(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}

	s.mu.Lock()
	created := !s.doc.Has(name)
	if created {
		s.doc.Set(name, nil)
	}
	pending, err := s.persistLocked(ctx)
	s.mu.Unlock()

	if created {
		s.logger.Debug("created folder", zap.String(logging.FieldFolder, name))
	}
	return created, s.await(ctx, pending, err)
}

// NewNote builds a draft note with a fresh id and today's date. The note is
// not added to the folder until it is saved.
func (s *Store) NewNote(folder string) types.Note {
	s.mu.RLock()
	notes, _ := s.doc.Notes(folder)
	id := s.ids.next()
	for containsID(notes, id) {
		id = s.ids.next()
	}
	s.mu.RUnlock()

	return types.Note{
		ID:        id,
		Date:      s.now().Format(s.dateLayout),
		Tags:      []string{},
		Checklist: []types.ChecklistItem{},
	}
}

// SaveNote replaces the note with the same id in folder, keeping its
// position, or appends it when the id is new. A missing folder is created.
// The store is persisted afterwards. A blank folder name is rejected, as
// CreateFolder ignores it.
func (s *Store) SaveNote(ctx context.Context, folder string, note types.Note) error {
	if strings.TrimSpace(folder) == "" {
		return ErrEmptyFolderName
	}
	if note.ID == "" {
		return ErrEmptyNoteID
	}
	note = note.Clone()

	s.mu.Lock()
	notes, _ := s.doc.Notes(folder)
	if i := slices.IndexFunc(notes, func(n types.Note) bool { return n.ID == note.ID }); i >= 0 {
		notes[i] = note
	} else {
		notes = append(notes, note)
	}
	s.doc.Set(folder, notes)
	pending, err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Debug("saved note",
		zap.String(logging.FieldFolder, folder),
		zap.String(logging.FieldNoteID, note.ID))
	return s.await(ctx, pending, err)
}

// DeleteNote removes the note with id from folder and persists the store.
// Nothing is written when the folder or note does not exist. It reports
// whether a note was removed.
func (s *Store) DeleteNote(ctx context.Context, folder, id string) (bool, error) {
	s.mu.Lock()
	notes, ok := s.doc.Notes(folder)
	if !ok || !containsID(notes, id) {
		s.mu.Unlock()
		return false, nil
	}
	s.doc.Set(folder, slices.DeleteFunc(notes, func(n types.Note) bool { return n.ID == id }))
	pending, err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Debug("deleted note",
		zap.String(logging.FieldFolder, folder),
		zap.String(logging.FieldNoteID, id))
	return true, s.await(ctx, pending, err)
}

// ToggleFlag flips the named flag on note. The change is not persisted until
// the note is saved.
func ToggleFlag(note *types.Note, flagName string) error {
	f, err := types.ParseFlag(flagName)
	if err != nil {
		return err
	}
	note.Toggle(f)
	return nil
}

// FilterNotes returns copies of the notes in folder carrying any of the
// active flags, in folder order. With no active flag every note is
// returned. A missing folder yields an empty slice.
func (s *Store) FilterNotes(folder string, active types.FlagSet) []types.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes, _ := s.doc.Notes(folder)
	matched := filter.New(active.Flags()...).Apply(notes)
	for i := range matched {
		matched[i] = matched[i].Clone()
	}
	return matched
}

// Folders lists the folders with their note counts in insertion order.
func (s *Store) Folders() []types.FolderSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.doc.Names()
	out := make([]types.FolderSummary, 0, len(names))
	for _, name := range names {
		notes, _ := s.doc.Notes(name)
		out = append(out, types.FolderSummary{Name: name, Count: len(notes)})
	}
	return out
}

// HasFolder reports whether the folder exists.
func (s *Store) HasFolder(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Has(name)
}

// Notes returns copies of the notes in folder.
func (s *Store) Notes(folder string) ([]types.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes, ok := s.doc.Notes(folder)
	if !ok {
		return nil, false
	}
	out := make([]types.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out, true
}

// Note returns a copy of one note.
func (s *Store) Note(folder, id string) (types.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes, _ := s.doc.Notes(folder)
	i := slices.IndexFunc(notes, func(n types.Note) bool { return n.ID == id })
	if i < 0 {
		return types.Note{}, false
	}
	return notes[i].Clone(), true
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() *types.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Close waits for queued writes to reach storage. It does not close the
// storage itself.
func (s *Store) Close(ctx context.Context) error {
	return s.queue.Shutdown(ctx)
}

// persistLocked encodes the document and enqueues its write. It must be
// called with s.mu held so writes are queued in mutation order. The write
// runs detached from ctx cancellation; only the wait honours ctx.
func (s *Store) persistLocked(ctx context.Context) (*writequeue.Pending, error) {
	data, err := codec.Encode(s.doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	key := s.key
	return s.queue.Enqueue(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.storage.Set(ctx, key, data)
	})
}

// await waits for a queued write and logs its failure. The in-memory change
// is kept either way; the next successful write carries it.
func (s *Store) await(ctx context.Context, pending *writequeue.Pending, err error) error {
	if err == nil {
		err = pending.Wait(ctx)
	}
	if err != nil {
		s.logger.Warn("failed to persist notes",
			zap.String(logging.FieldKey, s.key), zap.Error(err))
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	return nil
}

func containsID(notes []types.Note, id string) bool {
	return slices.ContainsFunc(notes, func(n types.Note) bool { return n.ID == id })
}
