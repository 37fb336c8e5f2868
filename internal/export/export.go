// Package export converts notes to and from Markdown files with a YAML
// frontmatter header.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/taigrr/notebox/internal/frontmatter"
	"github.com/taigrr/notebox/internal/types"
)

// Extension is the file extension of exported notes.
const Extension = ".md"

// ErrInvalidHeader is returned by Parse when the frontmatter does not decode.
var ErrInvalidHeader = errors.New("invalid note header")

var taskLine = regexp.MustCompile(`^- \[([ xX])\] (.*)$`)

// continuation prefixes the further lines of a multi-line checklist item.
const continuation = "  "

// header is the frontmatter of an exported note.
type header struct {
	ID    string   `yaml:"id"`
	Title string   `yaml:"title,omitempty"`
	Date  string   `yaml:"date,omitempty"`
	Tags  []string `yaml:"tags,omitempty"`
	Flags []string `yaml:"flags,omitempty"`
}

// Exporter renders notes as Markdown.
type Exporter struct {
	fm *frontmatter.Handler
}

// New creates an Exporter.
func New() *Exporter {
	return &Exporter{fm: frontmatter.New()}
}

// Render returns the Markdown form of a note: a frontmatter header with the
// id, title, date, tags and flags, then the content, then the checklist as
// task lines.
func (e *Exporter) Render(note types.Note) (string, error) {
	h := header{
		ID:    note.ID,
		Title: note.Title,
		Date:  note.Date,
		Tags:  note.Tags,
		Flags: note.Flags.Names(),
	}

	return e.fm.Stringify(h, Body(note))
}

// Body returns the Markdown of a note without its header: the content
// followed by the checklist as task lines. Further lines of a multi-line
// item are indented under its task line.
func Body(note types.Note) string {
	body := note.Content
	if len(note.Checklist) == 0 {
		return body
	}
	lines := make([]string, len(note.Checklist))
	for i, item := range note.Checklist {
		mark := " "
		if item.Checked {
			mark = "x"
		}
		lines[i] = "- [" + mark + "] " + strings.ReplaceAll(item.Text, "\n", "\n"+continuation)
	}
	if body != "" {
		body += "\n\n"
	}
	return body + strings.Join(lines, "\n")
}

// Parse reads a note back from its Markdown form. A trailing block of task
// lines becomes the checklist.
func (e *Exporter) Parse(text string) (types.Note, error) {
	var h header
	body, err := e.fm.Decode(text, &h)
	if err != nil {
		return types.Note{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	flags, err := types.ParseFlags(h.Flags)
	if err != nil {
		return types.Note{}, err
	}

	content, checklist := splitChecklist(body)
	note := types.Note{
		ID:        h.ID,
		Title:     h.Title,
		Content:   content,
		Date:      h.Date,
		Tags:      h.Tags,
		Checklist: checklist,
		Flags:     types.NewFlagSet(flags...),
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

// parseLoose reads a file whose header does not decode into a note. Known
// string fields of the header are kept when it is valid YAML; otherwise the
// whole text becomes the content. The note has no id.
func (e *Exporter) parseLoose(text string) types.Note {
	doc := e.fm.Parse(text)
	content, checklist := splitChecklist(doc.Content)
	note := types.Note{
		Content:   content,
		Tags:      []string{},
		Checklist: checklist,
	}
	if title, ok := doc.Frontmatter["title"].(string); ok {
		note.Title = title
	}
	if date, ok := doc.Frontmatter["date"].(string); ok {
		note.Date = date
	}
	return note
}

func splitChecklist(body string) (string, []types.ChecklistItem) {
	content, block := "", body
	if i := strings.LastIndex(body, "\n\n"); i >= 0 {
		content, block = body[:i], body[i+2:]
	}

	var items []types.ChecklistItem
	for _, line := range strings.Split(block, "\n") {
		if rest, ok := strings.CutPrefix(line, continuation); ok && len(items) > 0 {
			items[len(items)-1].Text += "\n" + rest
			continue
		}
		m := taskLine.FindStringSubmatch(line)
		if m == nil {
			return body, []types.ChecklistItem{}
		}
		items = append(items, types.ChecklistItem{Text: m[2], Checked: m[1] != " "})
	}
	return content, items
}

// FileName returns the file a note is exported to.
func FileName(note types.Note) string {
	return note.ID + Extension
}

// WriteFolder writes every note to dir, one file per note, creating dir
// when needed. It returns the written paths.
func (e *Exporter) WriteFolder(dir string, notes []types.Note) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(notes))
	for _, note := range notes {
		if note.ID == "" || strings.ContainsAny(note.ID, `/\`) || strings.HasPrefix(note.ID, ".") {
			return paths, fmt.Errorf("note id %q cannot be used as a file name", note.ID)
		}
		text, err := e.Render(note)
		if err != nil {
			return paths, fmt.Errorf("render note %s: %w", note.ID, err)
		}
		path := filepath.Join(dir, FileName(note))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write file: %s - %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadFolder parses every Markdown file in dir, sorted by file name. A file
// whose header does not decode is read leniently and gets no id.
func (e *Exporter) ReadFolder(dir string) ([]types.Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("directory not found: %s", dir)
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	notes := make([]types.Note, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %s - %w", path, err)
		}
		note, err := e.Parse(string(data))
		if errors.Is(err, ErrInvalidHeader) {
			note = e.parseLoose(string(data))
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		notes = append(notes, note)
	}
	return notes, nil
}
