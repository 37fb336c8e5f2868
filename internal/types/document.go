package types

import "slices"

// Document maps folder names to their notes, remembering the order in which
// folders were added.
type Document struct {
	order   []string
	folders map[string][]Note
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{folders: make(map[string][]Note)}
}

// Names returns the folder names in insertion order.
func (d *Document) Names() []string {
	return slices.Clone(d.order)
}

// Len returns the number of folders.
func (d *Document) Len() int {
	return len(d.order)
}

// Has reports whether the folder exists.
func (d *Document) Has(name string) bool {
	_, ok := d.folders[name]
	return ok
}

// Notes returns the notes of a folder. The slice is owned by the document.
func (d *Document) Notes(name string) ([]Note, bool) {
	notes, ok := d.folders[name]
	return notes, ok
}

// Set replaces the notes of a folder, adding the folder at the end if new.
func (d *Document) Set(name string, notes []Note) {
	if d.folders == nil {
		d.folders = make(map[string][]Note)
	}
	if _, ok := d.folders[name]; !ok {
		d.order = append(d.order, name)
	}
	if notes == nil {
		notes = []Note{}
	}
	d.folders[name] = notes
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := NewDocument()
	for _, name := range d.order {
		notes := make([]Note, len(d.folders[name]))
		for i, n := range d.folders[name] {
			notes[i] = n.Clone()
		}
		c.Set(name, notes)
	}
	return c
}

// Equal reports whether both documents hold the same folders, in the same
// order, with equal notes.
func (d *Document) Equal(o *Document) bool {
	if !slices.Equal(d.order, o.order) {
		return false
	}
	for _, name := range d.order {
		if !slices.EqualFunc(d.folders[name], o.folders[name], Note.Equal) {
			return false
		}
	}
	return true
}
