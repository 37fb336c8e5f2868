// Package uri builds and parses notebox resource URIs.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the URI scheme of notebox resources.
const Scheme = "notebox"

// NoteTemplate is the RFC 6570 template matching NoteURI.
const NoteTemplate = Scheme + "://folders/{folder}/notes/{id}"

// ErrInvalidURI is returned by ParseNoteURI for URIs it does not recognise.
var ErrInvalidURI = errors.New("invalid notebox URI")

// NoteURI returns the URI of a note: notebox://folders/{folder}/notes/{id}.
// Both segments are path-escaped, so folder names may contain slashes and
// spaces.
func NoteURI(folder, id string) string {
	return Scheme + "://folders/" + url.PathEscape(folder) + "/notes/" + url.PathEscape(id)
}

// ParseNoteURI extracts the folder and note id from a note URI.
func ParseNoteURI(raw string) (folder, id string, err error) {
	prefix := Scheme + "://folders/"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, raw)
	}
	parts := strings.Split(strings.TrimPrefix(raw, prefix), "/")
	if len(parts) != 3 || parts[1] != "notes" || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, raw)
	}

	folder, err = url.PathUnescape(parts[0])
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrInvalidURI, raw, err)
	}
	id, err = url.PathUnescape(parts[2])
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrInvalidURI, raw, err)
	}
	return folder, id, nil
}
