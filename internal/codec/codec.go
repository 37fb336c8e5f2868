// Package codec converts a notes document to and from its persisted JSON form.
//
// The persisted form is a single JSON object mapping folder names to arrays of
// notes. Folder order is part of the document, so objects are walked in the
// order their keys appear rather than decoded into a map.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/taigrr/notebox/internal/types"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when the persisted data is not a notes document.
var ErrMalformed = errors.New("malformed document")

// Encode serializes the document.
func Encode(doc *types.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range doc.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode folder name %q: %w", name, err)
		}
		notes, _ := doc.Notes(name)
		value, err := sonic.Marshal(notes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode folder %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses a persisted document.
func Decode(data []byte) (*types.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is %s, want object", ErrMalformed, root.Type)
	}

	doc := types.NewDocument()
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case value.Type == gjson.Null:
			doc.Set(name, nil)
		case value.IsArray():
			var notes []types.Note
			if err := sonic.UnmarshalString(value.Raw, &notes); err != nil {
				decodeErr = fmt.Errorf("%w: folder %q: %v", ErrMalformed, name, err)
				return false
			}
			doc.Set(name, notes)
		default:
			decodeErr = fmt.Errorf("%w: folder %q is %s, want array", ErrMalformed, name, value.Type)
			return false
		}
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return doc, nil
}
