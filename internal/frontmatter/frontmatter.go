// Package frontmatter splits Markdown text into a YAML header and a body and
// joins them back.
package frontmatter

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Document is Markdown text split into its frontmatter and body.
type Document struct {
	Frontmatter map[string]any
	Content     string
}

// Handler parses and renders frontmatter.
type Handler struct{}

// New creates a new Handler.
func New() *Handler {
	return &Handler{}
}

// split returns the raw YAML header and the body. ok is false when the text
// has no complete header.
func (h *Handler) split(content string) (header, body string, ok bool) {
	if !strings.HasPrefix(content, delimiter+"\n") {
		return "", content, false
	}
	rest := content[len(delimiter)+1:]

	// An empty header closes immediately.
	if strings.HasPrefix(rest, delimiter+"\n") {
		return "", rest[len(delimiter)+1:], true
	}
	if rest == delimiter {
		return "", "", true
	}

	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end == -1 {
		if strings.HasSuffix(rest, "\n"+delimiter) {
			return rest[:len(rest)-len(delimiter)-1], "", true
		}
		return "", content, false
	}
	return rest[:end], rest[end+len(delimiter)+2:], true
}

// Parse extracts the frontmatter of content. Text without a header, or with
// a header that is not valid YAML, is returned whole as the body.
func (h *Handler) Parse(content string) Document {
	result := Document{
		Frontmatter: make(map[string]any),
		Content:     content,
	}

	header, body, ok := h.split(content)
	if !ok {
		return result
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(header), &frontmatter); err != nil {
		return result
	}
	if frontmatter != nil {
		result.Frontmatter = frontmatter
	}
	result.Content = body
	return result
}

// Decode unmarshals the frontmatter of content into out and returns the
// body. Unlike Parse, an invalid header is an error.
func (h *Handler) Decode(content string, out any) (string, error) {
	header, body, ok := h.split(content)
	if !ok {
		return content, nil
	}
	if err := yaml.Unmarshal([]byte(header), out); err != nil {
		return "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return body, nil
}

// Stringify renders frontmatter followed by content. frontmatter may be a
// map or a struct with yaml tags; an empty map or nil yields content alone.
func (h *Handler) Stringify(frontmatter any, content string) (string, error) {
	if isEmpty(frontmatter) {
		return content, nil
	}

	yamlBytes, err := yaml.Marshal(frontmatter)
	if err != nil {
		return "", fmt.Errorf("failed to stringify frontmatter: %w", err)
	}

	return delimiter + "\n" + string(yamlBytes) + delimiter + "\n" + content, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}
