package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taigrr/notebox/internal/uri"
)

func registerResources(server *mcp.Server, h *handlers) {
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uri.NoteTemplate,
		Name:        "note",
		Description: "A stored note rendered as Markdown with YAML frontmatter.",
		MIMEType:    "text/markdown",
	}, h.handleReadNote)
}

func (h *handlers) handleReadNote(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	raw := req.Params.URI
	folder, id, err := uri.ParseNoteURI(raw)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(raw)
	}
	note, ok := h.app.store.Note(folder, id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(raw)
	}

	text, err := h.app.exporter.Render(note)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      raw,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}, nil
}
