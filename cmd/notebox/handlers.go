package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/taigrr/notebox/internal/logging"
	"github.com/taigrr/notebox/internal/session"
	"github.com/taigrr/notebox/internal/types"
)

// handlers implements the MCP tools over one session.
type handlers struct {
	app *app
}

func (h *handlers) session() *session.Session {
	return h.app.session
}

// currentOutput renders a note edited in the open folder.
func (h *handlers) currentOutput(n types.Note) NoteOutput {
	return noteOutput(h.session().Folder(), n)
}

func (h *handlers) handleListFolders(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ListFoldersOutput, error) {
	return nil, ListFoldersOutput{Folders: h.app.store.Folders()}, nil
}

func (h *handlers) handleCreateFolder(ctx context.Context, req *mcp.CallToolRequest, input CreateFolderInput) (*mcp.CallToolResult, CreateFolderOutput, error) {
	created, err := h.app.store.CreateFolder(ctx, input.Name)
	if err != nil {
		return nil, CreateFolderOutput{}, err
	}
	return nil, CreateFolderOutput{Name: input.Name, Created: created}, nil
}

func (h *handlers) handleListNotes(ctx context.Context, req *mcp.CallToolRequest, input ListNotesInput) (*mcp.CallToolResult, ListNotesOutput, error) {
	folder := input.Folder
	if folder == "" {
		folder = h.session().Folder()
	}
	if folder == "" {
		return nil, ListNotesOutput{}, fmt.Errorf("no folder given and no folder is open")
	}
	if !h.app.store.HasFolder(folder) {
		return nil, ListNotesOutput{}, fmt.Errorf("%w: %q", session.ErrFolderNotFound, folder)
	}

	active := h.session().Filters()
	if input.Filters != nil {
		flags, err := types.ParseFlags(input.Filters)
		if err != nil {
			return nil, ListNotesOutput{}, err
		}
		active = types.NewFlagSet(flags...)
	}

	notes := h.app.store.FilterNotes(folder, active)
	return nil, ListNotesOutput{
		Folder:  folder,
		Filters: flagNames(active),
		Notes:   noteSummaries(folder, notes),
	}, nil
}

func (h *handlers) handleOpenFolder(ctx context.Context, req *mcp.CallToolRequest, input OpenFolderInput) (*mcp.CallToolResult, ListNotesOutput, error) {
	if err := h.session().Open(input.Name); err != nil {
		return nil, ListNotesOutput{}, err
	}
	notes, err := h.session().VisibleNotes()
	if err != nil {
		return nil, ListNotesOutput{}, err
	}
	return nil, ListNotesOutput{
		Folder:  input.Name,
		Filters: flagNames(h.session().Filters()),
		Notes:   noteSummaries(input.Name, notes),
	}, nil
}

func (h *handlers) handleNewNote(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().NewNote()
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleOpenNote(ctx context.Context, req *mcp.CallToolRequest, input OpenNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().EditNote(strings.TrimSpace(input.ID))
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleCurrentNote(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, ok := h.session().Current()
	if !ok {
		return nil, NoteOutput{}, session.ErrNoCurrentNote
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleEditNote(ctx context.Context, req *mcp.CallToolRequest, input EditNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, ok := h.session().Current()
	if !ok {
		return nil, NoteOutput{}, session.ErrNoCurrentNote
	}

	var err error
	if input.Title != nil {
		if note, err = h.session().SetTitle(*input.Title); err != nil {
			return nil, NoteOutput{}, err
		}
	}
	if input.Content != nil {
		if note, err = h.session().SetContent(*input.Content); err != nil {
			return nil, NoteOutput{}, err
		}
	}
	if input.Tags != nil {
		if note, err = h.session().SetTags(input.Tags); err != nil {
			return nil, NoteOutput{}, err
		}
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleToggleFlag(ctx context.Context, req *mcp.CallToolRequest, input FlagInput) (*mcp.CallToolResult, NoteOutput, error) {
	f, err := types.ParseFlag(input.Flag)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	note, err := h.session().ToggleFlag(f)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleAddChecklistItem(ctx context.Context, req *mcp.CallToolRequest, input ChecklistTextInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().AddChecklistItem(input.Text)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleToggleChecklistItem(ctx context.Context, req *mcp.CallToolRequest, input ChecklistIndexInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().ToggleChecklistItem(input.Index)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleUpdateChecklistItem(ctx context.Context, req *mcp.CallToolRequest, input ChecklistUpdateInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().SetChecklistItemText(input.Index, input.Text)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleRemoveChecklistItem(ctx context.Context, req *mcp.CallToolRequest, input ChecklistIndexInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().RemoveChecklistItem(input.Index)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleSaveNote(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := h.session().Save(ctx)
	if err != nil {
		h.app.logger.Warn("save_note failed",
			zap.String(logging.FieldTool, "save_note"),
			zap.String(logging.FieldFolder, h.session().Folder()),
			zap.Error(err))
		return nil, NoteOutput{}, err
	}
	return nil, h.currentOutput(note), nil
}

func (h *handlers) handleDiscardNote(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, DiscardOutput, error) {
	_, had := h.session().Current()
	h.session().Discard()
	return nil, DiscardOutput{Discarded: had}, nil
}

func (h *handlers) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest, input DeleteNoteInput) (*mcp.CallToolResult, DeleteNoteOutput, error) {
	id := strings.TrimSpace(input.ID)
	deleted, err := h.session().Delete(ctx, id)
	if err != nil {
		return nil, DeleteNoteOutput{ID: id}, err
	}
	return nil, DeleteNoteOutput{ID: id, Deleted: deleted}, nil
}

func (h *handlers) handleToggleFilter(ctx context.Context, req *mcp.CallToolRequest, input FlagInput) (*mcp.CallToolResult, FiltersOutput, error) {
	f, err := types.ParseFlag(input.Flag)
	if err != nil {
		return nil, FiltersOutput{}, err
	}
	return nil, FiltersOutput{Filters: flagNames(h.session().ToggleFilter(f))}, nil
}

func (h *handlers) handleReload(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, ListFoldersOutput, error) {
	if err := h.app.store.Load(ctx); err != nil {
		return nil, ListFoldersOutput{}, err
	}
	return nil, ListFoldersOutput{Folders: h.app.store.Folders()}, nil
}
