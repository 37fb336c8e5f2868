package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taigrr/notebox/internal/types"
	"github.com/taigrr/notebox/internal/uri"
)

type (
	// EmptyInput is the input of tools without parameters.
	EmptyInput struct{}

	// NoteOutput is a full note as returned by the note tools.
	NoteOutput struct {
		ID          string                `json:"id"`
		Title       string                `json:"title"`
		Content     string                `json:"content"`
		Date        string                `json:"date"`
		Tags        []string              `json:"tags"`
		Checklist   []types.ChecklistItem `json:"checklist"`
		IsImportant bool                  `json:"isImportant"`
		IsTodo      bool                  `json:"isTodo"`
		IsFavorite  bool                  `json:"isFavorite"`
		URI         string                `json:"uri"`
	}

	// NoteSummary is a note as shown in a listing.
	NoteSummary struct {
		ID    string   `json:"id"`
		Title string   `json:"title"`
		Date  string   `json:"date"`
		Flags []string `json:"flags"`
		URI   string   `json:"uri"`
	}

	// ListFoldersOutput lists every folder.
	ListFoldersOutput struct {
		Folders []types.FolderSummary `json:"folders"`
	}

	// CreateFolderInput contains parameters for creating a folder.
	CreateFolderInput struct {
		Name string `json:"name" jsonschema:"Folder name, used exactly as given"`
	}

	// CreateFolderOutput contains the result of creating a folder.
	CreateFolderOutput struct {
		Name    string `json:"name"`
		Created bool   `json:"created"`
	}

	// ListNotesInput contains parameters for listing notes.
	ListNotesInput struct {
		Folder  string   `json:"folder,omitempty" jsonschema:"Folder to list (default: the open folder)"`
		Filters []string `json:"filters,omitempty" jsonschema:"Flags to filter by: important, to-do, favorite. Notes matching any are kept (default: the session filters)"`
	}

	// ListNotesOutput contains the notes of a folder.
	ListNotesOutput struct {
		Folder  string        `json:"folder"`
		Filters []string      `json:"filters"`
		Notes   []NoteSummary `json:"notes"`
	}

	// OpenFolderInput contains parameters for opening a folder.
	OpenFolderInput struct {
		Name string `json:"name" jsonschema:"Folder to open"`
	}

	// OpenNoteInput contains parameters for editing a stored note.
	OpenNoteInput struct {
		ID string `json:"id" jsonschema:"Id of the note in the open folder"`
	}

	// EditNoteInput contains the fields to change on the current note.
	EditNoteInput struct {
		Title   *string  `json:"title,omitempty" jsonschema:"New title (omit to keep)"`
		Content *string  `json:"content,omitempty" jsonschema:"New content (omit to keep)"`
		Tags    []string `json:"tags,omitempty" jsonschema:"New tags replacing the old ones (omit to keep, [] to clear)"`
	}

	// FlagInput names a flag.
	FlagInput struct {
		Flag string `json:"flag" jsonschema:"One of important, to-do or favorite"`
	}

	// ChecklistTextInput contains the text of a new checklist item.
	ChecklistTextInput struct {
		Text string `json:"text" jsonschema:"Text of the checklist item"`
	}

	// ChecklistIndexInput selects a checklist item.
	ChecklistIndexInput struct {
		Index int `json:"index" jsonschema:"Zero-based position of the checklist item"`
	}

	// ChecklistUpdateInput replaces the text of a checklist item.
	ChecklistUpdateInput struct {
		Index int    `json:"index" jsonschema:"Zero-based position of the checklist item"`
		Text  string `json:"text" jsonschema:"New text of the checklist item"`
	}

	// DiscardOutput contains the result of discarding the current note.
	DiscardOutput struct {
		Discarded bool `json:"discarded"`
	}

	// DeleteNoteInput contains parameters for deleting a note.
	DeleteNoteInput struct {
		ID string `json:"id" jsonschema:"Id of the note in the open folder"`
	}

	// DeleteNoteOutput contains the result of deleting a note.
	DeleteNoteOutput struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}

	// FiltersOutput lists the active filters.
	FiltersOutput struct {
		Filters []string `json:"filters"`
	}
)

func noteOutput(folder string, n types.Note) NoteOutput {
	out := NoteOutput{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Date:        n.Date,
		Tags:        n.Tags,
		Checklist:   n.Checklist,
		IsImportant: n.Flags.Has(types.FlagImportant),
		IsTodo:      n.Flags.Has(types.FlagTodo),
		IsFavorite:  n.Flags.Has(types.FlagFavorite),
		URI:         uri.NoteURI(folder, n.ID),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Checklist == nil {
		out.Checklist = []types.ChecklistItem{}
	}
	return out
}

func noteSummaries(folder string, notes []types.Note) []NoteSummary {
	out := make([]NoteSummary, len(notes))
	for i, n := range notes {
		flags := n.Flags.Names()
		if flags == nil {
			flags = []string{}
		}
		out[i] = NoteSummary{
			ID:    n.ID,
			Title: n.Title,
			Date:  n.Date,
			Flags: flags,
			URI:   uri.NoteURI(folder, n.ID),
		}
	}
	return out
}

func flagNames(s types.FlagSet) []string {
	names := s.Names()
	if names == nil {
		return []string{}
	}
	return names
}

func registerTools(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_folders",
		Description: "List all folders in creation order with their note counts.",
	}, h.handleListFolders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_folder",
		Description: "Create an empty folder. Blank names are ignored and an existing folder keeps its notes.",
	}, h.handleCreateFolder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List the notes of a folder, optionally keeping only notes with any of the given flags.",
	}, h.handleListNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "open_folder",
		Description: "Open a folder for editing. Returns its notes after applying the active filters. Drops any unsaved note.",
	}, h.handleOpenFolder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "new_note",
		Description: "Start a new empty note in the open folder. It is stored only after save_note.",
	}, h.handleNewNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "open_note",
		Description: "Start editing a copy of a stored note from the open folder.",
	}, h.handleOpenNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "current_note",
		Description: "Return the note being edited, including unsaved changes.",
	}, h.handleCurrentNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_note",
		Description: "Change the title, content or tags of the note being edited. Omitted fields are kept. Changes are stored only after save_note.",
	}, h.handleEditNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_flag",
		Description: "Flip the important, to-do or favorite flag of the note being edited.",
	}, h.handleToggleFlag)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_checklist_item",
		Description: "Append an unchecked checklist item to the note being edited.",
	}, h.handleAddChecklistItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_checklist_item",
		Description: "Check or uncheck a checklist item of the note being edited.",
	}, h.handleToggleChecklistItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_checklist_item",
		Description: "Replace the text of a checklist item of the note being edited.",
	}, h.handleUpdateChecklistItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_checklist_item",
		Description: "Remove a checklist item from the note being edited.",
	}, h.handleRemoveChecklistItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_note",
		Description: "Store the note being edited in the open folder, replacing the stored version or appending it. Returns once the write is on disk.",
	}, h.handleSaveNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "discard_note",
		Description: "Drop the note being edited without saving.",
	}, h.handleDiscardNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note from the open folder.",
	}, h.handleDeleteNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_filter",
		Description: "Turn a flag filter (important, to-do, favorite) on or off for the open folder's listing.",
	}, h.handleToggleFilter)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reload",
		Description: "Reload all folders from storage, replacing the in-memory state.",
	}, h.handleReload)
}
