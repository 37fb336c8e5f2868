package logging

// Log field names shared across packages so entries can be queried
// consistently.
const (
	FieldFolder   = "folder"
	FieldNoteID   = "noteId"
	FieldKey      = "key"
	FieldBackend  = "backend"
	FieldPath     = "path"
	FieldTool     = "tool"
	FieldCount    = "count"
	FieldSize     = "size"
	FieldDuration = "duration"
)
