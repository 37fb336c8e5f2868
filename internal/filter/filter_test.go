package filter

import (
	"testing"

	"github.com/taigrr/notebox/internal/types"
)

func sampleNotes() []types.Note {
	return []types.Note{
		{ID: "1", Title: "plain"},
		{ID: "2", Title: "important", Flags: types.NewFlagSet(types.FlagImportant)},
		{ID: "3", Title: "todo", Flags: types.NewFlagSet(types.FlagTodo)},
		{ID: "4", Title: "favorite", Flags: types.NewFlagSet(types.FlagFavorite)},
		{ID: "5", Title: "important todo", Flags: types.NewFlagSet(types.FlagImportant, types.FlagTodo)},
	}
}

func ids(notes []types.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name  string
		flags []types.Flag
		want  []string
	}{
		{name: "no filters keeps all in order", want: []string{"1", "2", "3", "4", "5"}},
		{name: "important", flags: []types.Flag{types.FlagImportant}, want: []string{"2", "5"}},
		{name: "to-do", flags: []types.Flag{types.FlagTodo}, want: []string{"3", "5"}},
		{name: "favorite", flags: []types.Flag{types.FlagFavorite}, want: []string{"4"}},
		{name: "union of important and favorite", flags: []types.Flag{types.FlagImportant, types.FlagFavorite}, want: []string{"2", "4", "5"}},
		{name: "all flags", flags: types.AllFlags, want: []string{"2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(New(tt.flags...).Apply(sampleNotes()))
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Apply() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestFilter_ApplyReturnsNewSlice(t *testing.T) {
	notes := sampleNotes()
	got := New().Apply(notes)
	got[0].Title = "changed"
	if notes[0].Title != "plain" {
		t.Error("Apply() result aliases the input slice")
	}

	empty := New(types.FlagFavorite).Apply(nil)
	if empty == nil || len(empty) != 0 {
		t.Errorf("Apply(nil) = %#v, want empty non-nil slice", empty)
	}
}

func TestParse(t *testing.T) {
	f, err := Parse([]string{"Important", "favorites"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := types.NewFlagSet(types.FlagImportant, types.FlagFavorite)
	if f.Active() != want {
		t.Errorf("Active() = %v, want %v", f.Active().Names(), want.Names())
	}

	if _, err := Parse([]string{"urgent"}); err == nil {
		t.Error("Parse(urgent) error = nil, want error")
	}
}
