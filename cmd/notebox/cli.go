package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/taigrr/notebox/internal/export"
	"github.com/taigrr/notebox/internal/types"
)

// withApp opens the app for a one-shot command and closes it afterwards,
// waiting for pending writes.
func withApp(cmd *cobra.Command, fn func(a *app) error) (err error) {
	a, err := openApp(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), a.config.Queue.WriteTimeout)
		defer cancel()
		if closeErr := a.Close(ctx); err == nil {
			err = closeErr
		}
	}()
	return fn(a)
}

func foldersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List folders with their note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				out := cmd.OutOrStdout()
				for _, f := range a.store.Folders() {
					fmt.Fprintf(out, "%s\t%d\n", f.Name, f.Count)
				}
				return nil
			})
		},
	}
}

func notesCommand() *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "notes FOLDER",
		Short: "List the notes of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := types.ParseFlags(filters)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				folder := args[0]
				if !a.store.HasFolder(folder) {
					return fmt.Errorf("folder %q not found", folder)
				}
				out := cmd.OutOrStdout()
				for _, n := range a.store.FilterNotes(folder, types.NewFlagSet(flags...)) {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
						n.ID, n.Date, n.Title, strings.Join(n.Flags.Names(), ","))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil,
		"only notes with any of these flags (important, to-do, favorite)")
	return cmd
}

func mkdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir NAME",
		Short: "Create an empty folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				created, err := a.store.CreateFolder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintf(cmd.OutOrStdout(), "folder %q already exists\n", args[0])
				}
				return nil
			})
		},
	}
}

func rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm FOLDER ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				deleted, err := a.store.DeleteNote(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("note %q not found in %q", args[1], args[0])
				}
				return nil
			})
		},
	}
}

func exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export FOLDER DIR",
		Short: "Write every note of a folder as a Markdown file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				notes, ok := a.store.Notes(args[0])
				if !ok {
					return fmt.Errorf("folder %q not found", args[0])
				}
				paths, err := a.exporter.WriteFolder(args[1], notes)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	}
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FOLDER DIR",
		Short: "Save every Markdown note in a directory into a folder",
		Long: `import reads the Markdown files written by export and saves each one
into FOLDER, creating it if needed. A note keeps its id and replaces the
stored note with the same id; files without an id get a new one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				notes, err := a.exporter.ReadFolder(args[1])
				if err != nil {
					return err
				}
				folder := args[0]
				for _, n := range notes {
					if n.ID == "" {
						fresh := a.store.NewNote(folder)
						n.ID = fresh.ID
						if n.Date == "" {
							n.Date = fresh.Date
						}
					}
					if err := a.store.SaveNote(cmd.Context(), folder, n); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d notes into %q\n", len(notes), folder)
				return nil
			})
		},
	}
}

func showCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show FOLDER ID",
		Short: "Print a note as Markdown",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				note, ok := a.store.Note(args[0], args[1])
				if !ok {
					return fmt.Errorf("note %q not found in %q", args[1], args[0])
				}
				if raw {
					text, err := a.exporter.Render(note)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), text)
					return nil
				}

				r, err := glamour.NewTermRenderer(
					glamour.WithAutoStyle(),
					glamour.WithWordWrap(80),
				)
				if err != nil {
					return fmt.Errorf("failed to create renderer: %w", err)
				}
				out, err := r.Render(noteMarkdown(note))
				if err != nil {
					return fmt.Errorf("failed to render note: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the exported Markdown with its frontmatter")
	return cmd
}

// noteMarkdown lays a note out for reading in a terminal.
func noteMarkdown(n types.Note) string {
	var b strings.Builder
	title := n.Title
	if title == "" {
		title = "Untitled"
	}
	b.WriteString("# " + title + "\n\n")

	meta := []string{n.Date}
	meta = append(meta, n.Flags.Names()...)
	for _, tag := range n.Tags {
		meta = append(meta, "#"+tag)
	}
	b.WriteString("_" + strings.Join(meta, " · ") + "_\n\n")
	b.WriteString(export.Body(n))
	b.WriteString("\n")
	return b.String()
}
