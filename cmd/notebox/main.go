// Package main implements the notebox CLI and its MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var configPath string

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the notebox command tree.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notebox",
		Short: "Folders of notes with an MCP interface",
		Long: `notebox keeps folders of notes with titles, content, checklists,
tags and important, to-do and favorite flags. All notes are stored
as one JSON document in local storage.

Without a subcommand notebox runs a Model Context Protocol (MCP)
server on stdio so any MCP-compatible harness can browse, edit and
filter notes.`,
		Example: `notebox
notebox folders
notebox notes ideas --filter important`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runServer,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ~/.config/notebox/config.yaml)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the MCP server on stdio (default)",
			Args:  cobra.NoArgs,
			RunE:  runServer,
		},
		foldersCommand(),
		notesCommand(),
		showCommand(),
		mkdirCommand(),
		rmCommand(),
		exportCommand(),
		importCommand(),
	)
	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}

	w, err := a.newWatcher()
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Queue.WriteTimeout)
		defer cancel()
		return errors.Join(err, a.Close(closeCtx))
	}

	server := newServer(a)
	a.logger.Info("serving MCP on stdio")

	runCtx, stop := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// The watcher stops with the server.
		defer stop()
		return server.Run(gctx, &mcp.StdioTransport{})
	})
	if w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}
	runErr := g.Wait()
	stop()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Queue.WriteTimeout)
	defer cancel()
	closeErr := a.Close(closeCtx)

	if runErr != nil {
		return fmt.Errorf("error running server: %w", runErr)
	}
	return closeErr
}

// newServer creates the MCP server with every tool and resource registered.
func newServer(a *app) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "notebox",
		Version: version,
	}, nil)

	h := &handlers{app: a}
	registerTools(server, h)
	registerResources(server, h)
	return server
}
