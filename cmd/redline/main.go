// Package main provides the redline CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/redline/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	dbPath   string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "redline",
		Short: "AI-assisted document editing with tracked, reviewable changes",
		Long: `A CLI tool for editing documents with an LLM agent.

Every change the agent proposes is tracked: you see a diff preview and
accept or reject the whole batch before anything is committed.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "anthropic", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", ".redline/redline.db", "Database path for document storage")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		DBPath:   dbPath,
		Verbose:  verbose,
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [document-id] [file]",
		Short: "Import a file as a document baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ImportDocument(context.Background(), args[0], args[1], options())
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [document-id] [file]",
		Short: "Export a document's current baseline to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ExportDocument(context.Background(), args[0], args[1], options())
		},
	}
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [document-id]",
		Short: "Start an interactive editing session for a document",
		Long: `Start an interactive editing session for a document.

Type editing requests in plain language. Proposed changes appear as a
diff preview; review them with :accept, :reject, or :regen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Review(context.Background(), args[0], options())
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available editing tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}
