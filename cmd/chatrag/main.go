// Package main provides the chatrag CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/chatrag/cli"
)

var (
	// Global flags
	configPath string
	provider   string
	maxIter    int
	format     string
	verbose    bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "chatrag",
		Short: "Answer questions about a chat archive with cited sources",
		Long: `A CLI tool that answers questions about a chat-message archive.

A reasoning engine searches the archive with retrieval tools, reads the
numbered results and answers with [Source N] citations. Progress is
streamed as JSON-lines events (thinking, tool_call, tool_result, content,
sources, done, error).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (default chatrag.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, anthropic, openai, deepseek)")
	rootCmd.PersistentFlags().IntVarP(&maxIter, "max-iter", "m", 0, "Maximum reasoning iterations (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", cli.FormatJSONL, "Output format (jsonl, text)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(toolsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		ConfigPath: configPath,
		Provider:   provider,
		MaxIter:    maxIter,
		Format:     format,
		Verbose:    verbose,
	}
}

func askCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question",
		Long: `Answer one question against the archive and stream the session events.

With --session, earlier turns of that conversation prime the question and
the new question and answer are appended to the session database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			opts.SessionID = sessionID
			opts.DBPath = dbPath
			return cli.Ask(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for conversation storage")

	return cmd
}

func chatCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question session",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			opts.SessionID = sessionID
			opts.DBPath = dbPath
			if !cmd.Flags().Changed("format") {
				opts.Format = cli.FormatText
			}
			return cli.Chat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to resume (new one generated if empty)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for conversation storage")

	return cmd
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available retrieval tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(cmd.OutOrStdout(), verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}
