package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	// ask flags
	askProvider string
	askModel    string
	askAPIKey   string
	askSession  string
)

var rootCmd = &cobra.Command{
	Use:   "finnie",
	Short: "Finnie - multi-agent financial education assistant",
	Long: `Finnie answers finance questions through a fixed team of responders:
a teacher, an analyst, a portfolio advisor, a news scout, a projection
engine and a quant, followed by compliance disclaimers and synthesis.

Every answer is educational. Finnie never gives personalized advice.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, the websocket chat and the gRPC service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and print the result",
	Long: `Runs a single turn through the full pipeline and prints the final text
followed by its disclaimers.

Example:
  finnie ask "What is a P/E ratio?"
  finnie ask --provider anthropic "How is AAPL doing?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the supported models per provider",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

// -----------------------------------------------------------------------------

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/default.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	askCmd.Flags().StringVar(&askProvider, "provider", "", "llm provider (openai, anthropic, google)")
	askCmd.Flags().StringVar(&askModel, "model", "", "llm model id")
	askCmd.Flags().StringVar(&askAPIKey, "api-key", "", "llm api key (defaults to the configured key)")
	askCmd.Flags().StringVar(&askSession, "session", "", "session id")

	rootCmd.AddCommand(serveCmd, askCmd, toolsCmd, modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
