package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"finnie/src/llm"
	"finnie/src/mcp"
	"finnie/src/models"
	"finnie/src/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func runAsk(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := setupComponents(ctx, conf, false)
	if err != nil {
		return err
	}
	defer c.Close()

	question := strings.Join(args, " ")
	session := askSession
	if session == "" {
		session = uuid.NewString()
	}

	res, err := c.Orch.RunTurn(ctx, models.MTurnRequest{
		UserInput: question,
		SessionID: session,
		Provider:  llm.ResolveProvider(conf.LLM, askProvider, askModel, askAPIKey),
		Tickers:   utils.ResolveTickers(question),
	})
	if err != nil {
		return err
	}
	return printAnswer(cmd.OutOrStdout(), res)
}

// printAnswer writes the final text, then one line per disclaimer.
func printAnswer(w io.Writer, res *models.MTurnResult) error {
	pkg := res.Package
	role := "none"
	if pkg.PrimaryRole != nil {
		role = string(*pkg.PrimaryRole)
	}

	fmt.Fprintf(w, "[%s | %s %.2f]\n\n", role, res.Intent, res.Confidence)
	fmt.Fprintln(w, pkg.FinalText)
	if n := len(pkg.Visualizations); n > 0 {
		fmt.Fprintf(w, "\n(%d chart(s) available through the API)\n", n)
	}
	if len(pkg.Disclaimers) > 0 {
		fmt.Fprintln(w)
		for _, d := range pkg.Disclaimers {
			fmt.Fprintf(w, "* %s\n", d)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func runTools(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	// listing needs no collaborators
	conf.MarketData.Enabled = false
	conf.Knowledge.Enabled = false

	c, err := setupComponents(context.Background(), conf, false)
	if err != nil {
		return err
	}
	defer c.Close()

	return printTools(cmd.OutOrStdout(), c.Tools)
}

func printTools(w io.Writer, tools *mcp.ToolRegistry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, t := range tools.ListTools() {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Description)
	}
	return tw.Flush()
}

// -----------------------------------------------------------------------------

func runModels(cmd *cobra.Command, args []string) error {
	return printModels(cmd.OutOrStdout())
}

func printModels(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tNAME")
	for _, p := range llm.Providers {
		for i, m := range llm.SupportedModels[p] {
			name := m.DisplayName
			if i == 0 {
				name += " (default)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p, m.ID, name)
		}
	}
	return tw.Flush()
}
