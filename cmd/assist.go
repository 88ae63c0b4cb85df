package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

const assistModel = "gemini-2.5-pro"

const assistInstruction = `You are an assistant for a holdings reconciliation tool.
The user compares the securities recorded in their personal-finance ledger
against the positions actually held at their brokerage. You will be given the
reconciliation report. Help the user understand the discrepancies and decide
which transactions to book. Be concise.`

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct {
	ledgerFile string
}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "Start an interactive session with the AI assistant." }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `assist [-l <export.csv>] [question...]:
  Start an interactive session with the AI assistant. With -l, the
  reconciliation report is computed first and given to the assistant as
  context.
`
}

// SetFlags sets the flags for the command.
func (c *AssistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Path to the ledger export file")
}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assistInstruction}},
		},
	}
	chat, err := client.Chats.Create(ctx, assistModel, config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting chat:", err)
		return subcommands.ExitFailure
	}

	if c.ledgerFile != "" {
		report, err := c.report(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing reconciliation report: %v\n", err)
			return subcommands.ExitFailure
		}
		if _, err := chat.Send(ctx, &genai.Part{Text: "Here is the current reconciliation report:\n\n" + report}); err != nil {
			fmt.Fprintln(os.Stderr, "Error sending report to the assistant:", err)
			return subcommands.ExitFailure
		}
	}

	if err := c.repl(ctx, chat, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// report runs the comparison and renders it as markdown for the assistant.
func (c *AssistCmd) report(ctx context.Context) (string, error) {
	brokerage, err := loadBrokerage(ctx, false)
	if err != nil {
		return "", err
	}
	rows, err := reconcile.ReadLedgerExportFile(c.ledgerFile)
	if err != nil {
		return "", err
	}
	ledger, err := reconcile.NormalizeLedger(rows, "USD")
	if err != nil {
		return "", err
	}
	reconcile.ResolveClasses(ledger, brokerage)
	rec := reconcile.Reconcile(ledger, brokerage)
	return renderer.ReconciliationMarkdown(rec), nil
}

// repl runs the interactive loop. Type 'bye' (or Ctrl+D) to exit.
func (c *AssistCmd) repl(ctx context.Context, chat *genai.Chat, prompts ...string) error {
	fmt.Println("Welcome to pcr assist. Type 'bye' to exit.")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("assist> ")
		var input string

		// Flush prompts from the list and then ask the user.
		if len(prompts) > 0 && prompts[0] != "" {
			input, prompts = prompts[0], prompts[1:]
			fmt.Println(input)
		} else {
			prompts = nil
			var err error
			input, err = reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "bye" {
			return nil
		}

		resp, err := chat.Send(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no response from the assistant")
		}
		printMarkdown(resp.Candidates[0].Content.Parts[0].Text)
	}
}
