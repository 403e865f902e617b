package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/browser"
	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/paste"
)

var pasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Paste staged text into an already open destination tab",
	Long: `Run the destination side once against every Gemini or ChatGPT tab that is
already open. The first tab that takes the text consumes it; the rest see
nothing pending.`,
	Args: cobra.NoArgs,
	RunE: runPaste,
}

func init() {
	rootCmd.AddCommand(pasteCmd)
}

// PasteCmd consumes a staged record in existing tabs.
type PasteCmd struct {
	consumer *paste.Consumer
}

// Paste returns the reports of the destination tabs it tried.
func (c PasteCmd) Paste(ctx context.Context, tabs []dom.Document) ([]paste.Report, error) {
	var reports []paste.Report
	for _, tab := range tabs {
		pageURL, err := tab.URL(ctx)
		if err != nil {
			continue
		}
		rep, err := c.consumer.Consume(ctx, paste.NewPageLoad(pageURL), tab)
		if err != nil {
			return reports, err
		}
		if rep.Outcome == paste.OutcomeNotDestination {
			continue
		}
		reports = append(reports, rep)
		printReport(rep)
		if rep.Outcome == paste.OutcomePasted || rep.Outcome == paste.OutcomePromptOnly {
			break
		}
	}
	if len(reports) == 0 {
		pterm.Warning.Println("No Gemini or ChatGPT tab is open")
	}
	return reports, nil
}

func runPaste(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer session.Detach()

	tabs, err := browser.Tabs(ctx, session.Browser)
	if err != nil {
		return err
	}
	docs := make([]dom.Document, 0, len(tabs))
	for _, t := range tabs {
		docs = append(docs, t)
	}

	c := PasteCmd{consumer: &paste.Consumer{Settings: a.settings, Clock: locator.RealClock{}, Log: a.log}}
	_, err = c.Paste(ctx, docs)
	return err
}
