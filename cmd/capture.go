package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/browser"
	"github.com/kernel/autopaste/internal/capture"
	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/handoff"
	"github.com/kernel/autopaste/pkg/util"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Send the active tab's selection to Gemini or ChatGPT",
	Long: `Capture the selection of the active tab, or the value of the element last
right-clicked when nothing is selected, and hand it to a destination. This is
the command line counterpart of the page's Alt+Shift+G / Alt+Shift+C keys.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringP("target", "t", destination.Gemini.Name, "Destination: "+strings.Join(destination.Names(), " or "))
	rootCmd.AddCommand(captureCmd)
}

// CaptureCmd sends what is selected on a page.
type CaptureCmd struct {
	channel *handoff.Channel
}

type CaptureInput struct {
	Target string
}

func (c CaptureCmd) Capture(ctx context.Context, doc dom.Document, in CaptureInput) error {
	variant, err := destination.ByName(in.Target)
	if err != nil {
		return err
	}
	selection, err := doc.Selection(ctx)
	if err != nil {
		return err
	}
	text, err := capture.FromContextMenu(ctx, doc, selection)
	if err != nil {
		return err
	}

	err = c.channel.Handoff(ctx, variant, text)
	if errors.Is(err, handoff.ErrNoText) {
		pterm.Warning.Println("Nothing selected on the active tab")
		return nil
	}
	if err != nil {
		return err
	}
	pterm.Success.Printf("Sent %d characters to %s\n", util.CountChars(text), variant.Name)
	return nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target")

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

	tab, err := browser.ActiveTab(ctx, session.Browser)
	if err != nil {
		return err
	}
	c := CaptureCmd{channel: &handoff.Channel{
		Store:     a.settings,
		Navigator: browser.TabNavigator{Browser: session.Browser},
		Log:       a.log,
	}}
	return c.Capture(ctx, tab, CaptureInput{Target: target})
}
