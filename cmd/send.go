package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/browser"
	"github.com/kernel/autopaste/internal/capture"
	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/handoff"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/paste"
	"github.com/kernel/autopaste/pkg/util"
)

var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Stage text and open Gemini or ChatGPT",
	Long: `Stage text for a destination and open it.

The text can be provided as:
- Command line arguments
- A file (using --file)
- The system clipboard (using --clipboard)
- Piped stdin

The destination page pastes the text when it loads. That happens in a running
'autopaste watch', or in this process with --wait.`,
	Example: `  # Send arguments to Gemini
  autopaste send "Explain Q3 results"

  # Send a file to ChatGPT and paste it without a running watch
  autopaste send --target chatgpt -f notes.txt --wait

  # Send the clipboard
  autopaste send --clipboard`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringP("target", "t", destination.Gemini.Name, "Destination: "+strings.Join(destination.Names(), " or "))
	sendCmd.Flags().StringP("file", "f", "", "Read text from file")
	sendCmd.Flags().Bool("clipboard", false, "Read text from the system clipboard")
	sendCmd.Flags().Bool("system-browser", false, "Open the destination in the default browser instead of the controlled one")
	sendCmd.Flags().Bool("wait", false, "Paste in the opened tab from this process")
	sendCmd.MarkFlagsMutuallyExclusive("system-browser", "wait")
	rootCmd.AddCommand(sendCmd)
}

// SendCmd stages text and opens its destination.
type SendCmd struct {
	channel   *handoff.Channel
	stdin     io.Reader
	clipboard func() (string, error)
}

type SendInput struct {
	Args      []string
	File      string
	Clipboard bool
	Target    string
}

func (c SendCmd) Send(ctx context.Context, in SendInput) error {
	variant, err := destination.ByName(in.Target)
	if err != nil {
		return err
	}
	text, err := c.text(in)
	if err != nil {
		return err
	}

	err = c.channel.Handoff(ctx, variant, text)
	if errors.Is(err, handoff.ErrNoText) {
		return fmt.Errorf("no text provided. Provide text as arguments, via stdin, with --file or with --clipboard")
	}
	if err != nil {
		return err
	}
	pterm.Success.Printf("Sent %d characters to %s\n", util.CountChars(text), variant.Name)
	return nil
}

func (c SendCmd) text(in SendInput) (string, error) {
	switch {
	case len(in.Args) > 0:
		return capture.FromArgs(in.Args), nil
	case in.File != "":
		b, err := os.ReadFile(in.File)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(b), nil
	case in.Clipboard:
		read := c.clipboard
		if read == nil {
			read = capture.FromClipboard
		}
		return read()
	case c.stdin != nil:
		return capture.FromReader(c.stdin)
	}
	return "", nil
}

// pipedStdin returns stdin when it is not a terminal.
func pipedStdin() io.Reader {
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return nil
	}
	return os.Stdin
}

func runSend(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target")
	file, _ := cmd.Flags().GetString("file")
	clip, _ := cmd.Flags().GetBool("clipboard")
	system, _ := cmd.Flags().GetBool("system-browser")
	wait, _ := cmd.Flags().GetBool("wait")

	ctx := cmd.Context()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	channel := &handoff.Channel{Store: a.settings, Log: a.log}
	var opener *tabOpener
	if system {
		channel.Navigator = browser.SystemNavigator{}
	} else {
		session, err := a.connect(ctx)
		if err != nil {
			return err
		}
		// the opened tab outlives this process so the reply stays on screen
		defer session.Detach()

		if wait {
			opener = &tabOpener{open: func(ctx context.Context, url string) (dom.Document, error) {
				tab, err := browser.OpenTab(ctx, session.Browser, url)
				if err != nil {
					return nil, err
				}
				return tab, nil
			}}
			channel.Navigator = opener
		} else {
			channel.Navigator = browser.TabNavigator{Browser: session.Browser}
		}
	}

	c := SendCmd{channel: channel, stdin: pipedStdin()}
	if err := c.Send(ctx, SendInput{Args: args, File: file, Clipboard: clip, Target: target}); err != nil {
		return err
	}
	if opener == nil || opener.tab == nil {
		return nil
	}
	consumer := &paste.Consumer{Settings: a.settings, Clock: locator.RealClock{}, Log: a.log}
	return pasteOpened(ctx, consumer, opener.tab)
}

// tabOpener opens the destination and keeps the tab so the paste can run
// after the handoff has returned.
type tabOpener struct {
	open func(ctx context.Context, url string) (dom.Document, error)
	tab  dom.Document
}

func (o *tabOpener) Open(ctx context.Context, url string) error {
	tab, err := o.open(ctx, url)
	if err != nil {
		return err
	}
	o.tab = tab
	return nil
}

// pasteOpened consumes the staged record in tab.
func pasteOpened(ctx context.Context, consumer *paste.Consumer, tab dom.Document) error {
	pageURL, err := tab.URL(ctx)
	if err != nil {
		return fmt.Errorf("read opened tab: %w", err)
	}
	rep, err := consumer.Consume(ctx, paste.NewPageLoad(pageURL), tab)
	if err != nil {
		return fmt.Errorf("paste into %s: %w", pageURL, err)
	}
	printReport(rep)
	return nil
}

// printReport describes a consumption attempt to the user.
func printReport(rep paste.Report) {
	switch rep.Outcome {
	case paste.OutcomePasted:
		msg := fmt.Sprintf("Pasted into %s (%s)", rep.Variant, rep.Insertion.Path)
		if rep.Submit != "" {
			msg += fmt.Sprintf(", submit %s", rep.Submit)
		}
		pterm.Success.Println(msg)
		if rep.Stale {
			pterm.Warning.Println("The staged text could not be cleared; run 'autopaste clear'")
		}
	case paste.OutcomeEditorNotFound:
		pterm.Warning.Printf("No editor found on %s after %d attempts; the text stays staged\n", rep.Variant, rep.Attempts)
	case paste.OutcomePromptOnly:
		pterm.Info.Println("Staged text was only the prompt; discarded")
	case paste.OutcomeNoPending:
		pterm.Info.Println("Nothing staged")
	case paste.OutcomeManualOpen:
		pterm.Info.Println("Auto paste is not enabled for the staged text")
	case paste.OutcomeDuplicate:
		pterm.Info.Println("Already handled for this page load")
	case paste.OutcomeNotDestination:
		pterm.Info.Println("Not a destination page")
	}
}
