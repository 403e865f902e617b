package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/settings"
	"github.com/kernel/autopaste/pkg/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the staged text, the prompt and the feature toggles",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(statusCmd)
}

type statusResponse struct {
	Store            string `json:"store"`
	PendingText      string `json:"pendingText"`
	AutoPasteEnabled bool   `json:"autoPasteEnabled"`
	AdditionalPrompt string `json:"additionalPrompt"`
	DefaultPrompt    bool   `json:"defaultPrompt"`
	DebugEnabled     bool   `json:"debugEnabled"`
	StockLinkEnabled bool   `json:"stockLinkEnabled"`
}

// StatusCmd reports the settings store.
type StatusCmd struct {
	settings  *settings.Settings
	storePath string
}

type StatusInput struct {
	Output string
}

func (c StatusCmd) Status(ctx context.Context, in StatusInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	rec, err := c.settings.Handoff(ctx)
	if err != nil {
		return err
	}
	prompt, err := c.settings.Prompt(ctx)
	if err != nil {
		return err
	}
	toggles, err := c.settings.Toggles(ctx)
	if err != nil {
		return err
	}
	status := statusResponse{
		Store:            c.storePath,
		PendingText:      rec.PendingText,
		AutoPasteEnabled: rec.AutoPasteEnabled,
		AdditionalPrompt: prompt.AdditionalPrompt,
		DefaultPrompt:    prompt.Default,
		DebugEnabled:     toggles.DebugEnabled,
		StockLinkEnabled: toggles.StockLinkEnabled,
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(status)
	}

	printStatus(status)
	return nil
}

func printStatus(s statusResponse) {
	pending := "-"
	if s.PendingText != "" {
		pending = fmt.Sprintf("%d characters", util.CountChars(s.PendingText))
	}
	promptSource := "custom"
	if s.DefaultPrompt {
		promptSource = "default"
	}
	PrintTableNoPad(pterm.TableData{
		{"Property", "Value"},
		{"Store", util.OrDash(s.Store)},
		{"Pending Text", pending},
		{"Auto Paste", util.OnOff(s.AutoPasteEnabled)},
		{"Prompt", promptSource},
		{"Debug", util.OnOff(s.DebugEnabled)},
		{"Stock Links", util.OnOff(s.StockLinkEnabled)},
	}, true)

	if s.PendingText != "" {
		pterm.Println()
		pterm.Println(previewBox("Pending", s.PendingText))
	}
	pterm.Println()
	pterm.Println(previewBox("Prompt", s.AdditionalPrompt))
}

var previewStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7C3AED")).
	Padding(0, 1).
	Width(72)

var previewTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))

const previewLines = 8

// previewBox renders the first lines of text in a bordered box.
func previewBox(title, text string) string {
	return previewStyle.Render(previewTitle.Render(title) + "\n" + util.HeadLines(text, previewLines))
}

func runStatus(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c := StatusCmd{settings: a.settings, storePath: a.cfg.StorePath}
	return c.Status(cmd.Context(), StatusInput{Output: output})
}
