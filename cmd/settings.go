package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/capture"
	"github.com/kernel/autopaste/internal/settings"
	"github.com/kernel/autopaste/pkg/util"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the prompt and feature toggles",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var settingsPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage the prompt appended on source pages",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var settingsPromptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the prompt in effect",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPromptShow,
}

var settingsPromptSetCmd = &cobra.Command{
	Use:   "set [prompt...]",
	Short: "Store a custom prompt",
	Example: `  autopaste settings prompt set "Summarise the filing in English"
  autopaste settings prompt set -f prompt.txt`,
	RunE: runSettingsPromptSet,
}

var settingsPromptResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default prompt",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPromptReset,
}

var settingsPromptExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save the prompt in effect to a text file",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPromptExport,
}

var settingsToggleCmd = &cobra.Command{
	Use:       "toggle <debug|stocklink> <on|off>",
	Short:     "Turn a feature on or off",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{settings.ToggleDebug, settings.ToggleStockLink},
	RunE:      runSettingsToggle,
}

func init() {
	settingsPromptSetCmd.Flags().StringP("file", "f", "", "Read the prompt from file")
	settingsPromptExportCmd.Flags().StringP("output", "o", settings.PromptExportName, "File to write")

	settingsPromptCmd.AddCommand(settingsPromptShowCmd)
	settingsPromptCmd.AddCommand(settingsPromptSetCmd)
	settingsPromptCmd.AddCommand(settingsPromptResetCmd)
	settingsPromptCmd.AddCommand(settingsPromptExportCmd)
	settingsCmd.AddCommand(settingsPromptCmd)
	settingsCmd.AddCommand(settingsToggleCmd)
	rootCmd.AddCommand(settingsCmd)
}

// SettingsCmd edits the stored prompt and toggles.
type SettingsCmd struct {
	settings *settings.Settings
	out      io.Writer
}

type SettingsPromptSetInput struct {
	Args  []string
	File  string
	Stdin io.Reader
}

type SettingsToggleInput struct {
	Name  string
	State string
}

func (c SettingsCmd) PromptShow(ctx context.Context) error {
	prompt, err := c.settings.Prompt(ctx)
	if err != nil {
		return err
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, prompt.AdditionalPrompt)
	return err
}

func (c SettingsCmd) PromptSet(ctx context.Context, in SettingsPromptSetInput) error {
	var prompt string
	switch {
	case len(in.Args) > 0:
		prompt = capture.FromArgs(in.Args)
	case in.File != "":
		b, err := os.ReadFile(in.File)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		prompt = string(b)
	case in.Stdin != nil:
		var err error
		if prompt, err = capture.FromReader(in.Stdin); err != nil {
			return err
		}
	}
	prompt = strings.TrimRight(prompt, "\r\n")
	if err := c.settings.SetPrompt(ctx, prompt); err != nil {
		return err
	}
	pterm.Success.Println("Prompt saved")
	return nil
}

func (c SettingsCmd) PromptReset(ctx context.Context) error {
	if err := c.settings.ResetPrompt(ctx); err != nil {
		return err
	}
	pterm.Success.Println("Prompt reset to the default")
	return nil
}

// PromptExport writes the prompt in effect to path, or into path when it is a directory.
func (c SettingsCmd) PromptExport(ctx context.Context, path string) (string, error) {
	prompt, err := c.settings.Prompt(ctx)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = settings.PromptExportName
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, settings.PromptExportName)
	}
	if err := os.WriteFile(path, []byte(prompt.AdditionalPrompt), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	pterm.Success.Printf("Prompt exported to %s\n", path)
	return path, nil
}

func (c SettingsCmd) Toggle(ctx context.Context, in SettingsToggleInput) error {
	var on bool
	switch strings.ToLower(in.State) {
	case "on", "true", "enable", "enabled":
		on = true
	case "off", "false", "disable", "disabled":
	default:
		return fmt.Errorf("invalid state %q: use on or off", in.State)
	}
	if err := c.settings.SetToggle(ctx, in.Name, on); err != nil {
		return err
	}
	pterm.Success.Printf("%s turned %s\n", in.Name, util.OnOff(on))
	return nil
}

func withSettings(cmd *cobra.Command, fn func(SettingsCmd) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(SettingsCmd{settings: a.settings})
}

func runSettingsPromptShow(cmd *cobra.Command, args []string) error {
	return withSettings(cmd, func(c SettingsCmd) error {
		return c.PromptShow(cmd.Context())
	})
}

func runSettingsPromptSet(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	return withSettings(cmd, func(c SettingsCmd) error {
		return c.PromptSet(cmd.Context(), SettingsPromptSetInput{Args: args, File: file, Stdin: pipedStdin()})
	})
}

func runSettingsPromptReset(cmd *cobra.Command, args []string) error {
	return withSettings(cmd, func(c SettingsCmd) error {
		return c.PromptReset(cmd.Context())
	})
}

func runSettingsPromptExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	return withSettings(cmd, func(c SettingsCmd) error {
		_, err := c.PromptExport(cmd.Context(), output)
		return err
	})
}

func runSettingsToggle(cmd *cobra.Command, args []string) error {
	return withSettings(cmd, func(c SettingsCmd) error {
		return c.Toggle(cmd.Context(), SettingsToggleInput{Name: args[0], State: args[1]})
	})
}
