package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/settings"
	"github.com/kernel/autopaste/pkg/util"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the staged text",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

// ClearCmd removes the handoff record.
type ClearCmd struct {
	settings *settings.Settings
}

func (c ClearCmd) Clear(ctx context.Context) error {
	rec, err := c.settings.Handoff(ctx)
	if err != nil {
		return err
	}
	if err := c.settings.ClearHandoff(ctx); err != nil {
		return err
	}
	if err := c.settings.VerifyCleared(ctx); err != nil {
		return err
	}
	if rec.Empty() {
		pterm.Info.Println("Nothing was staged")
		return nil
	}
	pterm.Success.Printf("Discarded %d staged characters\n", util.CountChars(rec.PendingText))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return ClearCmd{settings: a.settings}.Clear(cmd.Context())
}
