package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/browser"
	"github.com/kernel/autopaste/internal/handoff"
	"github.com/kernel/autopaste/internal/inject"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the page side of autopaste in every tab",
	Long: `Attach to every tab of the controlled browser and keep running until
interrupted. In each tab, on every page load:

- Gemini and ChatGPT pages paste staged text and Gemini submits it
- Gemini and ChatGPT replies get 4-digit stock numbers turned into links
- The prompt is appended to the source page's textarea
- Send icons are added next to known buttons on source pages
- Alt+Shift+G and Alt+Shift+C send the selection to Gemini or ChatGPT`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("poll", time.Second, "How often to look for new tabs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	poll, _ := cmd.Flags().GetDuration("poll")

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
	defer session.Close(context.Background())

	svc := watch.New(watch.Options{
		Settings: a.settings,
		Buttons: &inject.Handler{
			Channel: &handoff.Channel{
				Store:     a.settings,
				Navigator: browser.TabNavigator{Browser: session.Browser},
				Log:       a.log,
			},
			Log: a.log,
		},
		Clock: locator.RealClock{},
		Log:   a.log,
	})
	w := &browser.Watcher{
		Browser: session.Browser,
		Handler: svc,
		Scripts: []string{inject.Script},
		Poll:    poll,
		Log:     a.log,
	}

	pterm.Info.Printf("Watching %s browser, press Ctrl+C to stop\n", session.Mode)
	err = w.Run(ctx)
	svc.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	pterm.Info.Println("Stopped")
	return nil
}
