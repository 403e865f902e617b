package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kernel/autopaste/internal/config"
)

// MinChromeVersion is the oldest Chrome the page scripts are tested against.
const MinChromeVersion = "92.0.0"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the settings store and the browser connection",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// BrowserVersioner reports the connected browser's version.
type BrowserVersioner interface {
	Version(ctx context.Context) (product, version string, err error)
}

type doctorCheck struct {
	Name   string
	OK     bool
	Detail string
}

// DoctorCmd runs the environment checks.
type DoctorCmd struct {
	cfg     config.Config
	browser BrowserVersioner
	// connectErr is set when no browser could be reached.
	connectErr error
}

// Check prints one row per check and fails if any check failed.
func (c DoctorCmd) Check(ctx context.Context) error {
	checks := []doctorCheck{
		{Name: "Settings store", OK: true, Detail: c.cfg.StorePath},
	}
	checks = append(checks, c.checkBrowser(ctx)...)

	rows := pterm.TableData{{"Check", "Status", "Detail"}}
	failed := 0
	for _, ch := range checks {
		status := pterm.FgGreen.Sprint("ok")
		if !ch.OK {
			status = pterm.FgRed.Sprint("failed")
			failed++
		}
		rows = append(rows, []string{ch.Name, status, ch.Detail})
	}
	PrintTableNoPad(rows, true)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	pterm.Success.Println("Everything looks good")
	return nil
}

func (c DoctorCmd) checkBrowser(ctx context.Context) []doctorCheck {
	mode := string(c.cfg.Browser.Mode)
	if c.connectErr != nil {
		return []doctorCheck{{Name: "Browser", Detail: fmt.Sprintf("%s: %v", mode, c.connectErr)}}
	}
	product, version, err := c.browser.Version(ctx)
	if err != nil {
		return []doctorCheck{{Name: "Browser", Detail: err.Error()}}
	}
	checks := []doctorCheck{{Name: "Browser", OK: true, Detail: fmt.Sprintf("%s (%s)", product, mode)}}

	ok, detail := chromeVersionOK(version)
	return append(checks, doctorCheck{Name: "Chrome version", OK: ok, Detail: detail})
}

// chromeVersionOK compares a dotted Chrome version against MinChromeVersion.
// Chrome uses four components; only the first three take part.
func chromeVersionOK(version string) (bool, string) {
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v, err := semver.NewVersion(strings.Join(parts, "."))
	if err != nil {
		return false, fmt.Sprintf("cannot parse version %q", version)
	}
	constraint, err := semver.NewConstraint(">= " + MinChromeVersion)
	if err != nil {
		return false, err.Error()
	}
	if !constraint.Check(v) {
		return false, fmt.Sprintf("%s is older than %s", version, MinChromeVersion)
	}
	return true, version
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c := DoctorCmd{cfg: a.cfg}
	session, err := a.connect(ctx)
	if err != nil {
		c.connectErr = err
	} else {
		defer session.Close(context.Background())
		c.browser = session
	}
	return c.Check(ctx)
}
