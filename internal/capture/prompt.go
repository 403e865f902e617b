package capture

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/logging"
	"github.com/kernel/autopaste/internal/paste"
	"github.com/kernel/autopaste/internal/settings"
)

// PromptPageURL is the source page whose textarea gets the prompt appended.
const PromptPageURL = "https://gd.myftp.org/lb/gpt.asp"

var (
	staleFragments = []*regexp.Regexp{
		regexp.MustCompile(`['"]?比較最近兩季[\s\S]*?表格結論\.?`),
		regexp.MustCompile(`說明近10天[\s\S]*?原因[。.]`),
	}
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
)

// MergePrompt strips earlier copies of prompt (and the legacy built-in
// fragments) from content and appends prompt after a blank line.
func MergePrompt(content, prompt string) string {
	clean := content
	if p := strings.TrimSpace(prompt); p != "" {
		clean = strings.ReplaceAll(clean, p, "")
	}
	for _, re := range staleFragments {
		clean = re.ReplaceAllString(clean, "")
	}
	clean = strings.TrimSpace(extraBlankLines.ReplaceAllString(clean, "\n\n"))
	return clean + "\n\n" + prompt
}

// PromptAppender appends the stored prompt to the source page's first
// textarea, once per field per page load.
type PromptAppender struct {
	Settings *settings.Settings
	Log      *logging.Logger
}

// Append reports whether the field was updated.
func (a *PromptAppender) Append(ctx context.Context, load *paste.PageLoad, doc dom.Document) (bool, error) {
	log := a.Log
	if log == nil {
		log = logging.Nop()
	}
	pageURL, err := doc.URL(ctx)
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(pageURL, PromptPageURL) {
		return false, nil
	}
	field, ok, err := doc.Query(ctx, "textarea")
	if err != nil || !ok {
		return false, err
	}
	id, err := field.ID(ctx)
	if err != nil {
		return false, err
	}
	if load.Seen(id) {
		return false, nil
	}

	prompt, err := a.Settings.Prompt(ctx)
	if err != nil {
		return false, fmt.Errorf("read prompt: %w", err)
	}
	content, err := field.Value(ctx)
	if err != nil {
		return false, fmt.Errorf("read field: %w", err)
	}
	merged := MergePrompt(content, prompt.AdditionalPrompt)

	caps, err := field.Capabilities(ctx)
	if err != nil {
		return false, err
	}
	if caps.HasValue {
		err = field.SetValue(ctx, merged)
	} else {
		err = field.SetText(ctx, merged)
	}
	if err != nil {
		return false, fmt.Errorf("write field: %w", err)
	}
	if err := field.Notify(ctx, "input", "change"); err != nil {
		return false, err
	}
	if err := field.Focus(ctx); err != nil {
		return false, err
	}
	log.Debug("prompt appended", "chars", len([]rune(merged)), "default", prompt.Default)
	return true, nil
}
