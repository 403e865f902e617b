// Package inject adds send-to-assistant icons next to known buttons on source
// pages and handles their clicks.
package inject

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/kernel/autopaste/internal/capture"
	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/handoff"
	"github.com/kernel/autopaste/internal/logging"
)

// Script installs the icons. It re-runs on load, on DOM mutation and every
// 2s, and never puts two icons next to the same button.
//
//go:embed scripts/inject.js
var Script string

// Alert texts shown on the source page.
const (
	AlertEmptyField = "AutoPaste: textarea 內容為空"
	AlertNoContent  = "AutoPaste: 找不到要在這裡傳送的內容 (找不到 textarea 或選取文字)"
	AlertNoTextarea = "AutoPaste: 找不到 textarea"
)

type buttonConfig struct {
	lookup  capture.ButtonLookup
	noField string
}

var buttons = map[string]buttonConfig{
	destination.Gemini.Name:  {lookup: capture.GeminiLookup, noField: AlertNoContent},
	destination.ChatGPT.Name: {lookup: capture.ChatGPTLookup, noField: AlertNoTextarea},
}

// Handler turns icon clicks and context-menu requests into handoffs.
type Handler struct {
	Channel *handoff.Channel
	Log     *logging.Logger
}

func (h *Handler) log() *logging.Logger {
	if h.Log == nil {
		return logging.Nop()
	}
	return h.Log
}

// Button handles a click on the icon next to button. Missing or empty
// fields are reported to the user with a page alert.
func (h *Handler) Button(ctx context.Context, doc dom.Document, button dom.Element, variant destination.Variant) error {
	cfg, ok := buttons[variant.Name]
	if !ok {
		return fmt.Errorf("no button for target %s", variant.Name)
	}
	text, err := capture.FromButton(ctx, doc, button, cfg.lookup)
	switch {
	case errors.Is(err, capture.ErrEmptyField):
		return doc.Alert(ctx, AlertEmptyField)
	case errors.Is(err, capture.ErrNoField):
		return doc.Alert(ctx, cfg.noField)
	case err != nil:
		return err
	}
	h.log().Debug("button capture", "target", variant.Name, "chars", len([]rune(text)))
	err = h.Channel.Handoff(ctx, variant, text)
	if errors.Is(err, handoff.ErrNoText) {
		return doc.Alert(ctx, AlertEmptyField)
	}
	return err
}

// ContextMenu handles the context-menu path: selection first, otherwise the
// right-clicked element. Nothing captured is a silent no-op.
func (h *Handler) ContextMenu(ctx context.Context, doc dom.Document, variant destination.Variant, selection string) error {
	text, err := capture.FromContextMenu(ctx, doc, selection)
	if err != nil {
		return err
	}
	err = h.Channel.Handoff(ctx, variant, text)
	if errors.Is(err, handoff.ErrNoText) {
		return nil
	}
	return err
}
