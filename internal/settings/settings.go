// Package settings implements the persistent key-value store shared by every
// autopaste process, and the typed records kept in it.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Store keys. These names are part of the on-disk format.
const (
	KeyPendingText      = "pendingText"
	KeyAutoPasteEnabled = "autoPasteEnabled"
	KeyAdditionalPrompt = "additionalPrompt"
	KeyDebugEnabled     = "debugEnabled"
	KeyStockLinkEnabled = "stockLinkEnabled"
)

// Toggle names accepted by SetToggle.
const (
	ToggleDebug     = "debug"
	ToggleStockLink = "stocklink"
)

// ErrStaleHandoff is returned by VerifyCleared when a handoff record survived deletion.
var ErrStaleHandoff = errors.New("handoff record still present after clear")

// KV is the raw persistent mapping. Values are JSON documents.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes every pair or none of them.
	Set(ctx context.Context, pairs map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// HandoffRecord is the staged text carried across a navigation.
type HandoffRecord struct {
	PendingText      string `json:"pendingText"`
	AutoPasteEnabled bool   `json:"autoPasteEnabled"`
}

// Empty reports whether there is nothing to consume.
func (r HandoffRecord) Empty() bool {
	return r.PendingText == ""
}

// PromptConfig holds the user prompt appended to captured text.
type PromptConfig struct {
	AdditionalPrompt string `json:"additionalPrompt"`
	// Default is true when no prompt was stored and DefaultPrompt is in effect.
	Default bool `json:"default"`
}

// FeatureToggles are independent switches, each true unless explicitly disabled.
type FeatureToggles struct {
	DebugEnabled     bool `json:"debugEnabled"`
	StockLinkEnabled bool `json:"stockLinkEnabled"`
}

// Settings is the typed view over a KV.
type Settings struct {
	kv KV
}

// New wraps kv.
func New(kv KV) *Settings {
	return &Settings{kv: kv}
}

// KV returns the underlying store.
func (s *Settings) KV() KV {
	return s.kv
}

// Close closes the underlying store.
func (s *Settings) Close() error {
	return s.kv.Close()
}

// StageHandoff writes text together with the auto-paste permission in a single write.
func (s *Settings) StageHandoff(ctx context.Context, text string) error {
	textJSON, err := json.Marshal(text)
	if err != nil {
		return fmt.Errorf("encode pending text: %w", err)
	}
	return s.kv.Set(ctx, map[string]string{
		KeyPendingText:      string(textJSON),
		KeyAutoPasteEnabled: "true",
	})
}

// Handoff reads the staged record. Missing keys read as zero values.
func (s *Settings) Handoff(ctx context.Context) (HandoffRecord, error) {
	var rec HandoffRecord
	if _, err := s.getJSON(ctx, KeyPendingText, &rec.PendingText); err != nil {
		return HandoffRecord{}, err
	}
	if _, err := s.getJSON(ctx, KeyAutoPasteEnabled, &rec.AutoPasteEnabled); err != nil {
		return HandoffRecord{}, err
	}
	return rec, nil
}

// ClearHandoff deletes both halves of the record.
func (s *Settings) ClearHandoff(ctx context.Context) error {
	return s.kv.Remove(ctx, KeyPendingText, KeyAutoPasteEnabled)
}

// VerifyCleared re-reads the record and reports ErrStaleHandoff if anything survived.
func (s *Settings) VerifyCleared(ctx context.Context) error {
	rec, err := s.Handoff(ctx)
	if err != nil {
		return err
	}
	if rec.PendingText != "" || rec.AutoPasteEnabled {
		return ErrStaleHandoff
	}
	return nil
}

// Prompt returns the stored prompt, or DefaultPrompt when none is stored.
func (s *Settings) Prompt(ctx context.Context) (PromptConfig, error) {
	var prompt string
	if _, err := s.getJSON(ctx, KeyAdditionalPrompt, &prompt); err != nil {
		return PromptConfig{}, err
	}
	if prompt == "" {
		return PromptConfig{AdditionalPrompt: DefaultPrompt, Default: true}, nil
	}
	return PromptConfig{AdditionalPrompt: prompt}, nil
}

// SetPrompt stores a custom prompt.
func (s *Settings) SetPrompt(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("prompt must not be empty; use reset to restore the default")
	}
	b, err := json.Marshal(prompt)
	if err != nil {
		return fmt.Errorf("encode prompt: %w", err)
	}
	return s.kv.Set(ctx, map[string]string{KeyAdditionalPrompt: string(b)})
}

// ResetPrompt removes the custom prompt so DefaultPrompt applies again.
func (s *Settings) ResetPrompt(ctx context.Context) error {
	return s.kv.Remove(ctx, KeyAdditionalPrompt)
}

// Toggles reads the feature switches.
func (s *Settings) Toggles(ctx context.Context) (FeatureToggles, error) {
	t := FeatureToggles{DebugEnabled: true, StockLinkEnabled: true}
	if _, err := s.getJSON(ctx, KeyDebugEnabled, &t.DebugEnabled); err != nil {
		return FeatureToggles{}, err
	}
	if _, err := s.getJSON(ctx, KeyStockLinkEnabled, &t.StockLinkEnabled); err != nil {
		return FeatureToggles{}, err
	}
	return t, nil
}

// SetToggle stores a single switch by name (ToggleDebug or ToggleStockLink).
func (s *Settings) SetToggle(ctx context.Context, name string, on bool) error {
	key, err := toggleKey(name)
	if err != nil {
		return err
	}
	value := "false"
	if on {
		value = "true"
	}
	return s.kv.Set(ctx, map[string]string{key: value})
}

func toggleKey(name string) (string, error) {
	switch strings.ToLower(name) {
	case ToggleDebug, strings.ToLower(KeyDebugEnabled):
		return KeyDebugEnabled, nil
	case ToggleStockLink, "stock-link", strings.ToLower(KeyStockLinkEnabled):
		return KeyStockLinkEnabled, nil
	default:
		return "", fmt.Errorf("unknown toggle %q (expected %s or %s)", name, ToggleDebug, ToggleStockLink)
	}
}

// getJSON decodes key into dst. dst is left untouched when the key is absent.
func (s *Settings) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
