// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
	"time"

	"github.com/terminaloftrade/tradeterm/internal/ui/styles"
)

func TestToastManager_AddAndExpire(t *testing.T) {
	m := NewToastManager()

	if m.HasToasts() {
		t.Error("new manager should have no toasts")
	}

	m.AddError("session creation failed")
	m.AddStatus("tokens refreshed")

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("toast count = %d, want 2", len(toasts))
	}
	// Newest first
	if toasts[0].Kind != ToastKindStatus {
		t.Error("newest toast should be first")
	}

	// Force expiry and tick
	m.mu.Lock()
	for i := range m.toasts {
		m.toasts[i].CreatedAt = time.Now().Add(-time.Minute)
	}
	m.mu.Unlock()

	if remaining := m.Tick(); len(remaining) != 0 {
		t.Errorf("expired toasts remaining = %d, want 0", len(remaining))
	}
	if m.HasToasts() {
		t.Error("all toasts should be expired")
	}
}

func TestToastManager_MaxToasts(t *testing.T) {
	m := NewToastManager()

	for i := 0; i < 10; i++ {
		m.AddError("boom")
	}
	if got := len(m.Toasts()); got != 3 {
		t.Errorf("toast count = %d, want capped at 3", got)
	}
}

func TestRenderToasts(t *testing.T) {
	theme := styles.NewTheme()
	m := NewToastManager()

	if out := RenderToasts(theme, m.Toasts(), 80); out != "" {
		t.Error("no toasts should render empty")
	}

	m.AddError("message delivery failed")
	if out := RenderToasts(theme, m.Toasts(), 80); out == "" {
		t.Error("toast should render non-empty")
	}
}
