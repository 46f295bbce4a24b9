// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"strings"
	"testing"

	"github.com/terminaloftrade/tradeterm/internal/model"
)

func TestRegistry_AcquireAndDispatch(t *testing.T) {
	r := NewRegistry()

	var got model.TelegramCredential
	slot := r.Acquire(func(cred model.TelegramCredential) {
		got = cred
	})

	r.Dispatch(slot.ID(), model.TelegramCredential{ID: 42, Hash: "h"})

	if got.ID != 42 || got.Hash != "h" {
		t.Errorf("dispatched credential = %+v, want ID=42 Hash=h", got)
	}
}

func TestRegistry_DispatchAfterRelease(t *testing.T) {
	r := NewRegistry()

	called := false
	slot := r.Acquire(func(model.TelegramCredential) {
		called = true
	})

	slot.Release()
	r.Dispatch(slot.ID(), model.TelegramCredential{ID: 1})

	if called {
		t.Error("released slot must never receive a credential")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after release, want 0", r.Len())
	}
}

func TestRegistry_DispatchUnknownSlot(t *testing.T) {
	r := NewRegistry()

	// Must not panic
	r.Dispatch("nope", model.TelegramCredential{ID: 1})
}

func TestSlot_DoubleRelease(t *testing.T) {
	r := NewRegistry()
	slot := r.Acquire(func(model.TelegramCredential) {})

	slot.Release()
	slot.Release()

	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRegistry_SlotsAreIndependent(t *testing.T) {
	r := NewRegistry()

	var first, second int
	a := r.Acquire(func(model.TelegramCredential) { first++ })
	b := r.Acquire(func(model.TelegramCredential) { second++ })

	if a.ID() == b.ID() {
		t.Fatal("slots must have distinct ids")
	}
	if a.Name() == b.Name() {
		t.Fatal("slots must have distinct callback names")
	}

	a.Release()
	r.Dispatch(a.ID(), model.TelegramCredential{})
	r.Dispatch(b.ID(), model.TelegramCredential{})

	if first != 0 {
		t.Error("released slot a was invoked")
	}
	if second != 1 {
		t.Errorf("slot b invoked %d times, want 1", second)
	}
}

func TestSlot_Name(t *testing.T) {
	r := NewRegistry()
	slot := r.Acquire(func(model.TelegramCredential) {})

	if !strings.HasPrefix(slot.Name(), "onTelegramAuth_") {
		t.Errorf("Name() = %q, want onTelegramAuth_ prefix", slot.Name())
	}
	if slot.Name() != slot.Name() {
		t.Error("Name() must be stable")
	}
}

func TestParseCredential(t *testing.T) {
	payload := `{"id": 42, "first_name": "Ada", "username": "ada", "auth_date": 1700000000, "hash": "abc123"}`

	cred, err := ParseCredential(payload)
	if err != nil {
		t.Fatalf("ParseCredential failed: %v", err)
	}
	if cred.ID != 42 || cred.Username != "ada" || cred.Hash != "abc123" {
		t.Errorf("credential = %+v", cred)
	}

	invalid := []struct {
		name    string
		payload string
	}{
		{"not json", "hello"},
		{"empty", ""},
		{"missing id", `{"hash": "abc"}`},
		{"missing hash", `{"id": 42}`},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCredential(tc.payload); err == nil {
				t.Errorf("ParseCredential(%q) should fail", tc.payload)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("TradeTermBot")

	if cfg.BotName != "TradeTermBot" {
		t.Errorf("BotName = %q", cfg.BotName)
	}
	if cfg.ButtonSize != SizeLarge {
		t.Errorf("ButtonSize = %q, want %q", cfg.ButtonSize, SizeLarge)
	}
	if cfg.ShowAvatar {
		t.Error("ShowAvatar should default to false")
	}
}
