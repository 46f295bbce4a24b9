// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}

	// Styles render without panicking and produce output
	if out := theme.LoginTitle.Render("Terminal of Trade AI"); out == "" {
		t.Error("LoginTitle render produced empty output")
	}
	if out := theme.UserBubble.Render("hello"); out == "" {
		t.Error("UserBubble render produced empty output")
	}
	if out := theme.ToastError.Render("failed"); out == "" {
		t.Error("ToastError render produced empty output")
	}
}
