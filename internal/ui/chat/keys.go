// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings for the chat interface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	NewAnalysis key.Binding
	NextConv    key.Binding
	PrevConv    key.Binding
	Tokens      key.Binding
	Logout      key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel reply"),
		),
		NewAnalysis: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new analysis"),
		),
		NextConv: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("C-j", "next conversation"),
		),
		PrevConv: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("C-k", "previous conversation"),
		),
		Tokens: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "refresh tokens"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the key bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewAnalysis, k.PrevConv, k.NextConv, k.Logout, k.Quit}
}
