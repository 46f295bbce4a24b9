// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea commands that drive the gateway. Each
// command runs in its own goroutine and reports back as a message; all state
// mutation happens in Update.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terminaloftrade/tradeterm/internal/controller"
	"github.com/terminaloftrade/tradeterm/internal/model"
)

// gatewayCallTimeout bounds the short gateway calls issued directly by the
// UI (login, session creation, token refresh). Chat round trips carry their
// own timeout on the Send handle.
const gatewayCallTimeout = 30 * time.Second

// waitForCredentialCmd blocks on the widget slot channel and delivers the
// next credential as a message.
func waitForCredentialCmd(ch <-chan model.TelegramCredential) tea.Cmd {
	return func() tea.Msg {
		cred, ok := <-ch
		if !ok {
			return nil
		}
		return WidgetCredentialMsg{Credential: cred}
	}
}

// loginCmd relays the credential to the backend for verification.
func loginCmd(ctrl *controller.Controller, cred model.TelegramCredential) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gatewayCallTimeout)
		defer cancel()

		identity, err := ctrl.Login(ctx, cred)
		return AuthResultMsg{Identity: identity, Err: err}
	}
}

// newAnalysisCmd asks the backend for a fresh session. A non-empty prompt is
// carried through to the completion handler, which issues the send only
// after the session exists.
func newAnalysisCmd(ctrl *controller.Controller, prompt string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gatewayCallTimeout)
		defer cancel()

		conv, err := ctrl.NewAnalysis(ctx)
		return SessionCreatedMsg{Conversation: conv, Prompt: prompt, Err: err}
	}
}

// sendCmd runs the chat round trip for an issued Send handle.
func sendCmd(gw controller.Gateway, send *controller.Send) tea.Cmd {
	return func() tea.Msg {
		reply, err := gw.SendMessage(send.Context(), send.ConversationID, send.UserID, send.Query)
		return ReplyMsg{Send: send, Reply: reply, Err: err}
	}
}

// refreshTokensCmd fetches the current token balance.
func refreshTokensCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gatewayCallTimeout)
		defer cancel()

		left, err := ctrl.RefreshTokens(ctx)
		return TokensMsg{TokensLeft: left, Err: err}
	}
}
