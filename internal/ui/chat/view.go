// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements rendering: the login screen while no identity is
// held, and the sidebar plus transcript layout afterwards.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/terminaloftrade/tradeterm/internal/controller"
	"github.com/terminaloftrade/tradeterm/internal/model"
	"github.com/terminaloftrade/tradeterm/internal/ui/components"
	"github.com/terminaloftrade/tradeterm/internal/util"
)

// View renders the application.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	if m.ctrl.State() != controller.StateLoggedIn {
		return m.loginView()
	}
	return m.mainView()
}

// =============================================================================
// LOGIN VIEW
// =============================================================================

func (m Model) loginView() string {
	var b strings.Builder

	b.WriteString(m.theme.LoginTitle.Render("Terminal of Trade AI"))
	b.WriteString("\n")
	b.WriteString(m.theme.LoginTicker.Render("$TOTAI"))
	b.WriteString("\n\n")

	if m.cfg.Links.ContractAddress != "" {
		b.WriteString(m.theme.LoginHint.Render("CA: " + m.cfg.Links.ContractAddress))
		b.WriteString("\n")
	}
	links := make([]string, 0, 2)
	if m.cfg.Links.TwitterURL != "" {
		links = append(links, m.theme.LoginLink.Render(m.cfg.Links.TwitterURL))
	}
	if m.cfg.Links.TelegramURL != "" {
		links = append(links, m.theme.LoginLink.Render(m.cfg.Links.TelegramURL))
	}
	if len(links) > 0 {
		b.WriteString(strings.Join(links, "  "))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.theme.LoginBotBadge.Render(" @" + m.widgetCfg.BotName + " "))
	b.WriteString("\n\n")

	if m.authenticating {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" Verifying with Telegram..."))
	} else {
		b.WriteString(m.theme.LoginHint.Render("Log in with Telegram, then paste the signed payload below."))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	}

	if m.authErr != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.LoginError.Render(m.authErr))
	}

	box := m.theme.LoginBox.Width(minInt(64, m.width-4)).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// MAIN VIEW
// =============================================================================

func (m Model) mainView() string {
	sidebar := m.sidebarView()
	main := m.chatPaneView()

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return m.theme.App.Render(body)
}

func (m Model) chatPaneView() string {
	var sections []string

	if _, ok := m.ctrl.Registry().Active(); !ok {
		sections = append(sections, m.starterPanel())
	} else {
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.statusLine())

	if m.toasts.HasToasts() {
		sections = append(sections, components.RenderToasts(m.theme, m.toasts.Toasts(), m.viewport.Width))
	}

	sections = append(sections, m.theme.InputContainer.Width(m.viewport.Width).Render(m.input.View()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// starterPanel renders the empty-state prompt suggestions.
func (m Model) starterPanel() string {
	var b strings.Builder

	b.WriteString(m.theme.StarterTitle.Render("Start an analysis"))
	b.WriteString("\n\n")
	for i, prompt := range m.cfg.StarterPrompts {
		if i >= 9 {
			break
		}
		b.WriteString(m.theme.StarterKey.Render(fmt.Sprintf("[%d] ", i+1)))
		b.WriteString(m.theme.StarterItem.Render(prompt))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.LoginHint.Render("Press a number, or just type your question."))

	box := m.theme.StarterBox.Width(m.viewport.Width - 2).Render(b.String())
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

// statusLine renders the pending indicator or the shortcut help.
func (m Model) statusLine() string {
	if m.pendingSend != nil {
		return m.spinner.View() + m.theme.ThinkingText.Render(" Analyzing...")
	}

	var parts []string
	for _, binding := range m.keyMap.ShortHelp() {
		help := binding.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(help.Key)+" "+m.theme.ShortcutDesc.Render(help.Desc))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) sidebarView() string {
	width := m.currentSidebarWidth()
	inner := width - 3
	var b strings.Builder

	b.WriteString(m.theme.SidebarHeader.Render("Terminal of Trade"))
	b.WriteString("\n")

	if identity := m.ctrl.Identity(); identity != nil {
		b.WriteString(m.theme.SidebarMeta.Render(util.TruncateWidth(identity.DisplayName(), inner)))
		b.WriteString("\n")

		tokenStyle := m.theme.TokenBalance
		if !identity.HasTokens() {
			tokenStyle = m.theme.TokenBalanceLow
		}
		b.WriteString(tokenStyle.Render(fmt.Sprintf("Tokens: %d", identity.TokensLeft)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	list := m.ctrl.Registry().List()
	activeID := m.ctrl.Registry().ActiveID()

	if len(list) == 0 {
		b.WriteString(m.theme.SidebarPreview.Render("No analyses yet"))
		b.WriteString("\n")
	}

	for _, conv := range list {
		title := util.TruncateWidth(conv.GetTitle(), inner)
		if conv.ID == activeID {
			b.WriteString(m.theme.SidebarItemActive.Render(title))
		} else {
			b.WriteString(m.theme.SidebarItem.Render(title))
		}
		b.WriteString("\n")

		if preview := conv.Preview(inner); preview != "" {
			b.WriteString(m.theme.SidebarPreview.Render(util.TruncateWidth(preview, inner)))
			b.WriteString("\n")
		}
	}

	height := m.height - 2
	if height < 3 {
		height = 3
	}
	return m.theme.Sidebar.Width(width).Height(height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from the active
// conversation and scrolls to the bottom.
func (m *Model) refreshTranscript() {
	conv, ok := m.ctrl.Registry().Active()
	if !ok {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// renderMessage renders a single transcript entry with its role label and
// timestamp. Assistant replies go through the markdown renderer.
func (m Model) renderMessage(msg *model.Message) string {
	label := m.theme.SystemLabel
	bubble := m.theme.SystemBubble
	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel
		bubble = m.theme.UserBubble
	case model.RoleAssistant:
		label = m.theme.AssistantLabel
		bubble = m.theme.AssistantBubble
	}

	header := label.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	content := msg.Content
	if msg.Role == model.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	width := m.viewport.Width - 4
	if width < 10 {
		width = 10
	}
	return header + "\n" + bubble.MaxWidth(width).Render(content)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
