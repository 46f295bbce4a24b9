// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tradeterm TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// LOGIN SCREEN STYLES
	// ==========================================================================

	LoginBox      lipgloss.Style
	LoginTitle    lipgloss.Style
	LoginTicker   lipgloss.Style
	LoginLink     lipgloss.Style
	LoginError    lipgloss.Style
	LoginHint     lipgloss.Style
	LoginBotBadge lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarHeader     lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarPreview    lipgloss.Style
	SidebarMeta       lipgloss.Style
	TokenBalance      lipgloss.Style
	TokenBalanceLow   lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	SystemLabel     lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// STARTER PROMPT STYLES
	// ==========================================================================

	StarterBox   lipgloss.Style
	StarterTitle lipgloss.Style
	StarterItem  lipgloss.Style
	StarterKey   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// STATUS / PENDING STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastError  lipgloss.Style
	ToastStatus lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Login screen
	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.LoginTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.LoginTicker = lipgloss.NewStyle().
		Foreground(Blue)

	t.LoginLink = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.LoginError = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.LoginHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.LoginBotBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Blue).
		Padding(0, 1)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarItemActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(SelectionBg)

	t.SidebarPreview = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TokenBalance = lipgloss.NewStyle().
		Foreground(Cyan)

	t.TokenBalanceLow = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(SystemBubbleBorder).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.SystemLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Starter prompts
	t.StarterBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.StarterTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.StarterItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StarterKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Blue)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Toasts
	t.ToastError = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.ToastStatus = lipgloss.NewStyle().
		Foreground(Cyan).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)
}
