// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/terminaloftrade/tradeterm/internal/config"
	"github.com/terminaloftrade/tradeterm/internal/controller"
	"github.com/terminaloftrade/tradeterm/internal/gateway"
	"github.com/terminaloftrade/tradeterm/internal/model"
	"github.com/terminaloftrade/tradeterm/internal/ui/components"
	"github.com/terminaloftrade/tradeterm/internal/ui/styles"
	"github.com/terminaloftrade/tradeterm/internal/widget"
)

// Sidebar width in columns.
const (
	sidebarWidth        = 28
	sidebarWidthCompact = 20
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the application. It renders the login
// view while no identity is held and the conversation view afterwards.
type Model struct {
	// Styling
	theme *styles.Theme
	cfg   *config.Config

	// Domain
	ctrl    *controller.Controller
	gw      controller.Gateway
	widgets *widget.Registry

	// Login widget slot. Held while the login view is mounted; released on
	// successful authentication and re-acquired on logout.
	slot      *widget.Slot
	credCh    chan model.TelegramCredential
	widgetCfg widget.Config

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap
	toasts   *components.ToastManager

	// Markdown rendering for assistant replies; nil falls back to plain text
	renderer *glamour.TermRenderer

	// Login state
	authErr        string
	authenticating bool

	// In-flight chat round trip, nil when idle
	pendingSend *controller.Send

	quitting bool
}

// New creates the application model.
func New(theme *styles.Theme, cfg *config.Config, ctrl *controller.Controller, gw controller.Gateway, widgets *widget.Registry) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about markets, tokens, strategies..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(78),
	)
	if err != nil {
		renderer = nil
	}

	m := Model{
		theme:     theme,
		cfg:       cfg,
		ctrl:      ctrl,
		gw:        gw,
		widgets:   widgets,
		credCh:    make(chan model.TelegramCredential, 1),
		widgetCfg: widget.Config{
			BotName:      cfg.Telegram.BotName,
			ButtonSize:   cfg.Telegram.ButtonSize,
			CornerRadius: cfg.Telegram.CornerRadius,
			ShowAvatar:   cfg.Telegram.ShowAvatar,
		},
		viewport: vp,
		input:    ti,
		spinner:  sp,
		keyMap:   DefaultKeyMap(),
		toasts:   components.NewToastManager(),
		renderer: renderer,
	}

	if ctrl.State() != controller.StateLoggedIn {
		m.mountLoginSurface()
	}

	return m
}

// mountLoginSurface acquires a widget slot feeding the credential channel.
func (m *Model) mountLoginSurface() {
	ch := m.credCh
	m.slot = m.widgets.Acquire(func(cred model.TelegramCredential) {
		select {
		case ch <- cred:
		default:
		}
	})
	m.input.Placeholder = "Paste the signed Telegram login payload..."
}

// Init starts the background commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	if m.slot != nil {
		cmds = append(cmds, waitForCredentialCmd(m.credCh))
	} else {
		cmds = append(cmds, refreshTokensCmd(m.ctrl))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case WidgetCredentialMsg:
		m.authErr = ""
		m.authenticating = true
		m.input.Reset()
		return m, loginCmd(m.ctrl, msg.Credential)

	case AuthResultMsg:
		return m.handleAuthResult(msg)

	case SessionCreatedMsg:
		return m.handleSessionCreated(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case TokensMsg:
		// The sidebar reads the balance off the controller's identity; a
		// failed refresh just leaves the last known value in place.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// resize adjusts component dimensions to the terminal size.
func (m *Model) resize() {
	mainWidth := m.width - m.currentSidebarWidth() - 2
	if mainWidth < 20 {
		mainWidth = 20
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = m.height - 5
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = mainWidth - 4
}

func (m *Model) currentSidebarWidth() int {
	if m.cfg.UI.CompactSidebar {
		return sidebarWidthCompact
	}
	return sidebarWidth
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleAuthResult(msg AuthResultMsg) (tea.Model, tea.Cmd) {
	m.authenticating = false

	if msg.Err != nil {
		m.authErr = "Invalid Telegram authentication. Please try again."
		// Keep the slot mounted and wait for the next credential.
		return m, waitForCredentialCmd(m.credCh)
	}

	// Login surface tears down; the slot must not outlive it.
	if m.slot != nil {
		m.slot.Release()
		m.slot = nil
	}
	m.input.Reset()
	m.input.Placeholder = "Ask about markets, tokens, strategies..."
	m.refreshTranscript()
	return m, nil
}

func (m Model) handleSessionCreated(msg SessionCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError("Could not start a new analysis. Please try again.")
		return m, components.ToastTickCmd()
	}

	m.refreshTranscript()

	// Starter-prompt flow: the send is issued only now, with the session id
	// the create call returned.
	if msg.Prompt != "" {
		return m.beginSend(msg.Prompt)
	}
	return m, nil
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	if m.pendingSend == msg.Send {
		m.pendingSend = nil
	}

	applied, err := m.ctrl.CompleteSend(msg.Send, msg.Reply, msg.Err)
	if err != nil {
		if errors.Is(err, gateway.ErrTokensExhausted) {
			m.toasts.AddWarning("Token limit reached. Please replenish tokens to continue chatting.")
		} else {
			m.toasts.AddError("The analysis request failed. Your message was kept.")
		}
		m.refreshTranscript()
		return m, components.ToastTickCmd()
	}
	if !applied {
		// Stale completion after logout or reset; nothing to show.
		return m, nil
	}

	m.refreshTranscript()
	return m, refreshTokensCmd(m.ctrl)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.ctrl.State() != controller.StateLoggedIn {
		return m.handleLoginKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Cancel):
		if m.pendingSend != nil {
			m.pendingSend.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewAnalysis):
		return m, newAnalysisCmd(m.ctrl, "")

	case key.Matches(msg, m.keyMap.NextConv):
		m.cycleConversation(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevConv):
		m.cycleConversation(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.Tokens):
		return m, refreshTokensCmd(m.ctrl)

	case key.Matches(msg, m.keyMap.Logout):
		return m.handleLogout()

	case key.Matches(msg, m.keyMap.Up), key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Starter prompts answer to number keys while no conversation is active
	// and nothing has been typed.
	if _, active := m.ctrl.Registry().Active(); !active && m.input.Value() == "" {
		if prompt, ok := m.starterForKey(msg.String()); ok {
			return m, newAnalysisCmd(m.ctrl, prompt)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authenticating {
		return m, nil
	}

	if key.Matches(msg, m.keyMap.Submit) {
		payload := m.input.Value()
		cred, err := widget.ParseCredential(payload)
		if err != nil {
			if payload != "" {
				m.authErr = "That doesn't look like a Telegram login payload."
			}
			return m, nil
		}
		// Route through the slot registry; a released slot drops it.
		if m.slot != nil {
			m.widgets.Dispatch(m.slot.ID(), cred)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	return m.beginSend(m.input.Value())
}

// beginSend issues a send for the active conversation, creating a session
// first when none is active.
func (m Model) beginSend(text string) (tea.Model, tea.Cmd) {
	send, err := m.ctrl.BeginSend(text)
	switch {
	case err == nil:
		m.input.Reset()
		m.pendingSend = send
		m.refreshTranscript()
		return m, sendCmd(m.gw, send)

	case errors.Is(err, controller.ErrNoActiveConversation):
		// First message from the empty state: create the session, then let
		// the completion handler send the text into it.
		m.input.Reset()
		return m, newAnalysisCmd(m.ctrl, text)

	case errors.Is(err, controller.ErrBusy):
		m.toasts.AddStatus("Still analyzing. Wait for the current reply.")
		return m, components.ToastTickCmd()

	case errors.Is(err, controller.ErrEmptyMessage):
		return m, nil

	default:
		m.toasts.AddError(err.Error())
		return m, components.ToastTickCmd()
	}
}

func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	m.ctrl.Logout()
	m.pendingSend = nil
	m.toasts.Clear()
	m.authErr = ""
	m.viewport.SetContent("")
	m.input.Reset()
	m.mountLoginSurface()
	return m, waitForCredentialCmd(m.credCh)
}

// cycleConversation moves the active pointer through the list.
func (m *Model) cycleConversation(delta int) {
	list := m.ctrl.Registry().List()
	if len(list) < 2 {
		return
	}

	activeID := m.ctrl.Registry().ActiveID()
	current := 0
	for i, conv := range list {
		if conv.ID == activeID {
			current = i
			break
		}
	}

	next := (current + delta + len(list)) % len(list)
	if err := m.ctrl.SwitchTo(list[next].ID); err == nil {
		m.refreshTranscript()
	}
}

// starterForKey maps a number key to a configured starter prompt.
func (m Model) starterForKey(k string) (string, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return "", false
	}
	idx := int(k[0] - '1')
	if idx >= len(m.cfg.StarterPrompts) {
		return "", false
	}
	return m.cfg.StarterPrompts[idx], true
}
