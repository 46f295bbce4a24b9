// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller implements the interaction state machine between the
// identity store, the conversation registry, and the remote gateway.
//
// The controller's mutating methods are called from the Bubble Tea update
// loop, one at a time. Gateway calls themselves run in command goroutines;
// the controller hands them a Send handle on the way out and validates the
// handle on the way back in, so results that arrive after a logout or a
// registry reset are discarded instead of misapplied.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/terminaloftrade/tradeterm/internal/gateway"
	"github.com/terminaloftrade/tradeterm/internal/model"
	"github.com/terminaloftrade/tradeterm/internal/registry"
)

// DefaultSendTimeout bounds a single chat round trip.
const DefaultSendTimeout = 60 * time.Second

// DefaultTitle is the title given to every new conversation.
const DefaultTitle = "New Analysis"

// =============================================================================
// ERRORS
// =============================================================================

// Error variables for refused operations.
var (
	// ErrBusy indicates a reply is already pending for the active conversation.
	ErrBusy = errors.New("a reply is already pending")

	// ErrNotLoggedIn indicates the operation requires an authenticated identity.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoActiveConversation indicates no conversation is selected.
	ErrNoActiveConversation = errors.New("no active conversation")

	// ErrEmptyMessage indicates a blank submission was refused.
	ErrEmptyMessage = errors.New("message is empty")
)

// =============================================================================
// STATE
// =============================================================================

// State is the controller's authentication state.
type State int

const (
	// StateLoggedOut means no identity is held.
	StateLoggedOut State = iota

	// StateAuthenticating means a credential is being verified remotely.
	StateAuthenticating

	// StateLoggedIn means an identity is held. Whether a conversation is
	// active or a reply is pending is carried by the registry and the
	// pending flag, not by extra states.
	StateLoggedIn
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged-in"
	default:
		return "unknown"
	}
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Gateway is the subset of the remote API the controller drives.
type Gateway interface {
	Authenticate(ctx context.Context, cred model.TelegramCredential) (*model.Identity, error)
	StartSession(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, sessionID string, userID int64, query string) (string, error)
	TokenBalance(ctx context.Context, userID int64) (*gateway.TokenBalance, error)
}

// IdentityStore persists the identity between runs.
type IdentityStore interface {
	Load() (*model.Identity, bool)
	Save(*model.Identity) error
	Clear() error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the identity, the conversation registry, and the pending
// send flag.
type Controller struct {
	mu       sync.Mutex
	state    State
	identity *model.Identity
	pending  bool

	store    IdentityStore
	registry *registry.Registry
	gateway  Gateway

	cancelMgr   *cancelManager
	sendTimeout time.Duration
}

// New creates a controller in the logged-out state.
func New(store IdentityStore, reg *registry.Registry, gw Gateway) *Controller {
	return &Controller{
		state:       StateLoggedOut,
		store:       store,
		registry:    reg,
		gateway:     gw,
		cancelMgr:   newCancelManager(),
		sendTimeout: DefaultSendTimeout,
	}
}

// WithSendTimeout sets the per-send timeout.
func (c *Controller) WithSendTimeout(timeout time.Duration) *Controller {
	c.sendTimeout = timeout
	return c
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Restore loads the persisted identity, if any, and enters the logged-in
// state. Returns true when an identity was restored.
func (c *Controller) Restore() bool {
	identity, ok := c.store.Load()
	if !ok {
		return false
	}

	c.mu.Lock()
	c.identity = identity
	c.state = StateLoggedIn
	c.mu.Unlock()
	return true
}

// Login relays the widget credential to the backend for verification.
// On success the returned identity is held in memory and persisted. On
// failure nothing is stored and the controller returns to logged-out.
func (c *Controller) Login(ctx context.Context, cred model.TelegramCredential) (*model.Identity, error) {
	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()

	identity, err := c.gateway.Authenticate(ctx, cred)
	if err != nil {
		c.mu.Lock()
		c.state = StateLoggedOut
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.identity = identity
	c.state = StateLoggedIn
	c.mu.Unlock()

	// Persistence is best-effort: a failed save means logging in again next
	// run, not a failed login.
	c.store.Save(identity)

	return identity, nil
}

// Logout discards the identity, clears the store, resets the registry, and
// cancels any in-flight send. It never fails and always lands in logged-out.
func (c *Controller) Logout() {
	c.cancelMgr.clear()

	c.mu.Lock()
	c.identity = nil
	c.pending = false
	c.state = StateLoggedOut
	c.mu.Unlock()

	c.registry.Reset()
	c.store.Clear()
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// NewAnalysis asks the gateway for a fresh session and, on success, inserts
// a new conversation at the front of the registry and activates it. On
// failure no state changes.
func (c *Controller) NewAnalysis(ctx context.Context) (*model.Conversation, error) {
	c.mu.Lock()
	loggedIn := c.state == StateLoggedIn
	c.mu.Unlock()
	if !loggedIn {
		return nil, ErrNotLoggedIn
	}

	sessionID, err := c.gateway.StartSession(ctx)
	if err != nil {
		return nil, err
	}

	return c.registry.Add(sessionID, DefaultTitle), nil
}

// SwitchTo moves the active conversation pointer. A pending send for another
// conversation keeps running; its completion is applied to the conversation
// it was issued for.
func (c *Controller) SwitchTo(conversationID string) error {
	return c.registry.SetActive(conversationID)
}

// =============================================================================
// SENDING
// =============================================================================

// BeginSend appends the user message to the active conversation, marks a
// reply pending, and returns the Send handle for the gateway round trip.
//
// Refused with ErrBusy while a reply is pending, ErrNotLoggedIn without an
// identity, ErrNoActiveConversation without a selection, and ErrEmptyMessage
// for blank input. The optimistic user message stands regardless of how the
// round trip ends.
func (c *Controller) BeginSend(text string) (*Send, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state != StateLoggedIn || c.identity == nil {
		c.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	if c.pending {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	userID := c.identity.UserID
	c.mu.Unlock()

	conv, ok := c.registry.Active()
	if !ok {
		return nil, ErrNoActiveConversation
	}

	if err := c.registry.Append(conv.ID, model.NewUserMessage(text)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.sendTimeout)
	c.cancelMgr.set(cancel)

	c.mu.Lock()
	c.pending = true
	c.mu.Unlock()

	return &Send{
		ConversationID: conv.ID,
		UserID:         userID,
		Query:          text,
		generation:     c.registry.Generation(),
		ctx:            ctx,
		cancel:         cancel,
	}, nil
}

// CompleteSend applies the outcome of a gateway round trip.
//
// A handle is stale when the registry generation moved on (logout) or its
// conversation no longer exists; stale completions are discarded and the
// method reports (false, nil). For a current handle the pending flag is
// cleared; on success the assistant message is appended, on failure the
// user message stands and the gateway error is returned for surfacing.
func (c *Controller) CompleteSend(s *Send, reply string, sendErr error) (bool, error) {
	s.cancel()

	if s.generation != c.registry.Generation() || !c.registry.Contains(s.ConversationID) {
		return false, nil
	}

	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
	c.cancelMgr.forget()

	if sendErr != nil {
		return false, sendErr
	}

	if err := c.registry.Append(s.ConversationID, model.NewAssistantMessage(reply)); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// TOKENS
// =============================================================================

// RefreshTokens updates the in-memory token balance from the backend and
// persists the identity when the balance changed.
func (c *Controller) RefreshTokens(ctx context.Context) (int, error) {
	c.mu.Lock()
	identity := c.identity
	c.mu.Unlock()
	if identity == nil {
		return 0, ErrNotLoggedIn
	}

	balance, err := c.gateway.TokenBalance(ctx, identity.UserID)
	if err != nil {
		return 0, err
	}
	if balance.TokensLeft == identity.TokensLeft {
		return balance.TokensLeft, nil
	}

	updated := identity.WithTokens(balance.TokensLeft)

	c.mu.Lock()
	// Logout may have raced the fetch; do not resurrect a cleared identity.
	if c.identity == nil || c.identity.UserID != updated.UserID {
		c.mu.Unlock()
		return balance.TokensLeft, nil
	}
	c.identity = updated
	c.mu.Unlock()

	c.store.Save(updated)
	return balance.TokensLeft, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current authentication state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the held identity, or nil when logged out.
func (c *Controller) Identity() *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Pending reports whether a reply is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Registry returns the conversation registry.
func (c *Controller) Registry() *registry.Registry {
	return c.registry
}
