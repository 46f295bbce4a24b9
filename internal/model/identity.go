// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// IDENTITY TYPE
// =============================================================================

// Identity is the authenticated user's profile and remaining usage allowance,
// as returned by the backend's Telegram verification endpoint.
//
// An Identity is immutable once created: a fresh authentication replaces it
// wholesale, and logout destroys it. At most one instance exists at a time.
type Identity struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TokensLeft int    `json:"tokens_left"`
}

// DisplayName returns the user's full name, falling back to the username.
func (i *Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name != "" {
		return name
	}
	if i.Username != "" {
		return "@" + i.Username
	}
	return "Trader"
}

// HasTokens reports whether the user can still submit queries.
func (i *Identity) HasTokens() bool {
	return i.TokensLeft > 0
}

// WithTokens returns a copy of the identity with an updated token balance.
// Identities are replaced, never mutated in place.
func (i *Identity) WithTokens(tokensLeft int) *Identity {
	copy := *i
	copy.TokensLeft = tokensLeft
	return &copy
}

// =============================================================================
// TELEGRAM CREDENTIAL
// =============================================================================

// TelegramCredential is the payload handed to the login callback by the
// Telegram widget after the user completes out-of-band authentication.
//
// The hash is an HMAC over the other fields, computed with the bot token.
// Verification happens server-side; the client treats the credential as
// opaque and simply relays it.
type TelegramCredential struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}
