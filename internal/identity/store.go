// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity persists the authenticated Telegram identity between runs.
//
// The identity is a convenience cache, not a credential: the backend re-issues
// authoritative identity on every login, and a deleted or corrupted file means
// nothing worse than having to log in again. Reads therefore never fail; a
// malformed file is treated exactly like an absent one.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/terminaloftrade/tradeterm/internal/model"
	"github.com/terminaloftrade/tradeterm/internal/util"
)

const identityFile = "identity.json"

// Store handles identity persistence.
type Store struct {
	// BaseDir is the directory holding the identity file.
	// Default: ~/.tradeterm/
	BaseDir string
}

// NewStore creates a store rooted at ~/.tradeterm.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{BaseDir: filepath.Join(homeDir, ".tradeterm")}, nil
}

// NewStoreWithDir creates a store rooted at a custom directory.
func NewStoreWithDir(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// Load retrieves the persisted identity.
// Returns (nil, false) if the file is absent, unreadable, or malformed.
func (s *Store) Load() (*model.Identity, bool) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		return nil, false
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, false
	}
	if identity.UserID == 0 {
		return nil, false
	}

	return &identity, true
}

// Save persists the identity.
//
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func (s *Store) Save(identity *model.Identity) error {
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return err
	}

	return util.AtomicWriteFileWithDir(s.filePath(), data, 0600, 0700)
}

// Clear removes the persisted identity. Clearing an absent identity is not
// an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.filePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// filePath returns the path of the identity file.
func (s *Store) filePath() string {
	return filepath.Join(s.BaseDir, identityFile)
}
