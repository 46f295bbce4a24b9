// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for identities, conversations,
// and messages.
//
// All types here are plain data: they carry no behavior beyond construction
// helpers and display formatting. Ownership and mutation rules live in the
// registry and controller packages.
package model
