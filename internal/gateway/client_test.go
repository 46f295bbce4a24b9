// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminaloftrade/tradeterm/internal/model"
)

// testCredential is a representative widget payload.
var testCredential = model.TelegramCredential{
	ID:        1,
	FirstName: "Ada",
	Username:  "ada",
	AuthDate:  1700000000,
	Hash:      "h",
}

// =============================================================================
// AUTHENTICATE TESTS
// =============================================================================

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/telegram", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var cred model.TelegramCredential
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cred))
		assert.Equal(t, int64(1), cred.ID)
		assert.Equal(t, "h", cred.Hash)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"user_id":     1,
			"username":    "ada",
			"first_name":  "Ada",
			"last_name":   "",
			"tokens_left": 10,
		})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	identity, err := client.Authenticate(context.Background(), testCredential)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.UserID)
	assert.Equal(t, "ada", identity.Username)
	assert.Equal(t, 10, identity.TokensLeft)
}

func TestClient_AuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid Telegram authentication"})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	identity, err := client.Authenticate(context.Background(), testCredential)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Contains(t, err.Error(), "Invalid Telegram authentication")
}

func TestClient_AuthenticateTransportFailure(t *testing.T) {
	// Point at a closed server to force a transport error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	_, err := client.Authenticate(context.Background(), testCredential)
	assert.ErrorIs(t, err, ErrAuthentication)
}

// =============================================================================
// START SESSION TESTS
// =============================================================================

func TestClient_StartSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/start-session", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"session_id": "s1"})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	id, err := client.StartSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
}

func TestClient_StartSessionNoIdempotency(t *testing.T) {
	// Two calls yield two distinct sessions.
	n := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		json.NewEncoder(w).Encode(map[string]string{"session_id": "s" + strconv.Itoa(n)})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	first, err := client.StartSession(context.Background())
	require.NoError(t, err)
	second, err := client.StartSession(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestClient_StartSessionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	_, err := client.StartSession(context.Background())
	assert.ErrorIs(t, err, ErrSession)
}

func TestClient_StartSessionEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"session_id": ""})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	_, err := client.StartSession(context.Background())
	assert.ErrorIs(t, err, ErrSession)
}

// =============================================================================
// SEND MESSAGE TESTS
// =============================================================================

func TestClient_SendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req.SessionID)
		assert.Equal(t, int64(1), req.UserID)
		assert.Equal(t, "hello", req.Query)

		json.NewEncoder(w).Encode(map[string]string{"response": "hi there"})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	reply, err := client.SendMessage(context.Background(), "s1", 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestClient_SendMessageTokensExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "Token limit reached. Please replenish tokens to continue chatting.",
		})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	_, err := client.SendMessage(context.Background(), "s1", 1, "hello")
	assert.ErrorIs(t, err, ErrTokensExhausted)
}

func TestClient_SendMessageServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Error: upstream"})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	_, err := client.SendMessage(context.Background(), "s1", 1, "hello")
	assert.ErrorIs(t, err, ErrMessage)
}

func TestClient_SendMessageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"response": "late"})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api").WithTimeout(20 * time.Millisecond)

	_, err := client.SendMessage(context.Background(), "s1", 1, "hello")
	assert.ErrorIs(t, err, ErrMessage)
}

func TestClient_SendMessageCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendMessage(ctx, "s1", 1, "hello")
	assert.ErrorIs(t, err, ErrMessage)
}

// =============================================================================
// TOKEN ACCOUNTING TESTS
// =============================================================================

func TestClient_TokenBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/tokens/1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"user_id": 1, "tokens_left": 7})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	balance, err := client.TokenBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, balance.TokensLeft)
}

func TestClient_ReplenishTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/tokens/replenish", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "5", r.URL.Query().Get("amount"))
		json.NewEncoder(w).Encode(map[string]interface{}{"user_id": 1, "tokens_left": 12})
	}))
	defer srv.Close()

	client := NewClient().WithBaseURL(srv.URL + "/api")

	balance, err := client.ReplenishTokens(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, balance.TokensLeft)
}
