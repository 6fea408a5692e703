// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package querysvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/floodqa-tui/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClientWithConfig(&ClientConfig{
		Endpoint: server.URL + "/query",
		Timeout:  2 * time.Second,
	}, nil)
}

// =============================================================================
// SUCCESS TESTS
// =============================================================================

func TestQuery_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "哪里可以避险？", req.Question)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","answer":"前往北纬31.96°东经119.42°",
			"contexts":[{"text":"预案第三条","score":0.91,"index":4},{"text":"预案第九条","score":0.5}]}`))
	})

	answer, err := client.Query(context.Background(), "哪里可以避险？")
	require.NoError(t, err)

	assert.Equal(t, "前往北纬31.96°东经119.42°", answer.Text)
	want := []model.Reference{
		{Text: "预案第三条", Score: 0.91, Index: 4},
		{Text: "预案第九条", Score: 0.5},
	}
	if diff := cmp.Diff(want, answer.References); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_SuccessWithoutContexts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","answer":"ok"}`))
	})

	answer, err := client.Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, answer.References)
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestQuery_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantType   ErrorType
		wantDetail string
	}{
		{
			name: "http 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "index not loaded", http.StatusInternalServerError)
			},
			wantType:   ErrTypeHTTPStatus,
			wantDetail: "index not loaded",
		},
		{
			name: "application error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"error","answer":"查询发生错误: timeout","contexts":[]}`))
			},
			wantType:   ErrTypeApplication,
			wantDetail: "查询发生错误: timeout",
		},
		{
			name: "application error without answer",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"error"}`))
			},
			wantType:   ErrTypeApplication,
			wantDetail: defaultApplicationError,
		},
		{
			name: "unknown status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"pending","answer":"try later"}`))
			},
			wantType:   ErrTypeApplication,
			wantDetail: "try later",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":`))
			},
			wantType:   ErrTypeInvalidResponse,
			wantDetail: "failed to decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			answer, err := client.Query(context.Background(), "q")
			require.Error(t, err)
			assert.Nil(t, answer)

			var ce *ClientError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantType, ce.Type)
			assert.Contains(t, err.Error(), tt.wantDetail)
		})
	}
}

func TestQuery_HTTPStatusCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Query(context.Background(), "q")
	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadGateway, ce.StatusCode)
	assert.Contains(t, ce.Error(), "status 502")
}

func TestQuery_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + "/query"
	server.Close()

	client := NewClientWithConfig(&ClientConfig{Endpoint: endpoint, Timeout: time.Second}, nil)
	_, err := client.Query(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, ErrTypeTransport, ErrorTypeOf(err))
}

func TestQuery_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.config.Timeout = 50 * time.Millisecond

	_, err := client.Query(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientDefaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{}, nil)
	assert.Equal(t, "http://127.0.0.1:5000/query", client.Endpoint())
	assert.Equal(t, 60*time.Second, client.Timeout())
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "application", ErrTypeApplication.String())
	assert.Equal(t, "unknown", ErrorTypeOf(errors.New("plain")).String())
}
