package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitieu/internal/core"
)

func testEntries() []core.Entry {
	return []core.Entry{
		{ID: "e1", Date: core.NewDate(2025, 1, 5), Amount: 35000, Category: core.CategoryFood, Description: "ăn sáng"},
	}
}

func TestNotifyDeliversPayload(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(5 * time.Second)
	err := n.Notify(context.Background(), srv.URL, testEntries())
	require.NoError(t, err)

	assert.Equal(t, "entries.created", got.Event)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "e1", got.Entries[0].ID)
	assert.Equal(t, int64(35000), got.Entries[0].Amount)
}

func TestNotifyRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(5 * time.Second)
	n.client.RetryWaitMin = time.Millisecond
	n.client.RetryWaitMax = 2 * time.Millisecond

	err := n.Notify(context.Background(), srv.URL, testEntries())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestNotifyReportsClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier(5 * time.Second)
	err := n.Notify(context.Background(), srv.URL, testEntries())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestNotifySkipsEmptyInput(t *testing.T) {
	n := NewNotifier(time.Second)
	assert.NoError(t, n.Notify(context.Background(), "", testEntries()))
	assert.NoError(t, n.Notify(context.Background(), "https://example.com", nil))
}
