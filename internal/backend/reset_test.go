package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetMemorySuccess(t *testing.T) {
	var gotMethod, gotPath, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL+"/", time.Second).ResetMemory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/reset-memory", gotPath)
	assert.Equal(t, "application/json", gotType)
}

func TestResetMemoryNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL, time.Second).ResetMemory(context.Background())
	assert.True(t, errors.Is(err, ErrStatus), "err = %v", err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestResetMemoryTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(srv.URL, 50*time.Millisecond).ResetMemory(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "err = %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResetAsyncUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	select {
	case res := <-NewClient(url, time.Second).ResetAsync(context.Background()):
		assert.False(t, res.OK())
		assert.Zero(t, res.Status)
		assert.Error(t, res.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("ResetAsync never delivered a result")
	}
}

func TestResetAsyncDeliversOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewClient(srv.URL, time.Second).ResetAsync(context.Background())
	res := <-ch
	assert.True(t, res.OK())
	assert.Equal(t, http.StatusNoContent, res.Status)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected second result %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
