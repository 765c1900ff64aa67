package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, calls *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		*calls = append(*calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "POST /api/login":
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
		case "GET /api/resources":
			_, _ = w.Write([]byte(`[{"name":"Widget","max_units":10,"available_quantity":4}]`))
		case "PUT /api/resources/Widget/quantity":
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunList(t *testing.T) {
	var calls []string
	srv := newBackend(t, &calls)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-api", srv.URL, "list"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Widget  4/10 (40%)")
	assert.Equal(t, []string{"GET /api/resources"}, calls)
}

func TestRunAdjust(t *testing.T) {
	var calls []string
	srv := newBackend(t, &calls)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-api", srv.URL, "adjust", "-name", "Widget", "-delta", "-1"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, []string{"PUT /api/resources/Widget/quantity", "GET /api/resources"}, calls)
}

func TestRunLoginRejected(t *testing.T) {
	var calls []string
	srv := newBackend(t, &calls)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-api", srv.URL, "login", "-u", "alice", "-p", "nope"}, &stdout, &stderr)

	require.EqualError(t, err, "Invalid credentials")
	assert.Empty(t, stdout.String())
}

func TestRunAddValidatesLocally(t *testing.T) {
	var calls []string
	srv := newBackend(t, &calls)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-api", srv.URL, "add", "-name", "Widget", "-max", "0"}, &stdout, &stderr)

	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"frobnicate"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "usage: panelctl")
}
