package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-cable-extractor/internal/config"
)

func TestServerToolsRegistration(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	initMsg := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	resp := s.mcpServer.HandleMessage(ctx, json.RawMessage(initMsg))
	require.NotNil(t, resp)

	listMsg := `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`
	resp = s.mcpServer.HandleMessage(ctx, json.RawMessage(listMsg))
	body, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{
		"cable_extract_file",
		"cable_extract_batch",
		"cable_validate_file",
		"cable_export_xlsx",
		"cable_server_info",
	} {
		assert.Contains(t, string(body), `"`+name+`"`)
	}
}

func TestServerRunStdioCancel(t *testing.T) {
	s, _ := newTestServer(t)

	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.runStdioMode(ctx, in, io.Discard)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			assert.True(t, strings.Contains(err.Error(), "context"), "unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stdio server did not stop after cancellation")
	}
}

func TestServerRunServerMode(t *testing.T) {
	s, _ := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s.config.Mode = config.ModeServer
	s.config.Host = "127.0.0.1"
	s.config.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// wait for the listener before shutting it down
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", s.config.Address())
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
