package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/bitbucket"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/config"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/logging"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/tools"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*bytes.Buffer, func(string)) {
	t.Helper()

	if handler == nil {
		handler = func(w http.ResponseWriter, req *http.Request) {
			io.WriteString(w, `{"ok":true}`)
		}
	}
	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	log := logging.New(io.Discard, "silent")
	client := bitbucket.New(&config.Config{
		BaseURL:       api.URL,
		UserIdentity:  "dev",
		APICredential: "token",
		AuthScheme:    config.AuthBearer,
	}, 0, log)
	registry := tools.New(client, "main", nil, log)

	var out bytes.Buffer
	run := func(input string) {
		srv := NewServer(strings.NewReader(input), &out, registry, log)
		require.NoError(t, srv.Run(context.Background()))
	}
	return &out, run
}

func responses(t *testing.T, out *bytes.Buffer) []JSONRPCResponse {
	t.Helper()
	var resps []JSONRPCResponse
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp JSONRPCResponse
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		resps = append(resps, resp)
	}
	return resps
}

func toolResult(t *testing.T, resp JSONRPCResponse) ToolResult {
	t.Helper()
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result ToolResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestInitialize(t *testing.T) {
	out, run := newTestServer(t, nil)
	run(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error)

	data, err := json.Marshal(resps[0].Result)
	require.NoError(t, err)
	var init InitializeResult
	require.NoError(t, json.Unmarshal(data, &init))
	assert.Equal(t, "2024-11-05", init.ProtocolVersion)
	assert.Equal(t, "bitbucket-mcp", init.ServerInfo.Name)
}

func TestListTools(t *testing.T) {
	out, run := newTestServer(t, nil)
	run(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)

	data, err := json.Marshal(resps[0].Result)
	require.NoError(t, err)
	var list ListToolsResult
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list.Tools, 24)

	names := make(map[string]bool, len(list.Tools))
	for _, tool := range list.Tools {
		names[tool.Name] = true
	}
	assert.True(t, names["repo_info"])
	assert.True(t, names["pr_create"])
	assert.True(t, names["connection_test"])
}

func TestCallTool(t *testing.T) {
	out, run := newTestServer(t, func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `{"slug":"repo","scmId":"git"}`)
	})
	run(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"repo_info","arguments":{"workspace":"TEAM","repoSlug":"repo"}}}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error)

	result := toolResult(t, resps[0])
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Contains(t, result.Content[0].Text, `"slug": "repo"`)
}

func TestCallUnknownToolIsToolError(t *testing.T) {
	out, run := newTestServer(t, nil)
	run(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"bogus","arguments":{}}}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error, "tool failures go in the result, not the RPC error")

	result := toolResult(t, resps[0])
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "unknown tool: bogus")
}

func TestCallToolAPIErrorIsStructured(t *testing.T) {
	out, run := newTestServer(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"no such repo"}`)
	})
	run(`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"repo_info","arguments":{"workspace":"TEAM","repoSlug":"gone"}}}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)

	result := toolResult(t, resps[0])
	assert.True(t, result.IsError)

	var payload struct {
		ErrorKind  string `json:"errorKind"`
		StatusCode int    `json:"statusCode"`
		Retryable  bool   `json:"isRetryable"`
		Suggestion string `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, "NOT_FOUND_ERROR", payload.ErrorKind)
	assert.Equal(t, http.StatusNotFound, payload.StatusCode)
	assert.False(t, payload.Retryable)
	assert.NotEmpty(t, payload.Suggestion)
}

func TestUnknownMethod(t *testing.T) {
	out, run := newTestServer(t, nil)
	run(`{"jsonrpc":"2.0","id":6,"method":"resources/list"}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, -32601, resps[0].Error.Code)
}

func TestParseError(t *testing.T) {
	out, run := newTestServer(t, nil)
	run("this is not json\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, -32700, resps[0].Error.Code)
	assert.Nil(t, resps[0].ID)
}

func TestInvalidCallParams(t *testing.T) {
	out, run := newTestServer(t, nil)
	run(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":"nope"}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, -32602, resps[0].Error.Code)
}

func TestNotificationsAndBlankLinesProduceNoOutput(t *testing.T) {
	out, run := newTestServer(t, nil)
	run("\n" + `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n\n")

	assert.Empty(t, strings.TrimSpace(out.String()))
}

func TestSequentialRequests(t *testing.T) {
	out, run := newTestServer(t, nil)
	run(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")

	resps := responses(t, out)
	require.Len(t, resps, 2)
	assert.Equal(t, float64(1), resps[0].ID)
	assert.Equal(t, float64(2), resps[1].ID)
}
