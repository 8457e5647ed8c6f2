package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	for _, exp := range []string{"gqlv version: dev", "Git commit:", "Build date:", "Go version:"} {
		assert.Contains(t, out, exp)
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "type Query {")
	assert.Contains(t, out, "type Mutation {")
	assert.Contains(t, out, "type demo_Order {")

	out, err = execute(t, "schema", "--format", "json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "__schema")

	_, err = execute(t, "schema", "--format", "xml")
	assert.Error(t, err)
}

func TestSchemaCommandReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gqlv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  variant: query_only\nlogging:\n  level: error\n"), 0o600))

	out, err := execute(t, "schema", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "type Query {")
	assert.NotContains(t, out, "type Mutation {")

	require.NoError(t, os.WriteFile(path, []byte("api:\n  variant: everything\n"), 0o600))
	_, err = execute(t, "schema", "--config", path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = newLogger(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = newLogger(config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	cfg := config.Default()
	router, err := newRouter(cfg, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	server := httptest.NewServer(router)
	defer server.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		var b bytes.Buffer
		_, err = b.ReadFrom(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, b.String()
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get("/playground")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `var endpoint = "/graphql";`)

	resp, err := http.Post(server.URL+cfg.Server.Path, "application/json",
		strings.NewReader(`{"query": "{ order(id: \"123\") { total { get } } }"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	var res struct {
		Data   map[string]interface{} `json:"data"`
		Errors []interface{}          `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]interface{}{"order": map[string]interface{}{"total": map[string]interface{}{"get": "17.99"}}}, res.Data)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "gqlv_fetcher_invocations_total")
	assert.Contains(t, body, "gqlv_schema_types")
}
