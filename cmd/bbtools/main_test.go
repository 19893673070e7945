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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

const definitions = `
- name: get_quote
  description: Given a stock symbol, gets the latest price quote.
  openapi_path: /api/v1/equity/price/quote
  args_schema: SymbolSchema
  default_parameters:
    provider: yfinance
  example_parameter_values:
    - symbol: AAPL
  singular: 1
- name: get_symbol_from_query
  description: Finds symbols matching a {company} name.
  openapi_path: /api/v1/equity/search
  args_schema: QuerySchema
  example_parameter_values:
    - query: Apple
  tags: [search]
`

func fakeOpenBB(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/equity/price/quote":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{{"symbol": r.URL.Query().Get("symbol"), "last_price": 190.5}},
			})
		case "/api/v1/equity/search":
			_, _ = w.Write([]byte(`{"results": [{"symbol": "AAPL", "name": "Apple Inc."}, {"symbol": "APLE", "name": "Apple Hospitality"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "Not Found"}`))
		}
	}))
	t.Cleanup(func() {
		srv.CloseClientConnections()
		srv.Close()
	})
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(definitions), 0o600))
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", cfg, "--openbb-url", fakeOpenBB(t)}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestToolsCmd(t *testing.T) {
	out, err := run(t, "tools")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "get_10k_item1_from_symbol"))
	assert.Contains(t, lines[3], "query")
	assert.Contains(t, lines[3], "search")
}

func TestToolsCmd_JSON(t *testing.T) {
	out, err := run(t, "tools", "--json")
	require.NoError(t, err)
	var specs []toolSpec
	require.NoError(t, json.Unmarshal([]byte(out), &specs))
	require.Len(t, specs, 3)
	assert.Equal(t, "get_quote", specs[1].Name)
	assert.Equal(t,
		`Given a stock symbol, gets the latest price quote. Usage: get_quote(symbol="AAPL") -> {"last_price":190.5,"symbol":"AAPL"}`,
		specs[1].Description)
	assert.Equal(t, "object", specs[1].Parameters["type"])
}

func TestPromptCmd(t *testing.T) {
	out, err := run(t, "prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "get_quote : Given a stock symbol")
	assert.Contains(t, out, "Finds symbols matching a {company} name.")
	assert.Contains(t, out, "\n~~\n")
	assert.NotContains(t, out, "get_10k_item1_from_symbol")

	raw, err := run(t, "prompt", "--raw")
	require.NoError(t, err)
	assert.Contains(t, raw, "{{company}}")
}

func TestCallCmd(t *testing.T) {
	out, err := run(t, "call", "get_quote", `{"symbol": "MSFT"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_price":190.5,"symbol":"MSFT"}`, out)

	out, err = run(t, "call", "get_symbol_from_query", `{"query": "apple"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"symbol":"AAPL","name":"Apple Inc."},{"symbol":"APLE","name":"Apple Hospitality"}]`, out)
}

func TestCallCmd_Errors(t *testing.T) {
	_, err := run(t, "call", "get_quote", `{"symbol":`)
	require.Error(t, err)

	_, err = run(t, "call", "get_quote", `{}`)
	require.Error(t, err)

	_, err = run(t, "call", "nope")
	require.Error(t, err)
}

func TestCallCmd_FilingWithoutCredentials(t *testing.T) {
	t.Setenv("SEC_FIRM", "")
	t.Setenv("SEC_USER", "")
	out, err := run(t, "call", "get_10k_item1_from_symbol", `{"symbol": "AAPL"}`)
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestBuild_UnknownRoute(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
- name: get_weather
  description: Not a financial route.
  openapi_path: /api/v1/weather/today
  args_schema: SymbolSchema
  example_parameter_values: [{symbol: AAPL}]
`), 0o600))
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", cfg, "--openbb-url", fakeOpenBB(t), "tools"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation path")
}

func TestRoutesCmd(t *testing.T) {
	out, err := run(t, "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "/api/v1/equity/price/quote\n")
	assert.Contains(t, out, "/api/v1/news/company\n")
}

const openAPIDoc = `{
  "openapi": "3.0.3",
  "info": {"title": "OpenBB Platform API", "version": "4.0.0"},
  "paths": {
    "/api/v1/equity/price/quote": {"get": {"responses": {"200": {"description": "OK"}}}},
    "/api/v1/equity/discovery/gainers": {"get": {"responses": {"200": {"description": "OK"}}}}
  }
}`

func writeOpenAPI(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte(openAPIDoc), 0o600))
	return path
}

func TestOpenAPI_RoutesFromDocument(t *testing.T) {
	_, err := run(t, "--openapi", writeOpenAPI(t), "tools")
	require.Error(t, err, "equity/search is not in the document")
	assert.Contains(t, err.Error(), "get_symbol_from_query")
	assert.Contains(t, err.Error(), "unknown operation path")
}

func TestRoutesCmd_OpenAPI(t *testing.T) {
	out, err := run(t, "--openapi", writeOpenAPI(t), "routes")
	require.Error(t, err, "most default routes are missing from the document")
	assert.Contains(t, out, "# not served: /api/v1/equity/discovery/gainers")
	assert.Contains(t, err.Error(), "route not in OpenAPI document")
}
