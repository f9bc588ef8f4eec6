package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvedit/internal/bridge"
	"github.com/JonMunkholm/csvedit/internal/config"
	"github.com/JonMunkholm/csvedit/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8790, RequestTimeout: 5 * time.Second},
		Editor:   config.EditorConfig{MaxBodySize: 1 << 20},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *bridge.Bridge) {
	t.Helper()
	b := bridge.New()
	session := core.NewSession(b, core.SessionConfig{
		Read:  core.ReadOptions{QuoteChar: `"`, EscapeChar: `"`, Comments: "#"},
		Write: core.WriteOptions{Comments: "#"},
	})
	srv := NewServer(cfg, session, b, config.DefaultExtensionConfig)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, b
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestContentThenCSV(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/content", "\ufeffa;b;c\n1;2;3\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	state := decode[sessionResponse](t, rec)
	assert.Equal(t, ";", state.DetectedDelimiter)
	assert.Equal(t, 3, state.Rows)
	assert.False(t, state.HostConnected)

	rec = do(t, srv, http.MethodGet, "/api/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a;b;c\n1;2;3\n", rec.Body.String())
}

func TestPostContent_ParseError(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/content", "a,b\n\"c,d\n")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "CSV001", resp.Code)
	assert.Equal(t, []string{"Quoted field unterminated on line 1"}, resp.Details)
}

func TestPutTable(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/content", "a,b,c\n1,2,3").Code)

	rec := do(t, srv, http.MethodPut, "/api/table", `{"rows":[["x",null,"z"],["# note","",""]]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/table", "")
	table := decode[core.Table](t, rec)
	require.Len(t, table.Rows, 2)
	assert.Nil(t, table.Rows[0][1])

	rec = do(t, srv, http.MethodGet, "/api/csv", "")
	assert.Equal(t, "x,,z\n# note", rec.Body.String())
}

func TestPutHeaderAndOptions(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/content", "1,2\n3,4").Code)

	rec := do(t, srv, http.MethodPut, "/api/options", `{"write":{"delimiter":";","header":true,"newline":"\r\n"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	opts := decode[optionsResponse](t, rec)
	assert.True(t, opts.Write.Header)

	assert.Equal(t, "A;B\r\n1;2\r\n3;4", do(t, srv, http.MethodGet, "/api/csv", "").Body.String())

	rec = do(t, srv, http.MethodPut, "/api/header", `{"headerRow":["one",null]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "one;\r\n1;2\r\n3;4", do(t, srv, http.MethodGet, "/api/csv", "").Body.String())
}

func TestPutOptions_Reload(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/content", "a|b\n1|2").Code)

	rec := do(t, srv, http.MethodPut, "/api/options", `{"read":{"delimiter":",","quoteChar":"\""},"reload":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	table := decode[core.Table](t, do(t, srv, http.MethodGet, "/api/table", ""))
	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 1)
}

func TestPutOptions_HeaderToggleKeepsDocument(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	const content = "h1;h2;h3\na;b;c\n"
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/content", content).Code)

	rec := do(t, srv, http.MethodPut, "/api/options", `{"read":{"quoteChar":"\"","escapeChar":"\"","hasHeader":true},"reload":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[optionsResponse](t, rec).Write.Header)
	assert.Equal(t, content, do(t, srv, http.MethodGet, "/api/csv", "").Body.String())

	rec = do(t, srv, http.MethodPut, "/api/options",
		`{"read":{"quoteChar":"\"","escapeChar":"\""},"write":{"delimiter":"","header":true},"reload":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[optionsResponse](t, rec).Write.Header)
	assert.Equal(t, content, do(t, srv, http.MethodGet, "/api/csv", "").Body.String())
}

func TestPutComments(t *testing.T) {
	cfg := testConfig()
	b := bridge.New()
	session := core.NewSession(b, core.SessionConfig{
		Read:             core.ReadOptions{Comments: "#"},
		Write:            core.WriteOptions{Comments: "#"},
		SeparateComments: true,
	})
	srv := NewServer(cfg, session, b, config.DefaultExtensionConfig)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/content", "#old\na,b\n1,2").Code)
	require.Equal(t, http.StatusNoContent, do(t, srv, http.MethodPut, "/api/comments", `{"before":" new","after":"tail"}`).Code)

	assert.Equal(t, "# new\na,b\n1,2\n#tail", do(t, srv, http.MethodGet, "/api/csv", "").Body.String())
}

func TestApplyAndCopy_ReachHost(t *testing.T) {
	srv, b := newTestServer(t, testConfig())
	host := bridge.NewChannelHost(4)
	b.Attach(host)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/content", "a,b\n1,2").Code)

	rec := do(t, srv, http.MethodPost, "/api/apply?save=true", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, err := host.Expect(ctx, bridge.CommandApply)
	require.NoError(t, err)
	assert.Equal(t, bridge.NewApply("a,b\n1,2", true), msg)

	rec = do(t, srv, http.MethodPost, "/api/copy", `{"text":"1,2"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	msg, err = host.Expect(ctx, bridge.CommandCopyToClipboard)
	require.NoError(t, err)
	assert.Equal(t, bridge.NewCopyToClipboard("1,2"), msg)

	rec = do(t, srv, http.MethodPost, "/api/notify", `{"type":"warn","content":"careful"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	msg, err = host.Expect(ctx, bridge.CommandMsgBox)
	require.NoError(t, err)
	assert.Equal(t, bridge.NewMsgBox(bridge.MsgBoxWarn, "careful"), msg)

	rec = do(t, srv, http.MethodGet, "/api/session", "")
	assert.True(t, decode[sessionResponse](t, rec).HostConnected)
}

func TestRequestErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Editor.MaxBodySize = 16
	srv, _ := newTestServer(t, cfg)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", http.MethodPut, "/api/table", `{"rows":`, http.StatusBadRequest, "REQ001"},
		{"body too large", http.MethodPost, "/api/copy", `{"text":"` + strings.Repeat("x", 64) + `"}`, http.StatusRequestEntityTooLarge, "REQ002"},
		{"content too large", http.MethodPost, "/api/content", strings.Repeat("a,b\n", 16), http.StatusRequestEntityTooLarge, "REQ002"},
		{"unknown notify type", http.MethodPost, "/api/notify", `{"type":"x"}`, http.StatusBadRequest, "REQ001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestSettingsAndHeaders(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	settings := decode[config.ExtensionConfig](t, rec)
	assert.Equal(t, 200, settings.DoubleClickColumnHandleForcedWith)
	assert.Equal(t, "#", settings.ReadOptionComment)
}

func TestHostSocket(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireHostToken = true
	cfg.Security.HostTokens = []string{"secret"}
	srv, b := newTestServer(t, cfg)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	rec := do(t, srv, http.MethodGet, "/host", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/host?token=secret"
	ws, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	require.NoError(t, wsjson.Write(ctx, ws, bridge.Inbound{Command: bridge.CommandCSVUpdate, CSVContent: "a,b,c\n1,2,3"}))
	require.NoError(t, wsjson.Write(ctx, ws, bridge.Inbound{Command: bridge.CommandApplyPress}))

	var got bridge.Apply
	require.NoError(t, wsjson.Read(ctx, ws, &got))
	assert.Equal(t, bridge.NewApply("a,b,c\n1,2,3", false), got)
	assert.True(t, b.Connected())

	require.NoError(t, ws.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return !b.Connected() }, 2*time.Second, 10*time.Millisecond)
}
