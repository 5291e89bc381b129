package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/graviox/roundcube-carddav/internal/client/config"
	"github.com/graviox/roundcube-carddav/internal/client/tokenstore"
	"github.com/graviox/roundcube-carddav/internal/rpc"
)

type memTokens struct {
	tokens map[string]string
	err    error
}

func (m *memTokens) SetToken(endpoint, token string) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[endpoint] = token
	return nil
}

func (m *memTokens) GetToken(endpoint string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	t, ok := m.tokens[endpoint]
	if !ok {
		return "", tokenstore.ErrTokenNotFound
	}
	return t, nil
}

func (m *memTokens) DeleteToken(endpoint string) error {
	if _, ok := m.tokens[endpoint]; !ok {
		return tokenstore.ErrTokenNotFound
	}
	delete(m.tokens, endpoint)
	return nil
}

type fakeAPI struct {
	API

	registered []string
	deleted    string
	syncedID   string
	closed     bool

	registerResp *rpc.RegisterServerResponse
	deleteResp   *rpc.DeleteServerResponse
	syncResp     *rpc.SyncResponse
	servers      []rpc.ServerInfo
	sources      []rpc.Source
	available    bool
	err          error
}

func (f *fakeAPI) RegisterServer(_ context.Context, label, url, username, password string) (*rpc.RegisterServerResponse, error) {
	f.registered = []string{label, url, username, password}
	return f.registerResp, f.err
}

func (f *fakeAPI) DeleteServer(_ context.Context, id string) (*rpc.DeleteServerResponse, error) {
	f.deleted = id
	return f.deleteResp, f.err
}

func (f *fakeAPI) ListServers(context.Context) ([]rpc.ServerInfo, error) { return f.servers, f.err }

func (f *fakeAPI) Sync(_ context.Context, id string) (*rpc.SyncResponse, error) {
	f.syncedID = id
	return f.syncResp, f.err
}

func (f *fakeAPI) ListSources(context.Context) ([]rpc.Source, error) { return f.sources, f.err }
func (f *fakeAPI) Available(context.Context) (bool, error)          { return f.available, f.err }
func (f *fakeAPI) Ping(context.Context) error                       { return f.err }
func (f *fakeAPI) Close() error                                     { f.closed = true; return nil }

type harness struct {
	app    *App
	api    *fakeAPI
	tokens *memTokens
	dialed []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RequestTimeout = 5 * time.Second

	h := &harness{
		api:    &fakeAPI{},
		tokens: &memTokens{tokens: map[string]string{}},
	}
	h.app = &App{
		config: cfg,
		tokens: h.tokens,
		dial: func(c *config.Config, token string) (API, error) {
			h.dialed = append(h.dialed, c.ServerEndpointAddr+"|"+token)
			return h.api, nil
		},
	}
	return h
}

func (h *harness) login() {
	h.tokens.tokens[h.app.config.ServerEndpointAddr] = "tok"
}

// run executes args and returns stdout, stderr and the exit code.
func (h *harness) run(args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	root := h.app.rootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	code := 0
	if err := root.ExecuteContext(context.Background()); err != nil {
		errOut.WriteString("Error: " + err.Error() + "\n")
		code = 1
	}
	return out.String(), errOut.String(), code
}

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	t.Cleanup(func() { readPassword = orig })
}
