package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/graviox/roundcube-carddav/internal/client/client"
	"github.com/graviox/roundcube-carddav/internal/client/config"
	"github.com/graviox/roundcube-carddav/internal/client/tokenstore"
	"github.com/graviox/roundcube-carddav/internal/rpc"
)

// API is the backend surface the commands use. *client.GRPCClient
// satisfies it.
type API interface {
	RegisterServer(ctx context.Context, label, url, username, password string) (*rpc.RegisterServerResponse, error)
	DeleteServer(ctx context.Context, serverID string) (*rpc.DeleteServerResponse, error)
	ListServers(ctx context.Context) ([]rpc.ServerInfo, error)
	Sync(ctx context.Context, serverID string) (*rpc.SyncResponse, error)
	ListSources(ctx context.Context) ([]rpc.Source, error)
	Available(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// TokenStore persists one access token per endpoint.
type TokenStore interface {
	SetToken(endpoint, token string) error
	GetToken(endpoint string) (string, error)
	DeleteToken(endpoint string) error
}

type dialFunc func(cfg *config.Config, token string) (API, error)

type App struct {
	config *config.Config
	tokens TokenStore
	dial   dialFunc
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		tokens: tokenstore.NewKeyringStore(""),
		dial: func(cfg *config.Config, token string) (API, error) {
			return client.NewGRPCClient(cfg.ServerEndpointAddr, token, cfg.Language)
		},
	}
}

// Run executes the command line in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

var errNotLoggedIn = errors.New("not logged in, run 'carddavctl login' first")

// connect dials the configured endpoint with the stored token. When
// requireToken is false a missing token is tolerated.
func (a *App) connect(requireToken bool) (API, error) {
	token, err := a.tokens.GetToken(a.config.ServerEndpointAddr)
	switch {
	case errors.Is(err, tokenstore.ErrTokenNotFound):
		if requireToken {
			return nil, errNotLoggedIn
		}
	case err != nil:
		return nil, fmt.Errorf("read token: %w", err)
	}
	return a.dial(a.config, token)
}

// withAPI runs fn against a connected client under the request timeout.
func (a *App) withAPI(ctx context.Context, requireToken bool, fn func(context.Context, API) error) error {
	api, err := a.connect(requireToken)
	if err != nil {
		return err
	}
	defer api.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	return fn(ctx, api)
}
