package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/client"
	"github.com/iliyamo/job-portal-manager/internal/config"
	"github.com/iliyamo/job-portal-manager/internal/localstore"
	"github.com/iliyamo/job-portal-manager/internal/service"
)

// Backend is where the CLI keeps accounts and portals: the remote API or
// the embedded store.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (uint64, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	// Authenticate checks a saved token and returns the user id it stands for.
	Authenticate(ctx context.Context, token string, sessionUser uint64) (uint64, error)
	Portals() *service.PortalService
	Search(ctx context.Context, userID uint64, req service.SearchRequest) (service.SearchResult, error)
	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Remote talks to the HTTP API. Tokens are checked by the server on each
// call.
type Remote struct {
	api     *client.Client
	portals *service.PortalService
}

func NewRemote(api *client.Client, log *slog.Logger) *Remote {
	return &Remote{api: api, portals: service.NewPortalService(api, nil, log)}
}

func (r *Remote) Register(ctx context.Context, name, email, password string) (uint64, error) {
	return r.api.Register(ctx, name, email, password)
}

func (r *Remote) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	return r.api.Login(ctx, email, password)
}

func (r *Remote) Authenticate(_ context.Context, token string, sessionUser uint64) (uint64, error) {
	r.api.SetToken(token)
	return sessionUser, nil
}

func (r *Remote) Portals() *service.PortalService { return r.portals }

func (r *Remote) Search(ctx context.Context, _ uint64, req service.SearchRequest) (service.SearchResult, error) {
	return r.api.Search(ctx, req)
}

func (r *Remote) Ping(ctx context.Context) error { return r.api.Healthy(ctx) }

func (r *Remote) Close(context.Context) error { return nil }

// Local keeps everything in the embedded store and issues its own tokens.
type Local struct {
	store   *localstore.Store
	auth    *service.AuthService
	portals *service.PortalService
}

func NewLocal(store *localstore.Store, secret string, ttl time.Duration, log *slog.Logger) *Local {
	return &Local{
		store:   store,
		auth:    service.NewAuthService(store.Users(), service.AuthConfig{Secret: secret, TokenTTL: ttl}, nil, log),
		portals: service.NewPortalService(store.Portals(), nil, log),
	}
}

func (l *Local) Register(ctx context.Context, name, email, password string) (uint64, error) {
	return l.auth.Register(ctx, name, email, password)
}

func (l *Local) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	return l.auth.Login(ctx, email, password)
}

func (l *Local) Authenticate(_ context.Context, token string, _ uint64) (uint64, error) {
	claims, err := l.auth.VerifyToken(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (l *Local) Portals() *service.PortalService { return l.portals }

func (l *Local) Search(ctx context.Context, userID uint64, req service.SearchRequest) (service.SearchResult, error) {
	return l.portals.Search(ctx, userID, req)
}

func (l *Local) Ping(ctx context.Context) error { return l.store.Ping(ctx) }

func (l *Local) Close(ctx context.Context) error { return l.store.Close(ctx) }

// OpenBackend builds the backend selected by cfg.
func OpenBackend(ctx context.Context, cfg config.ClientConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		return NewRemote(client.New(cfg.APIURL, nil), log), nil
	case config.BackendLocal:
		var snap localstore.Snapshot = localstore.FileSnapshot{Path: cfg.DataPath}
		if cfg.Snapshot == config.SnapshotRedis {
			rdb, err := config.NewRedisClient(ctx)
			if err != nil {
				return nil, err
			}
			snap = localstore.RedisSnapshot{Client: rdb, Key: cfg.SnapshotKey}
		}
		store, err := localstore.Open(ctx, snap)
		if err != nil {
			return nil, err
		}
		return NewLocal(store, cfg.TokenSecret, cfg.TokenTTL, log), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
