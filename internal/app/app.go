// Package app wires configuration, storage, engines and controllers into a
// runnable HTTP handler. Everything downstream receives its dependencies
// through constructor structs; this is the only place that knows the whole
// graph.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/grantkit/internal/cache"
	"github.com/dropDatabas3/grantkit/internal/config"
	httpx "github.com/dropDatabas3/grantkit/internal/http"
	healthctrl "github.com/dropDatabas3/grantkit/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/grantkit/internal/http/controllers/oauth"
	"github.com/dropDatabas3/grantkit/internal/http/router"
	"github.com/dropDatabas3/grantkit/internal/jwt"
	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/oidc"
	"github.com/dropDatabas3/grantkit/internal/session"
	"github.com/dropDatabas3/grantkit/internal/store"
	"github.com/dropDatabas3/grantkit/internal/store/core"
	"github.com/dropDatabas3/grantkit/internal/store/pg"
	pgmigrations "github.com/dropDatabas3/grantkit/migrations/postgres"
)

// App is the wired application. The CLI reaches through it for the pieces
// the subcommands need (repository for seeding, keystore for key ops).
type App struct {
	Handler  http.Handler
	Repo     core.Repository
	Sessions *session.Store
	Keys     *jwt.Keystore
	Issuer   *jwt.Issuer

	cache cache.Cache
}

// Build wires every layer for the configuration. The caller owns the
// returned App and must Close it.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	// Storage. The client directory reads through a cache decorator; writes
	// invalidate it.
	repoCfg := store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN}
	repoCfg.Postgres.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
	repoCfg.Postgres.MaxIdleConns = cfg.Storage.Postgres.MaxIdleConns
	repoCfg.Postgres.ConnMaxLifetime = cfg.Storage.Postgres.ConnMaxLifetime
	repo, err := store.Open(ctx, repoCfg)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	if cfg.Flags.Migrate {
		if mig, ok := repo.(interface {
			RunMigrations(context.Context, fs.FS) error
		}); ok {
			if err := mig.RunMigrations(ctx, pgmigrations.FS); err != nil {
				repo.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
	}

	cacheCfg := cache.Config{Kind: cfg.Cache.Kind}
	cacheCfg.Redis.Addr = cfg.Cache.Redis.Addr
	cacheCfg.Redis.Password = cfg.Cache.Redis.Password
	cacheCfg.Redis.DB = cfg.Cache.Redis.DB
	cacheCfg.Memory.DefaultTTL = cfg.Cache.Memory.DefaultTTL
	cc, err := cache.Open(cacheCfg)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}

	cachedClients := store.NewCachedClients(repo, cc, config.Dur(cfg.Storage.ClientCacheTTL, 5*time.Minute))
	directory := store.NewDirectory(cachedClients)

	// Signing keys and token issuer.
	ks, err := jwt.LoadOrBootstrap(cfg.Issuer.KeysFile)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("keystore: %w", err)
	}
	issuer := jwt.NewIssuer(cfg.Issuer.URL, ks)
	issuer.AccessTTL = config.Dur(cfg.Issuer.AccessTTL, issuer.AccessTTL)
	issuer.IDTTL = config.Dur(cfg.Issuer.IDTokenTTL, issuer.IDTTL)
	accessTokens := jwt.NewAccessTokenIssuer(issuer)

	// Sessions and the silent-authentication validator.
	sessions := session.NewStore(cc, config.Dur(cfg.Session.TTL, session.DefaultTTL))
	validator := session.NewValidator(session.ValidatorDeps{
		Sessions: sessions,
		Consents: repo,
		Keys:     ks,
		Issuer:   cfg.Issuer.URL,
	})

	// One pipeline and one augmentor serve all three flows. Each flow gets
	// its own engine instances because flow construction registers hooks on
	// them; the code store is shared so hybrid codes redeem at the token
	// endpoint like plain ones.
	codes := oauth2.NewCodeStore(cc)
	codeTTL := config.Dur(cfg.Issuer.CodeTTL, 0)
	pipeline := oidc.NewPipeline(validator)
	augmentor := oidc.NewTokenAugmentor(jwt.NewIDTokenSigner(issuer))

	authCodeFlow := oidc.NewAuthCodeFlow(oidc.AuthCodeFlowDeps{
		Engine: oauth2.NewAuthorizationCodeEngine(oauth2.AuthCodeDeps{
			Clients: directory,
			Codes:   codes,
			CodeTTL: codeTTL,
		}),
		Pipeline:  pipeline,
		Augmentor: augmentor,
	})
	implicitFlow := oidc.NewImplicitFlow(oidc.ImplicitFlowDeps{
		Engine:    oauth2.NewImplicitEngine(oauth2.ImplicitDeps{Clients: directory}),
		Pipeline:  pipeline,
		Augmentor: augmentor,
	})
	hybridFlow := oidc.NewHybridFlow(oidc.HybridFlowDeps{
		CodeEngine: oauth2.NewAuthorizationCodeEngine(oauth2.AuthCodeDeps{
			Clients: directory,
			Codes:   codes,
			CodeTTL: codeTTL,
		}),
		ImplicitEngine: oauth2.NewImplicitEngine(oauth2.ImplicitDeps{Clients: directory}),
		Pipeline:       pipeline,
		Augmentor:      augmentor,
	})

	// Controllers.
	authorize := oauthctrl.NewAuthorizeController(oauthctrl.AuthorizeControllerDeps{
		AuthCode: authCodeFlow,
		Implicit: implicitFlow,
		Hybrid:   hybridFlow,
		Clients:  directory,
		Sessions: sessions,
		Issuer:   accessTokens,
		Cookie:   cfg.Session.CookieName,
	})
	token := oauthctrl.NewTokenController(oauthctrl.TokenControllerDeps{
		Flow:   authCodeFlow,
		Issuer: accessTokens,
	})
	health := healthctrl.NewHealthController(repo)

	// Metrics registry, with pool gauges when the backend is Postgres.
	var poolFn func() *pgxpool.Pool
	if pgStore, ok := repo.(*pg.Store); ok {
		poolFn = pgStore.Pool
	}
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: poolFn})
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Authorize: authorize,
		Token:     token,
		Health:    health,
		Metrics:   metricsHandler,
	})

	return &App{
		Handler:  handler,
		Repo:     repo,
		Sessions: sessions,
		Keys:     ks,
		Issuer:   issuer,
		cache:    cc,
	}, nil
}

// Close releases the storage and cache connections.
func (a *App) Close() {
	if a.Repo != nil {
		a.Repo.Close()
	}
	if c, ok := a.cache.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
