package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/grantkit/internal/app"
	"github.com/dropDatabas3/grantkit/internal/cache"
	"github.com/dropDatabas3/grantkit/internal/config"
	httpx "github.com/dropDatabas3/grantkit/internal/http"
	"github.com/dropDatabas3/grantkit/internal/jwt"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
	"github.com/dropDatabas3/grantkit/internal/security/secret"
	"github.com/dropDatabas3/grantkit/internal/session"
	"github.com/dropDatabas3/grantkit/internal/store"
	"github.com/dropDatabas3/grantkit/internal/store/core"
)

func main() {
	var (
		configPath string
		envFile    string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:   "grantkitd",
		Short: "OpenID Connect grant server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
			if configPath == "" {
				configPath = os.Getenv("CONFIG_PATH")
			}
			if configPath == "" {
				configPath = "configs/config.yaml"
			}
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.Log.Level,
				ServiceName: "grantkitd",
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (fallback: $CONFIG_PATH, then configs/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to .env (loaded when present)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (also the default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the signing keystore",
	}
	keysRotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Mint a new active signing key; the previous one keeps verifying",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := jwt.LoadOrBootstrap(cfg.Issuer.KeysFile)
			if err != nil {
				return fmt.Errorf("keystore: %w", err)
			}
			kid, err := ks.Rotate()
			if err != nil {
				return fmt.Errorf("rotate: %w", err)
			}
			if err := ks.SaveFile(cfg.Issuer.KeysFile); err != nil {
				return fmt.Errorf("save keystore: %w", err)
			}
			fmt.Printf("Rotated. new_kid=%s file=%s\n", kid, cfg.Issuer.KeysFile)
			return nil
		},
	}
	keysJWKSCmd := &cobra.Command{
		Use:   "jwks",
		Short: "Print the public JWKS for the keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := jwt.LoadOrBootstrap(cfg.Issuer.KeysFile)
			if err != nil {
				return fmt.Errorf("keystore: %w", err)
			}
			raw, err := ks.JWKSJSON()
			if err != nil {
				return fmt.Errorf("jwks: %w", err)
			}
			fmt.Println(string(raw))
			return nil
		},
	}
	keysCmd.AddCommand(keysRotateCmd, keysJWKSCmd)

	root.AddCommand(serveCmd, keysCmd, newSeedCmd(&cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runServe(cfg *config.Config) error {
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log := logger.L()
	log.Info("server up",
		logger.String("addr", cfg.Server.Addr),
		logger.String("issuer", cfg.Issuer.URL),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
	)

	err = httpx.Serve(ctx, httpx.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     config.Dur(cfg.Server.ReadTimeout, 10*time.Second),
		WriteTimeout:    config.Dur(cfg.Server.WriteTimeout, 30*time.Second),
		ShutdownTimeout: config.Dur(cfg.Server.ShutdownTimeout, 10*time.Second),
	}, a.Handler)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// newSeedCmd registers demo data against the configured backends: a client,
// a consent, and optionally a login session whose sid is printed for use as
// the session cookie. Backends must be shared (postgres, redis) for a
// separately running server to see the rows.
func newSeedCmd(cfg **config.Config) *cobra.Command {
	var (
		clientID     string
		clientName   string
		clientSecret string
		redirectURIs []string
		scopes       []string
		subject      string
		withSession  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo client, consent, and optional session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			ctx := cmd.Context()

			repoCfg := store.Config{Driver: c.Storage.Driver, DSN: c.Storage.DSN}
			repoCfg.Postgres.MaxOpenConns = c.Storage.Postgres.MaxOpenConns
			repoCfg.Postgres.MaxIdleConns = c.Storage.Postgres.MaxIdleConns
			repoCfg.Postgres.ConnMaxLifetime = c.Storage.Postgres.ConnMaxLifetime
			repo, err := store.Open(ctx, repoCfg)
			if err != nil {
				return fmt.Errorf("store: %w", err)
			}
			defer repo.Close()

			client := &core.Client{
				ID:           clientID,
				Name:         clientName,
				RedirectURIs: redirectURIs,
				Scopes:       scopes,
				GrantTypes:   []string{"authorization_code", "implicit"},
				ResponseTypes: []string{
					"code", "token", "id_token", "id_token token",
					"code id_token", "code token", "code id_token token",
				},
			}
			if clientSecret != "" {
				phc, err := secret.Hash(secret.Default, clientSecret)
				if err != nil {
					return fmt.Errorf("hash client secret: %w", err)
				}
				client.SecretHash = phc
			}
			if err := repo.UpsertClient(ctx, client); err != nil {
				return fmt.Errorf("upsert client: %w", err)
			}

			if err := repo.UpsertConsent(ctx, &core.Consent{
				Subject:       subject,
				ClientID:      clientID,
				GrantedScopes: scopes,
			}); err != nil {
				return fmt.Errorf("upsert consent: %w", err)
			}

			var sid string
			if withSession {
				cacheCfg := cache.Config{Kind: c.Cache.Kind}
				cacheCfg.Redis.Addr = c.Cache.Redis.Addr
				cacheCfg.Redis.Password = c.Cache.Redis.Password
				cacheCfg.Redis.DB = c.Cache.Redis.DB
				cacheCfg.Memory.DefaultTTL = c.Cache.Memory.DefaultTTL
				cc, err := cache.Open(cacheCfg)
				if err != nil {
					return fmt.Errorf("cache: %w", err)
				}
				sessions := session.NewStore(cc, config.Dur(c.Session.TTL, session.DefaultTTL))
				sess := &session.Session{Subject: subject, AMR: []string{"pwd"}}
				if err := sessions.Create(ctx, sess); err != nil {
					return fmt.Errorf("create session: %w", err)
				}
				sid = sess.ID
			}

			clientType := "public"
			if client.SecretHash != "" {
				clientType = "confidential"
			}
			fmt.Println("Seed ready")
			fmt.Println("--------------------------------------------------")
			fmt.Printf("Client:   %s (id=%s, type=%s)\n", clientName, clientID, clientType)
			fmt.Printf("Redirect: %s\n", strings.Join(redirectURIs, ", "))
			fmt.Printf("Scopes:   %s\n", strings.Join(scopes, " "))
			fmt.Printf("Consent:  subject=%s scopes=%s\n", subject, strings.Join(scopes, " "))
			if sid != "" {
				fmt.Println("--------------------------------------------------")
				fmt.Printf("Session:  sid=%s (send as Cookie: %s=%s)\n", sid, c.Session.CookieName, sid)
			}
			fmt.Println("--------------------------------------------------")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "web-frontend", "client identifier")
	cmd.Flags().StringVar(&clientName, "client-name", "Web Frontend", "display name")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "client secret; empty registers a public client")
	cmd.Flags().StringSliceVar(&redirectURIs, "redirect-uri", []string{"http://localhost:3000/callback"}, "allowed redirect URI (repeatable)")
	cmd.Flags().StringSliceVar(&scopes, "scopes", []string{"openid", "profile", "email"}, "allowed scopes")
	cmd.Flags().StringVar(&subject, "subject", "demo-user", "subject the consent and session belong to")
	cmd.Flags().BoolVar(&withSession, "session", false, "also create a login session and print its sid")

	return cmd
}
