package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mysocial/auth-front/internal/config"
	"github.com/mysocial/auth-front/internal/crypto"
	"github.com/mysocial/auth-front/internal/exchange"
	"github.com/mysocial/auth-front/internal/log"
	"github.com/mysocial/auth-front/internal/pending"
	"github.com/mysocial/auth-front/internal/providers"
	"github.com/mysocial/auth-front/internal/resolver"
	"github.com/mysocial/auth-front/internal/server"
)

const cleanupInterval = 1 * time.Minute

// AuthFront represents the complete OAuth relay application
type AuthFront struct {
	config     config.Config
	httpServer *server.HTTPServer
	firestore  *pending.FirestoreStore
	cleanup    *pending.CleanupManager
}

// NewAuthFront creates a new relay application with all dependencies built
func NewAuthFront(ctx context.Context, cfg config.Config) (*AuthFront, error) {
	log.LogInfoWithFields("authfront", "Building OAuth relay application", map[string]any{
		"baseURL":   cfg.Relay.BaseURL,
		"providers": len(cfg.Relay.Providers),
		"storage":   string(cfg.Relay.Session.Storage),
	})

	store, firestoreStore, err := setupPendingStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup pending-login store: %w", err)
	}

	clientIDs := make(map[string]string, len(cfg.Relay.Providers))
	for name, creds := range cfg.Relay.Providers {
		clientIDs[name] = creds.ClientID
	}
	registry := providers.NewRegistry(cfg.Relay.CallbackURL, clientIDs)

	exchangeClient, err := exchange.NewClient(cfg.Relay.Exchange.BaseURL, cfg.Relay.Exchange.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange client: %w", err)
	}

	rs := resolver.New(store, exchangeClient, cfg.Relay.Exchange.ClearOnFailure)

	mux := buildHTTPHandler(registry, store, rs)
	httpServer := server.NewHTTPServer(mux, cfg.Relay.Addr)

	app := &AuthFront{
		config:     cfg,
		httpServer: httpServer,
		firestore:  firestoreStore,
	}
	if firestoreStore != nil {
		app.cleanup = pending.NewCleanupManager(firestoreStore, cleanupInterval)
	}
	return app, nil
}

// Run starts the relay and blocks until shutdown
func (a *AuthFront) Run() error {
	log.LogInfoWithFields("authfront", "Starting OAuth relay application", map[string]any{
		"addr": a.config.Relay.Addr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cleanup != nil {
		a.cleanup.Start(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			log.LogInfoWithFields("authfront", "Received shutdown signal", map[string]any{
				"signal": sig.String(),
			})
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return a.httpServer.Stop(shutdownCtx)
	})

	err := g.Wait()

	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.firestore != nil {
		if cerr := a.firestore.Close(); cerr != nil {
			log.LogWarnWithFields("authfront", "Failed to close Firestore client", map[string]any{
				"error": cerr.Error(),
			})
		}
	}

	if err != nil {
		log.LogErrorWithFields("authfront", "Application exited with error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	log.Logf("Application shutdown complete")
	return nil
}

// setupPendingStore creates the pending-login store based on configuration.
// The second return value is non-nil only for the Firestore backend, which
// needs explicit cleanup and closing.
func setupPendingStore(ctx context.Context, cfg config.Config) (pending.Store, *pending.FirestoreStore, error) {
	session := cfg.Relay.Session

	switch session.Storage {
	case config.PendingStorageFirestore:
		log.LogInfoWithFields("pending", "Using Firestore pending-login store", map[string]any{
			"project":    session.GCPProject,
			"database":   session.FirestoreDatabase,
			"collection": session.FirestoreCollection,
		})
		encryptor, err := crypto.NewEncryptor([]byte(session.Secret))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create encryptor: %w", err)
		}
		fs, err := pending.NewFirestoreStore(
			ctx,
			session.GCPProject,
			session.FirestoreDatabase,
			session.FirestoreCollection,
			encryptor,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Firestore store: %w", err)
		}
		return fs, fs, nil

	case config.PendingStorageMemory:
		log.LogInfoWithFields("pending", "Using in-memory pending-login store", map[string]any{})
		return pending.NewMemoryStore(), nil, nil

	default:
		log.LogInfoWithFields("pending", "Using cookie pending-login store", map[string]any{})
		store, err := pending.NewCookieStore(string(session.Secret))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create cookie store: %w", err)
		}
		return store, nil, nil
	}
}

// buildHTTPHandler creates the complete HTTP handler with all routing and middleware
func buildHTTPHandler(registry *providers.Registry, store pending.Store, rs *resolver.Resolver) http.Handler {
	mux := http.NewServeMux()

	relayLogger := server.NewLoggerMiddleware("relay")
	apiLogger := server.NewLoggerMiddleware("api")
	relayRecover := server.NewRecoverMiddleware("relay")
	apiRecover := server.NewRecoverMiddleware("api")

	relayMiddleware := []server.MiddlewareFunc{relayLogger, relayRecover}
	apiMiddleware := []server.MiddlewareFunc{apiLogger, apiRecover}

	relayHandlers := server.NewRelayHandlers(registry, store, rs)
	walletHandlers := server.NewWalletHandlers()

	mux.Handle("/health", server.NewHealthHandler())

	mux.Handle("GET /login", server.ChainMiddleware(http.HandlerFunc(relayHandlers.LoginHandler), relayMiddleware...))
	mux.Handle("GET /callback", server.ChainMiddleware(http.HandlerFunc(relayHandlers.CallbackHandler), relayMiddleware...))
	mux.Handle("GET /error", server.ChainMiddleware(http.HandlerFunc(relayHandlers.ErrorPageHandler), relayMiddleware...))

	mux.Handle("POST /api/auth/callback", server.ChainMiddleware(http.HandlerFunc(relayHandlers.ResolveHandler), apiMiddleware...))
	mux.Handle("POST /api/wallet/create", server.ChainMiddleware(http.HandlerFunc(walletHandlers.CreateHandler), apiMiddleware...))
	mux.Handle("POST /api/wallet/import", server.ChainMiddleware(http.HandlerFunc(walletHandlers.ImportHandler), apiMiddleware...))

	log.LogInfoWithFields("server", "OAuth relay server initialized", nil)
	return mux
}
