// Package app wires configuration, stores, services and the HTTP router into
// a running web server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/api"
	"github.com/digitalwallet/wallet-web/internal/api/metrics"
	"github.com/digitalwallet/wallet-web/internal/core/service"
	"github.com/digitalwallet/wallet-web/internal/infrastructure/apiclient"
	"github.com/digitalwallet/wallet-web/internal/pkg/config"
)

const (
	shutdownTimeout    = 10 * time.Second
	minJanitorInterval = time.Minute
)

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing session store")
		}
	}()

	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	walletAPI := apiclient.NewWallet(client)
	st.checks["wallet_api"] = client.Ping

	sessions := service.NewSessionManager(walletAPI, st.tokens, log, func(ch service.Change) {
		metrics.RecordTransition(ch.From, ch.To)
	})
	metrics.RegisterActiveSessions(sessions.Len)
	wallet := service.NewWalletService(walletAPI, st.pending, cfg.Session.PendingTTL, metrics.RecordRejection, log)

	go sessions.StartJanitor(ctx, max(cfg.Session.IdleTTL/2, minJanitorInterval), cfg.Session.IdleTTL)

	e := api.NewRouter(api.Deps{
		Sessions:      sessions,
		Wallet:        wallet,
		HealthChecks:  st.checks,
		SecureCookies: cfg.Session.SecureCookies,
		Log:           log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.API.BaseURL).Msg("wallet web listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
