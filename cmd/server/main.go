package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"pickleball-sim/internal/config"
	"pickleball-sim/internal/constants"
	fxmodules "pickleball-sim/internal/fx"
	"pickleball-sim/internal/middleware"
	"pickleball-sim/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(serve),
	).Run()
}

// routes mounts both connect services plus a health check against the
// rating ledger.
func routes(s *server.PickleballServer, db *sql.DB, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(server.NewSimulationServiceHandler(s))
	mux.Handle(server.NewRatingServiceHandler(s))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return middleware.RequestID(logger)(c.Handler(mux))
}

func serve(lc fx.Lifecycle, s *server.PickleballServer, cfg *config.Config, db *sql.DB, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.ServerPort),
		Handler:           routes(s, db, logger),
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info().Str("addr", srv.Addr).Msg("pickleball api listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing ledger")
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	})
}
