package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"taeu.kr/fitedge/internal/auth"
	"taeu.kr/fitedge/internal/config"
	"taeu.kr/fitedge/internal/journal"
	journalstore "taeu.kr/fitedge/internal/journal/store"
	"taeu.kr/fitedge/internal/origin"
	"taeu.kr/fitedge/internal/platform/database"
	"taeu.kr/fitedge/internal/refresh"
	"taeu.kr/fitedge/internal/status"
	"taeu.kr/fitedge/internal/system"
)

var (
	goEnv     = "development"
	version   = "dev"
	commit    = ""
	buildDate = ""
)

const (
	shutdownTimeout  = 10 * time.Second
	journalRetention = 30 * 24 * time.Hour
	pruneInterval    = 6 * time.Hour
)

func main() {
	setupLogger()

	log.Info().Msg("[Main] Starting Edge Gateway...")
	log.Info().Msgf("[Main] environment: %s", goEnv)

	config.SetConfig(goEnv)
	if verr := config.Validate(config.Conf, goEnv); verr != nil {
		log.Fatal().Str("reason", verr.Message).Msg("[Main] invalid configuration")
	}

	db, err := database.NewDB(config.Conf.Datasource.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("[Main] failed to open journal database")
	}
	defer db.Close()

	journalService := journal.NewService(journalstore.NewStore(db))

	baseURL := config.Conf.Backend.ResolveBaseURL(goEnv)
	refresher := refresh.New(refresh.Config{
		BaseURL:        baseURL,
		RequestTimeout: config.Conf.Backend.Timeout(),
	}, nil)

	gateway := auth.NewGateway(auth.Config{
		LoginPath:      config.Conf.Gateway.LoginPath,
		PublicRoutes:   config.Conf.Gateway.PublicRoutes,
		BypassPrefixes: config.Conf.Gateway.BypassPrefixes,
		MaxRefreshHops: config.Conf.Gateway.MaxRefreshHops,
	}, refresher, auth.WithRecorder(journalService))

	pageOrigin, err := origin.New(origin.Config{
		URL:       config.Conf.Origin.URL,
		StaticDir: config.Conf.Origin.StaticDir,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("[Main] failed to configure page origin")
	}

	probe := status.NewBackendProbe(status.BackendProbeConfig{
		BaseURL:        baseURL,
		RequestTimeout: 3 * time.Second,
	})

	statusHandler := status.NewHandler(probe, journalService, config.Conf.Server.Port)
	deps := routerDeps{
		gateway: gateway,
		origin:  pageOrigin,
		public: []routeRegistrar{
			auth.NewHandler(),
			statusHandler,
		},
		admin: []routeRegistrar{
			routeRegistrarFunc(statusHandler.RegisterAdminRoutes),
			system.NewHandler(system.Meta{Version: version, Commit: commit, BuildDate: buildDate}),
			config.NewHandler(goEnv),
		},
	}

	servers := []*http.Server{{
		Addr:              ":" + config.Conf.Server.Port,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if adminAddr := strings.TrimSpace(config.Conf.Server.AdminAddr); adminAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              adminAddr,
			Handler:           newAdminRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		})
	} else {
		log.Warn().Msg("[Main] server.admin_addr is empty, admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneJournal(ctx, journalService)

	errCh := make(chan error, len(servers))
	for _, server := range servers {
		go func(server *http.Server) {
			log.Info().Str("addr", server.Addr).Str("backend", baseURL).Msg("[Main] server is running")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(server)
	}

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("[Main] server failed")
	case <-ctx.Done():
	}

	log.Info().Msg("[Main] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Str("addr", server.Addr).Msg("[Main] graceful shutdown failed")
		}
	}
	log.Info().Msg("[Main] server stopped")
}

func setupLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	if goEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// pruneJournal은 보존 기간이 지난 갱신 기록을 주기적으로 지운다
func pruneJournal(ctx context.Context, svc *journal.Service) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		deleted, err := svc.Prune(ctx, journalRetention)
		if err != nil {
			log.Warn().Err(err).Msg("[Main] failed to prune refresh journal")
		} else if deleted > 0 {
			log.Info().Int64("deleted", deleted).Msg("[Main] pruned refresh journal")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
