// Command studyhub serves the studyhub calendar API.
//
// Usage:
//
//	JWT_SECRET=... studyhub [serve]
//	JWT_SECRET=... studyhub seed -f fixtures.yaml
//	JWT_SECRET=... studyhub token -user alice -ttl 24h
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/p-blackswan/studyhub/internal/api"
	"github.com/p-blackswan/studyhub/internal/auth"
	"github.com/p-blackswan/studyhub/internal/config"
	"github.com/p-blackswan/studyhub/internal/health"
	"github.com/p-blackswan/studyhub/internal/metrics"
	"github.com/p-blackswan/studyhub/internal/seed"
	"github.com/p-blackswan/studyhub/internal/store"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "seed":
		err = runSeed(cfg, args, logger)
	case "token":
		err = runToken(cfg, args)
	default:
		err = fmt.Errorf("unknown command %q (want serve, seed or token)", cmd)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

func serve(cfg *config.Config, logger zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("addr", cfg.HTTPListenAddr).
		Str("db_path", cfg.DBPath).
		Str("timezone", loc.String()).
		Msg("starting studyhub")

	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	checker := health.NewChecker(logger)
	checker.Register("database", checker.PingCheck("database", st))

	srv := api.NewServer(api.ServerConfig{
		ListenAddr:  cfg.HTTPListenAddr,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit: api.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	}, api.Deps{
		Store:    st,
		Verifier: auth.NewVerifier(cfg.JWTSecret),
		Checker:  checker,
		Metrics:  metrics.New(),
		Location: loc,
	}, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("api server shutdown error")
	}

	logger.Info().Msg("studyhub stopped")
	return nil
}

func runSeed(cfg *config.Config, args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("f", "", "YAML fixture file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("seed: -f is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	fixture, err := seed.Load(*file)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := seed.New(st, loc, logger).Apply(context.Background(), fixture)
	if err != nil {
		return err
	}
	logger.Info().
		Int("projects", sum.Projects).
		Int("tasks", sum.Tasks).
		Int("project_events", sum.ProjectEvents).
		Int("personal_events", sum.PersonalEvents).
		Msg("seed complete")
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "user id to issue the token for")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := auth.NewVerifier(cfg.JWTSecret).Issue(*user, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
