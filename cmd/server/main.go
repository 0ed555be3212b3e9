package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foodDeliveryAdmin/internal/backend"
	"foodDeliveryAdmin/internal/config"
	"foodDeliveryAdmin/internal/dashboard"
	"foodDeliveryAdmin/internal/db"
	"foodDeliveryAdmin/internal/events"
	grpcserver "foodDeliveryAdmin/internal/grpc"
	"foodDeliveryAdmin/internal/session"
	"foodDeliveryAdmin/internal/signin"
	"foodDeliveryAdmin/internal/web"
	"foodDeliveryAdmin/repository"
)

func main() {
	dev := flag.Bool("dev", false, "use development defaults for JWT_SECRET and SESSION_SECRET")
	flag.Parse()

	// Load configuration
	load := config.Load
	if *dev {
		load = config.LoadWithDefaults
	}
	cfg, err := load()
	if err != nil {
		slog.Error("load_config_failed", slog.Any("err", err))
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	log.Info("config_loaded", slog.String("config", cfg.String()))

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Warn("close_db_failed", slog.Any("err", err))
		}
	}()

	sessions := session.NewProvider(repository.NewSessionRepository(d), cfg.Auth.SessionSecret, cfg.Auth.SessionMaxAge, log)
	journal := repository.NewDispatchLogRepository(d)

	var publisher events.Publisher = events.Nop{}
	if cfg.Events.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.Events.NATSURL)
		if err != nil {
			return err
		}
		publisher = p
		log.Info("events_enabled", slog.String("nats_url", cfg.Events.NATSURL))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close_publisher_failed", slog.Any("err", err))
		}
	}()

	client := backend.New(backend.Config{
		BaseURL:          cfg.Backend.BaseURL,
		Timeout:          cfg.Backend.Timeout,
		SendOTPPath:      cfg.OTP.SendPath,
		VerifyOTPPath:    cfg.OTP.VerifyPath,
		GoogleSignInPath: cfg.Google.SignInPath,
	})
	registry := dashboard.NewRegistry(func(token string) dashboard.Backend { return client.WithToken(token) },
		dashboard.Deps{Journal: journal, Events: publisher, Log: log})
	sessions.OnEnd(registry.Drop)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := web.Deps{
		Sessions:     sessions,
		Registry:     registry,
		Journal:      journal,
		CookieSecure: cfg.HTTP.CookieSecure,
		Log:          log,
	}
	switch cfg.Auth.Mode {
	case config.AuthModeGoogle:
		deps.Google = signin.NewGoogleFlow(signin.GoogleConfig{
			ClientID:      cfg.Google.ClientID,
			ClientSecret:  cfg.Google.ClientSecret,
			RedirectURL:   cfg.Google.RedirectURL,
			AllowedDomain: cfg.Google.AllowedDomain,
			JWTSecret:     cfg.Auth.JWTSecret,
		}, client, sessions, log)
	default:
		throttle := signin.NewThrottle(cfg.OTP.RateInterval, cfg.OTP.RateBurst)
		flows := signin.NewFlowStore(15 * time.Minute)
		deps.OTP = signin.NewOTPService(client, sessions, throttle, signin.OTPConfig{
			CountryCode: cfg.OTP.CountryCode,
			SendTimeout: cfg.OTP.SendTimeout,
			JWTSecret:   cfg.Auth.JWTSecret,
		}, log)
		deps.Flows = flows
		go throttle.Run(ctx, time.Minute, 10*time.Minute)
		go flows.Run(ctx, time.Minute)
	}
	go sessions.Run(ctx, 10*time.Minute)
	go registry.Run(ctx, 5*time.Minute, time.Hour)

	// Start gRPC
	grpcSrv, grpcAddr, err := grpcserver.StartGRPC(cfg.GRPC.Address, sessions, journal, log)
	if err != nil {
		return err
	}
	log.Info("grpc_listening", slog.String("addr", grpcAddr.String()))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           web.NewServer(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("http_listening", slog.String("addr", cfg.HTTP.Address), slog.String("auth_mode", cfg.Auth.Mode))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Wait for signal
	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	grpcSrv.Drain()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.Any("err", err))
	}
	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("grpc_shutdown_failed", slog.Any("err", err))
	}
	return err
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
