package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/fairguide/internal/assets"
	"github.com/jonathan/fairguide/internal/companies"
	"github.com/jonathan/fairguide/internal/config"
	"github.com/jonathan/fairguide/internal/crm"
	"github.com/jonathan/fairguide/internal/guide"
	"github.com/jonathan/fairguide/internal/latex"
	"github.com/jonathan/fairguide/internal/logger"
	"github.com/jonathan/fairguide/internal/rendering"
)

// app bundles the collaborators built once per command invocation.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	assets  *assets.Resolver
	service *guide.Service
}

// loadApp reads the configuration selected by the root flags and wires the
// guide service.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return newApp(cfg, logger.New(cfg.Logging.Level))
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	transport := crm.NewSOAPTransport(cfg.CRM.URL, cfg.CRMTimeout())
	client := crm.NewClient(transport, crm.Credentials{
		User:         cfg.CRM.User,
		PasswordHash: cfg.CRM.PasswordHash,
		Application:  cfg.CRM.AppName,
	}, log)

	normalizer, err := companies.NewNormalizer(cfg.Fields, cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	resolver, err := assets.NewResolver(assets.Config{
		BaseURL:         cfg.Assets.BaseURL,
		CacheDir:        cfg.CacheDir(),
		LogoExt:         cfg.Assets.LogoExt,
		AdExt:           cfg.Assets.AdExt,
		MaxDimension:    cfg.Assets.MaxDimension,
		MaxPixels:       cfg.Assets.MaxPixels,
		MaxBytes:        cfg.Assets.MaxBytes,
		Timeout:         cfg.AssetTimeout(),
		PlaceholderLogo: cfg.Assets.PlaceholderLogo,
		PlaceholderAd:   cfg.Assets.PlaceholderAd,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset resolver: %w", err)
	}

	renderer, err := rendering.New(cfg.LaTeX.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to load page template: %w", err)
	}

	compiler := &latex.Compiler{
		Command:  cfg.LaTeX.Command,
		Args:     cfg.LaTeX.Args,
		Timeout:  cfg.CompileTimeout(),
		TempRoot: cfg.LaTeX.TempRoot,
		Logger:   log.With("component", "latex"),
	}

	service, err := guide.NewService(guide.Options{
		CRM:        client,
		Normalizer: normalizer,
		Assets:     resolver,
		Renderer:   renderer,
		Compiler:   compiler,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, assets: resolver, service: service}, nil
}

// commandContext is cancelled on interrupt so a running compiler or download
// is stopped and its temporary files removed.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
