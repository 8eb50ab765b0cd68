package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/decker502/vtour/internal/logging"
	"github.com/decker502/vtour/pkg/app"
	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/embedded"
)

func main() {
	configPath := flag.String("config", "", "viewer config file (YAML)")
	catalogPath := flag.String("catalog", "", "tour catalog file; overrides catalogPath from the config")
	location := flag.String("location", "", "open this location directly instead of the landing page")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	embedded.Init(dataFS)

	if err := run(*configPath, *catalogPath, *location, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "vtour: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, catalogPath, location string, verbose bool) error {
	cfg, err := config.LoadViewerConfig(configPath)
	if err != nil {
		return err
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	if location != "" {
		cfg.StartLocation = location
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	var fileWriter io.Writer
	if logFile != nil {
		defer logFile.Close()
		fileWriter = logFile
	}
	logger := logging.Setup(cfg.LogLevel, os.Stderr, fileWriter)
	log.Logger = logger

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	logger.Info().
		Str("catalog", catalogSource(cfg.CatalogPath)).
		Int("locations", len(catalog.Locations)).
		Int("popups", len(catalog.Popups)).
		Msg("catalog loaded")

	viewer, err := app.NewApp(app.Config{
		Viewer:  cfg,
		Catalog: catalog,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("viewer initialization failed: %w", err)
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	if viewer.Settings().GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(viewer); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}

// loadCatalog 从磁盘读取目录；path 为空时使用内嵌副本
func loadCatalog(path string) (*config.Catalog, error) {
	if path != "" {
		return config.LoadCatalog(path)
	}
	data, err := embedded.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return config.ParseCatalog(data)
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded:" + embedded.CatalogPath
	}
	return path
}
