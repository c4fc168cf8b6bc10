package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/team5526/pitcrew/internal/app"
	"github.com/team5526/pitcrew/internal/config"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/pkg/tba"
	"github.com/team5526/pitcrew/web"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "pitcrew.yaml", "Path to config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	logLevel := flag.String("loglevel", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `PitCrew - FRC pit operations server

Usage:
  pitcrew [options]

Options:
  -config string    Path to config file (default "pitcrew.yaml")
  -addr string      Listen address, e.g. :8080 (overrides config)
  -db string        SQLite database path (overrides config)
  -loglevel string  Log level: debug, info, warn, error (overrides config)
  -version          Show version and exit
  -help             Show this help message

Examples:
  pitcrew                            # Run with pitcrew.yaml (or defaults)
  pitcrew -addr :9090                # Listen on port 9090
  pitcrew -db /data/pitcrew.db       # Use custom database path
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("pitcrew %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	var appLog *logger.SlogLogger
	if cfg.LogFile != "" {
		appLog = logger.NewWithFile(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	} else {
		appLog = logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	}

	tbaClient := tba.NewHTTPClient(cfg.TBA.BaseURL, cfg.TBA.APIKey, appLog)

	a, err := app.New(appLog, cfg, tbaClient, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		log.Fatal(err)
	}
}
