package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"embedgen/internal/chunker"
	"embedgen/internal/config"
	"embedgen/internal/logging"
	"embedgen/internal/service"
	"embedgen/internal/tui"
	"embedgen/internal/vectorstore/memory"
)

func main() {
	_ = config.LoadEnv()

	var cfgPath string
	var logFile string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/embedgen/config.yaml if not provided)")
	flag.StringVar(&logFile, "log-file", "embedgen-playground.log", "Log file (the terminal belongs to the UI)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	// Console logging would draw over the TUI.
	logCfg := cfg.Logging
	logCfg.Console = false
	if logCfg.OutputFile == "" {
		logCfg.OutputFile = logFile
	}
	closer, err := logging.Setup(logCfg)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer closer.Close()

	svc := service.NewEmbeddingService(chunker.NewLineChunker(), memory.NewStorage())
	m := tui.New(svc, cfg.Playground, service.SettingsFromConfig(cfg.Embedder))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
