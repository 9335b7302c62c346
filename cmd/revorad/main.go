package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"revora/config"
	"revora/core/events"
	"revora/core/state"
	"revora/native/revshare"
	"revora/observability/logging"
	"revora/rpc"
	"revora/storage"
)

func main() {
	configPath := flag.String("config", "revora.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "revorad: load config: %v\n", err)
		os.Exit(1)
	}

	var sink io.Writer
	if cfg.LogPath != "" {
		sink = &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     28,
			Compress:   true,
		}
	}
	log := logging.Setup("revorad", cfg.Env, sink)

	db, err := openDatabase(cfg)
	if err != nil {
		log.Error("open database", "backend", cfg.DBBackend, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("close database", "err", err)
		}
	}()

	manager := state.NewManager(db)
	engine := revshare.NewEngine()
	engine.SetState(manager)
	recorder := events.NewRecorder()
	engine.SetEmitter(recorder)

	if cfg.Testnet {
		if err := manager.RevShareSetTestnetMode(true); err != nil {
			log.Error("enable testnet mode", "err", err)
			os.Exit(1)
		}
		log.Warn("testnet mode enabled, offering validation is relaxed")
	}
	if cfg.RPCToken == "" {
		log.Warn("no RPC token configured, mutating methods are unauthenticated")
	}

	server := rpc.NewServer(engine, recorder, cfg.RPCToken, log)
	if err := server.Start(cfg.RPCAddress); err != nil {
		log.Error("rpc server stopped", "err", err)
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.DBBackend {
	case "memory":
		return storage.NewMemDB(), nil
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "revora.db"))
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "leveldb"))
	}
}
