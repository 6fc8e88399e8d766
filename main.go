// Command babilonia plays the game in the local terminal.
//
// Settings come from the environment (see internal/config); the flags
// below override the matching variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"babilonia/internal/config"
	"babilonia/internal/game"
	"babilonia/internal/logger"

	"github.com/gdamore/tcell/v2"
)

func main() {
	world := flag.String("world", "", "world description file (overrides BABILONIA_WORLD)")
	seed := flag.Int64("seed", 0, "random seed (overrides BABILONIA_SEED)")
	offline := flag.Bool("offline", false, "play with scripted dialogue instead of the service")
	flag.Parse()

	if err := run(*world, *seed, *offline); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(world string, seed int64, offline bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if world != "" {
		cfg.WorldFile = world
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if offline {
		cfg.Dialogue = config.DialogueOffline
	}

	logFile, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log := logger.Setup(cfg, logFile)

	opts := game.Setup(cfg, log)
	if cfg.WatchWorld && cfg.WorldFile != "" {
		worlds, watcher, err := game.WatchWorld(cfg.WorldFile, log)
		if err != nil {
			log.Warn("world hot reload disabled", "error", err)
		} else {
			defer watcher.Close()
			opts.Reload = worlds
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()

	g, err := game.New(screen, opts)
	if err != nil {
		screen.Fini()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = g.Run(ctx, cfg.Tick)
	if errors.Is(err, context.Canceled) {
		log.Info("interrupted")
		return nil
	}
	return err
}
