package game

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"babilonia/assets"
	"babilonia/internal/backend"
	"babilonia/internal/config"
	"babilonia/internal/dialogue"
	"babilonia/internal/gamemap"
	"babilonia/internal/watch"
)

// Setup derives game options from the configuration: the world source,
// the dialogue provider, the reset client and the random source.
// Offline play has no service to reset.
func Setup(cfg *config.Config, log *slog.Logger) Options {
	opts := Options{
		World:        WorldFile(cfg.WorldFile),
		Log:          log,
		VictoryDelay: cfg.VictoryDelay,
	}

	switch cfg.Dialogue {
	case config.DialogueOffline:
		opts.Provider = dialogue.NewScriptProvider(assets.Guide, assets.OfflineFinale, assets.Witnesses)
	case config.DialogueHTTP:
		opts.Provider = dialogue.NewHTTPProvider(cfg.APIBase)
		opts.Reset = backend.NewClient(cfg.APIBase, cfg.ResetTimeout)
	default:
		opts.Provider = dialogue.NewWebSocketProvider(cfg.APIBase)
		opts.Reset = backend.NewClient(cfg.APIBase, cfg.ResetTimeout)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts.Rand = rand.New(rand.NewSource(seed))

	log.Info("game configured",
		"dialogue", cfg.Dialogue,
		"api", cfg.APIBase,
		"world", cfg.WorldFile,
		"seed", seed,
	)
	return opts
}

// WorldFile returns a source reading path on every call. An empty path
// selects the embedded city.
func WorldFile(path string) WorldSource {
	if path == "" {
		return func() (*gamemap.World, error) { return gamemap.Parse(assets.DefaultWorld) }
	}
	return func() (*gamemap.World, error) { return gamemap.LoadFile(path) }
}

// WatchWorld re-reads path whenever it changes and delivers the parsed
// world on the returned channel, newest first. Edits that do not parse are
// logged and skipped. Closing the returned Closer stops the watch and
// closes the channel.
func WatchWorld(path string, log *slog.Logger) (<-chan *gamemap.World, io.Closer, error) {
	w, err := watch.New(path)
	if err != nil {
		return nil, nil, fmt.Errorf("watch world: %w", err)
	}

	out := make(chan *gamemap.World, 1)
	go func() {
		defer close(out)
		for {
			select {
			case name, ok := <-w.Events:
				if !ok {
					return
				}
				desc, err := gamemap.LoadFile(name)
				if err != nil {
					log.Warn("world edit rejected", "file", name, "error", err)
					continue
				}
				log.Info("world file changed", "file", name)
				select {
				case <-out:
				default:
				}
				out <- desc
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("world watcher", "error", err)
			}
		}
	}()
	return out, w, nil
}
