// crowdplayd runs a shared emulated game session driven by majority vote:
// it polls the emulator for decoded game state, collects votes over HTTP,
// resolves a winning button per window, and sends it back to the emulator.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clawplays/crowdplay/internal/api"
	"github.com/clawplays/crowdplay/internal/config"
	"github.com/clawplays/crowdplay/internal/gamestate"
	"github.com/clawplays/crowdplay/internal/hub"
	"github.com/clawplays/crowdplay/internal/input"
	"github.com/clawplays/crowdplay/internal/retro"
	"github.com/clawplays/crowdplay/internal/store"
	"github.com/clawplays/crowdplay/internal/votes"
)

func main() {
	logger := log.New(os.Stdout, "[MAIN] ", log.LstdFlags)

	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db store.DB
	if cfg.DBPath != "" {
		sdb, err := store.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			logger.Fatalf("open database: %v", err)
		}
		defer sdb.Close()
		if err := sdb.Migrate(); err != nil {
			logger.Fatalf("migrate database: %v", err)
		}
		db = sdb
		logger.Printf("execution history at %s", cfg.DBPath)
	} else {
		logger.Println("execution history disabled (no -db path)")
	}

	emu := retro.NewClient(retro.Config{Host: cfg.EmuHost, Port: cfg.EmuPort})

	decoder := gamestate.NewDecoder(emu, nil)
	poller := gamestate.NewPoller(decoder, cfg.PollInterval, nil)

	variant := input.VariantBitmask
	if cfg.InputVariant == "named" {
		variant = input.VariantNamed
	}
	dispatcher := input.NewDispatcher(emu, variant, cfg.HoldDuration, nil)

	h := hub.NewHub(nil)

	engine := votes.NewEngine(votes.Config{
		WindowDuration: cfg.WindowDuration,
		Cooldown:       cfg.Cooldown,
		Dispatcher:     dispatcher,
		Recorder:       newRecorder(db),
		Publish:        h.Broadcast,
	})

	// New subscribers start from the current standings instead of waiting
	// for the next vote to land.
	h.OnConnect = func() []any {
		st := engine.Status()
		return []any{votes.TallyEvent{
			Type:            "tally",
			WindowID:        st.WindowID,
			TimeRemainingMs: st.TimeRemaining.Milliseconds(),
			TotalVotes:      st.TotalVotes,
			Tallies:         st.Tallies,
		}}
	}

	server := api.NewServer(engine, poller, db, h.ServeWS)
	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}

	go engine.Run(ctx)
	go poller.Run(ctx)

	go func() {
		<-ctx.Done()
		logger.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s (emulator %s:%d, window %s, cooldown %s)",
		cfg.ListenAddr, cfg.EmuHost, cfg.EmuPort, cfg.WindowDuration, cfg.Cooldown)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
	logger.Println("shutdown complete")
}

// storeRecorder bridges resolved windows into the history store.
type storeRecorder struct {
	db store.DB
}

func newRecorder(db store.DB) votes.Recorder {
	if db == nil {
		return nil
	}
	return &storeRecorder{db: db}
}

func (r *storeRecorder) RecordExecution(res votes.ExecutionResult) error {
	tallies, err := json.Marshal(res.Tallies)
	if err != nil {
		return err
	}
	return r.db.SaveExecution(&store.Execution{
		WindowID:    res.WindowID,
		Winner:      res.Winner,
		TotalVotes:  res.TotalVotes,
		TalliesJSON: string(tallies),
		ExecutedAt:  res.ExecutedAt,
	})
}
