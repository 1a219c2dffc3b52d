// Package main is the entry point for the Gambit Engine: a sequential
// control loop that drives one chess game to completion, validating
// every generator proposal and tracking strategic plans along the way.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/anthropics/gambit-engine/internal/config"
	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/generate"
	"github.com/anthropics/gambit-engine/internal/logging"
	"github.com/anthropics/gambit-engine/internal/plan"
	"github.com/anthropics/gambit-engine/internal/record"
	"github.com/anthropics/gambit-engine/internal/rules"
	"github.com/anthropics/gambit-engine/internal/store"
	"github.com/anthropics/gambit-engine/internal/turn"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to configuration JSON file")
	replayPath := flag.String("replay", "", "replay a saved game file and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gambit %s (commit=%s, built=%s)\n", version, commit, date)
		os.Exit(0)
	}

	if *replayPath != "" {
		if err := replay(*replayPath); err != nil {
			fatal(fmt.Sprintf("replay: %v", err))
		}
		return
	}

	// Resolve config path: --config flag > GAMBIT_CONFIG env > config.json in cwd.
	path := *configPath
	if path == "" {
		path = os.Getenv("GAMBIT_CONFIG")
	}
	if path == "" {
		path = discoverConfig()
	}
	if path == "" {
		fatal("no config found. Use --config <path>, set GAMBIT_CONFIG, or place config.json in the working directory.")
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load config: %v", err))
	}

	log := logging.New(cfg.Logging)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("game loop failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	gen, err := generate.New(generate.Options{
		Provider:    cfg.Agent.Provider,
		Model:       cfg.Agent.Model,
		Temperature: cfg.Agent.Temperature,
		BaseURL:     cfg.Agent.BaseURL,
		APIKey:      cfg.Agent.APIKey,
	})
	if err != nil {
		return fmt.Errorf("build generator: %w", err)
	}

	engine := rules.NewChessEngine()
	dag := plan.NewDAG()
	goal := domain.NewGoal(cfg.Goal)
	recorder := record.NewRecorder(engine.FEN())
	controller := turn.NewController(engine, gen, dag, goal, recorder, log)

	log.Info("game started",
		zap.String("game_id", recorder.GameID()),
		zap.String("goal", cfg.Goal),
		zap.String("provider", cfg.Agent.Provider),
		zap.String("model", cfg.Agent.Model))

	for controller.TurnIndex() < cfg.MaxTurns {
		if status := engine.Status(); status.Over {
			break
		}
		if ctx.Err() != nil {
			log.Warn("interrupted, archiving partial game")
			break
		}

		outcome, err := controller.RunTurn(ctx)
		if err != nil {
			if turn.Unresolved(err) {
				log.Warn("turn unresolved, halting game", zap.Error(err))
				break
			}
			return err
		}
		if outcome.Phase == domain.PhaseAchieved {
			log.Info("goal achieved", zap.String("move", outcome.Move))
			break
		}
	}

	status := engine.Status()
	recorder.SetResult(status.Result)
	file := recorder.Snapshot(dag)

	repo := &store.GameRepo{}
	if err := repo.Save(context.Background(), db, file); err != nil {
		return fmt.Errorf("archive game: %w", err)
	}

	if err := os.MkdirAll(cfg.GamesDir, 0o755); err != nil {
		return fmt.Errorf("create games dir: %w", err)
	}
	gamePath := filepath.Join(cfg.GamesDir, fmt.Sprintf("game_%s.json", recorder.GameID()))
	if err := record.SaveFile(gamePath, file); err != nil {
		return fmt.Errorf("save game file: %w", err)
	}

	log.Info("game archived",
		zap.String("game_id", recorder.GameID()),
		zap.String("result", status.Result),
		zap.String("method", status.Method),
		zap.Int("moves", controller.TurnIndex()),
		zap.String("file", gamePath))

	return nil
}

// replay loads a saved game file, verifies the plan DAG snapshot
// imports cleanly, and re-applies the move history move by move.
func replay(path string) error {
	file, err := record.LoadFile(path)
	if err != nil {
		return err
	}

	dag, err := plan.Import(file.PlanDAG)
	if err != nil {
		return fmt.Errorf("import plan DAG: %w", err)
	}

	fmt.Printf("=== Replaying game %s ===\n", file.Metadata.GameID)
	fmt.Printf("Created: %s\n", file.Metadata.CreatedAt)
	fmt.Printf("Result: %s, moves: %d, plans: %d\n\n",
		file.Metadata.FinalResult, file.Metadata.TotalMoves, dag.Len())

	engine, err := record.Replay(file, func(rec domain.MoveRecord, fen string) {
		fmt.Printf("Move %d: %s plays %s", rec.Number, rec.Actor, rec.MoveDescriptive)
		if rec.Fallback {
			fmt.Print(" [fallback]")
		}
		fmt.Println()
		if path := replayPlanPath(rec, dag); path != "" {
			fmt.Printf("  Plan: %s\n", path)
		}
		if rec.Reason != "" {
			fmt.Printf("  Reason: %s\n", rec.Reason)
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrReplayCorrupt) {
			return fmt.Errorf("game file is corrupt: %w", err)
		}
		return err
	}

	status := engine.Status()
	fmt.Printf("\n=== Replay complete: %s", status.Result)
	if status.Method != "" {
		fmt.Printf(" (%s)", status.Method)
	}
	fmt.Println(" ===")
	return nil
}

// replayPlanPath picks the plan path to show for a replayed move. The
// recorded path reflects the plan the move belonged to when it was
// played; the DAG's move index is latest-wins and may have re-pointed
// the move since, so it is only the fallback for older files that
// recorded no path.
func replayPlanPath(rec domain.MoveRecord, dag *plan.DAG) string {
	if rec.PlanPath != "" {
		return rec.PlanPath
	}
	if path, ok := dag.PlanPathForMove(rec.MoveUCI); ok {
		return path
	}
	return ""
}

// discoverConfig looks for config.json in the current working directory.
func discoverConfig() string {
	if _, err := os.Stat("config.json"); err == nil {
		return "config.json"
	}
	return ""
}

// fatal prints an error and exits.
func fatal(msg string) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}
