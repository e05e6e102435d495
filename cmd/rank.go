package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rnwolfe/cram/internal/config"
	"github.com/rnwolfe/cram/internal/priority"
	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
	"github.com/rnwolfe/cram/internal/task"
	"github.com/rnwolfe/cram/internal/tui"
	"github.com/rnwolfe/cram/internal/ui"
)

// lastRankingKey is the kv slot holding the most recent ranking JSON.
const lastRankingKey = "last_ranking"

var (
	rankBreakdown   bool
	rankJSON        bool
	rankWatch       bool
	rankInterval    time.Duration
	rankInteractive bool
	rankLimit       int
)

var rankCmd = &cobra.Command{
	Use:   "rank [n]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Rank every pending task by priority",
	Long: `Score and rank every pending task. The score adds the subject's
credit weight, its difficulty, the task's grading weight, and deadline
pressure, then discounts by how well you're already doing in the
subject. Nothing is ever filtered out: a task with no due date and no
weights still ranks, just low.`,
	RunE: runRank,
}

func init() {
	addRankFlags(rankCmd.Flags())
}

// addRankFlags registers the rank flag set. Split out so the flag
// definitions stay next to their variables.
func addRankFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&rankBreakdown, "breakdown", "b", false, "show per-task score components")
	fs.BoolVar(&rankJSON, "json", false, "emit the ranking as JSON")
	fs.BoolVarP(&rankWatch, "watch", "w", false, "re-rank on an interval until interrupted")
	fs.DurationVar(&rankInterval, "interval", 0, "watch refresh period (default from config, 10m)")
	fs.BoolVarP(&rankInteractive, "interactive", "i", false, "browse the ranking in a TUI")
	fs.IntVarP(&rankLimit, "limit", "n", 0, "show only the top N tasks")
}

func runRank(_ *cobra.Command, args []string) error {
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count %q: want a positive number", args[0])
		}
		rankLimit = n
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	if rankInteractive {
		return runRankTUI(db)
	}
	if rankWatch {
		return runRankWatch(db)
	}

	snap, err := buildSnapshot(db)
	if err != nil {
		return err
	}
	ranked := <-rankSnapshot(snap, time.Now())
	if err := persistRanking(db, ranked); err != nil {
		return err
	}

	if rankJSON {
		return printRankingJSON(ranked)
	}
	printRanking(snap, ranked)
	return nil
}

// runRankWatch re-ranks on a timer. Each tick computes off the main
// goroutine; when ticks overlap, the freshest result wins.
func runRankWatch(db *store.DB) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	interval := rankInterval
	if interval <= 0 {
		interval = cfg.WatchInterval()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	render := func() error {
		snap, err := buildSnapshot(db)
		if err != nil {
			return err
		}
		ranked := <-rankSnapshot(snap, time.Now())
		if err := persistRanking(db, ranked); err != nil {
			return err
		}
		fmt.Print("\033[H\033[2J")
		printRanking(snap, ranked)
		fmt.Println(ui.Muted.Render(fmt.Sprintf("  refreshing every %s · ctrl-c to stop", interval)))
		return nil
	}

	if err := render(); err != nil {
		return err
	}
	for {
		select {
		case <-ticker.C:
			if err := render(); err != nil {
				return err
			}
		case <-sig:
			fmt.Println()
			return nil
		}
	}
}

func runRankTUI(db *store.DB) error {
	if !tui.IsTTY() {
		return fmt.Errorf("interactive mode needs a terminal (try plain `cram rank`)")
	}

	snap, err := buildSnapshot(db)
	if err != nil {
		return err
	}
	ranked := <-rankSnapshot(snap, time.Now())
	if err := persistRanking(db, ranked); err != nil {
		return err
	}

	actions, err := tui.RunRank(ranked)
	if err != nil {
		return err
	}

	tasks := task.NewStore(db.Conn())
	for _, a := range actions {
		switch a.Type {
		case "done":
			if t, err := tasks.Done(a.ID); err == nil {
				ui.Ok("Done: " + t.Title)
			} else {
				ui.Warn(err.Error())
			}
		case "remove":
			if err := tasks.Remove(a.ID); err == nil {
				ui.Ok("Removed task " + a.ID[:8])
			} else {
				ui.Warn(err.Error())
			}
		}
	}
	return nil
}

// buildSnapshot assembles the engine input from the database and config.
func buildSnapshot(db *store.DB) (priority.Snapshot, error) {
	subjects := subject.NewStore(db.Conn())
	tasks := task.NewStore(db.Conn())

	list, err := subjects.List()
	if err != nil {
		return priority.Snapshot{}, fmt.Errorf("loading subjects: %w", err)
	}
	grouped, err := tasks.BySubject()
	if err != nil {
		return priority.Snapshot{}, fmt.Errorf("loading tasks: %w", err)
	}
	tables, err := subjects.WeightTables()
	if err != nil {
		return priority.Snapshot{}, fmt.Errorf("loading weight tables: %w", err)
	}
	perf, err := subjects.PerformanceMap()
	if err != nil {
		return priority.Snapshot{}, fmt.Errorf("loading performance: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return priority.Snapshot{}, fmt.Errorf("loading config: %w", err)
	}
	tables.Defaults = defaultWeightsFromConfig(cfg)

	snap := priority.Snapshot{
		Tasks:       grouped,
		Performance: perf,
		Weights:     tables,
	}
	for _, sub := range list {
		snap.Subjects = append(snap.Subjects, sub.Engine())
	}
	return snap, nil
}

// defaultWeightsFromConfig merges configured overrides onto the built-in
// fallback weights.
func defaultWeightsFromConfig(cfg *config.Config) map[priority.Category]float64 {
	defaults := priority.DefaultCategoryWeights()
	overrides := map[priority.Category]*float64{
		priority.CategoryAssignment: cfg.Scoring.DefaultAssignment,
		priority.CategoryQuiz:       cfg.Scoring.DefaultQuiz,
		priority.CategoryMidterm:    cfg.Scoring.DefaultMidterm,
		priority.CategoryFinal:      cfg.Scoring.DefaultFinal,
		priority.CategoryRevision:   cfg.Scoring.DefaultRevision,
	}
	for cat, v := range overrides {
		if v != nil {
			defaults[cat] = *v
		}
	}
	return defaults
}

// rankSnapshot runs the scoring engine off the calling goroutine.
func rankSnapshot(snap priority.Snapshot, now time.Time) <-chan []priority.ScoredTask {
	return priority.RankAsync(snap, now)
}

// persistRanking stores the latest ranking in the kv table so other
// commands (and the next `cram`) can show it without recomputing.
func persistRanking(db *store.DB, ranked []priority.ScoredTask) error {
	blob, err := json.Marshal(ranked)
	if err != nil {
		return fmt.Errorf("serializing ranking: %w", err)
	}
	return db.SetKV(lastRankingKey, string(blob))
}

func printRanking(snap priority.Snapshot, ranked []priority.ScoredTask) {
	if len(ranked) == 0 {
		ui.Inf("Nothing to rank.")
		ui.Tip(`cram task add CS101 "Lab report" --due 2026-09-15`)
		return
	}

	ui.Header(ui.IconRank + " Priority")
	now := time.Now()
	shown := ranked
	if rankLimit > 0 && rankLimit < len(shown) {
		shown = shown[:rankLimit]
	}
	for i, t := range shown {
		score := ui.ScoreStyle(t.PriorityScore).Render(fmt.Sprintf("%6.1f", t.PriorityScore))
		line := fmt.Sprintf("  %2d. %s %s %s", i+1, score, ui.Tag.Render(t.ProjectID), ui.ValueStyle.Render(t.Title))
		if t.DueDate != "" {
			line += ui.Muted.Render("  due " + t.DueDate)
		}
		fmt.Println(line)

		if rankBreakdown {
			printBreakdown(snap, t, now)
		}
	}
	if rankLimit > 0 && rankLimit < len(ranked) {
		fmt.Println(ui.Muted.Render(fmt.Sprintf("  … and %d more", len(ranked)-rankLimit)))
	}
	fmt.Println()
}

func printBreakdown(snap priority.Snapshot, t priority.ScoredTask, now time.Time) {
	var sub priority.Subject
	for _, s := range snap.Subjects {
		if s.Tag == t.ProjectID {
			sub = s
			break
		}
	}
	b := priority.ScoreBreakdown(t.Task, sub.RelativeScore, sub.CognitiveDifficulty,
		sub.Tag, snap.Performance[sub.Tag], snap.Weights, now)
	fmt.Println(ui.Muted.Render(fmt.Sprintf(
		"        credits %.1f + difficulty %.1f + weight %.1f + urgency %.1f = %.1f, −%.0f%% standing",
		b.CreditHours, b.CognitiveDifficulty, b.Weight, b.TimeRemaining, b.Base, b.Performance)))
}

func printRankingJSON(ranked []priority.ScoredTask) error {
	if ranked == nil {
		ranked = []priority.ScoredTask{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ranked)
}
