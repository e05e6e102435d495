package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/cram/internal/config"
	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
	"github.com/rnwolfe/cram/internal/task"
	"github.com/rnwolfe/cram/internal/ui"
	"github.com/rnwolfe/cram/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cram",
	Short: "Know what to study next",
	Long:  `cram — a study prioritizer. It scores every task by credit weight, difficulty, grading weight, and deadline pressure, then tells you what to tackle first.`,
	RunE:  runDashboard,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(subjectCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(marksCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(versionCmd)
}

// runDashboard shows the at-a-glance status when you just type `cram`.
func runDashboard(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !config.Initialized() {
		fmt.Println(ui.Greet(""))
		fmt.Println()
		fmt.Println("  Looks like this is your first time. Let's set things up!")
		fmt.Println()
		fmt.Printf("  Run %s to get started.\n", ui.Accent.Render("cram init"))
		fmt.Println()
		return nil
	}

	fmt.Println(ui.Greet(cfg.User.Name))
	fmt.Println()

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	tasks := task.NewStore(db.Conn())

	now := time.Now()
	subjectCount, err := subjects.Count()
	if err != nil {
		return fmt.Errorf("counting subjects: %w", err)
	}
	pending, err := tasks.Count("")
	if err != nil {
		return fmt.Errorf("counting tasks: %w", err)
	}
	overdue, err := tasks.OverdueCount(now)
	if err != nil {
		return fmt.Errorf("counting overdue tasks: %w", err)
	}

	ui.Kv(ui.IconBook+" Subjects", fmt.Sprintf("%d", subjectCount))
	taskSummary := fmt.Sprintf("%d pending", pending)
	if overdue > 0 {
		taskSummary += ui.Error.Render(fmt.Sprintf(" (%d overdue!)", overdue))
	}
	ui.Kv(ui.IconTask+" Tasks", taskSummary)
	ui.Kv("  📅 Today", now.Format("Monday, January 2"))
	ui.Kv("  ⚙️  Cram", version.Short())

	// Surface the single most urgent task right on the dashboard.
	if pending > 0 {
		snap, err := buildSnapshot(db)
		if err != nil {
			return err
		}
		ranked := <-rankSnapshot(snap, now)
		if len(ranked) > 0 {
			top := ranked[0]
			fmt.Println()
			fmt.Printf("  %s Up next: %s %s %s\n",
				ui.IconRank,
				ui.ScoreStyle(top.PriorityScore).Render(fmt.Sprintf("%.1f", top.PriorityScore)),
				ui.Tag.Render(top.ProjectID),
				ui.Accent.Render(top.Title),
			)
		}
	}

	switch {
	case overdue > 0:
		ui.Tip("`cram rank` — something slipped past its due date.")
	case pending > 0:
		ui.Tip("`cram rank` to see the full priority list.")
	case subjectCount == 0:
		ui.Tip("`cram subject add CS101 \"Intro to CS\" --credits 3` to add your first subject.")
	default:
		ui.Tip("`cram task add` to capture what's due.")
	}

	fmt.Println()
	return nil
}
