package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
	"github.com/rnwolfe/cram/internal/ui"
)

var marksCmd = &cobra.Command{
	Use:   "marks",
	Short: "Track your current standing per subject",
	Long: `Track your academic performance. Standing well in a subject
discounts its tasks: a subject at 80% only keeps 20% of its raw
priority. Marks are percentages from 0 to 100.`,
	RunE: runMarksShow,
}

var marksSetCmd = &cobra.Command{
	Use:     "set <subject> <pct>",
	Short:   "Record your current percentage in a subject",
	Example: `  cram marks set CS101 72.5`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMarksSet,
}

var marksShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recorded marks",
	RunE:  runMarksShow,
}

func init() {
	marksCmd.AddCommand(marksSetCmd)
	marksCmd.AddCommand(marksShowCmd)
}

func runMarksSet(_ *cobra.Command, args []string) error {
	pct, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("percentage must be a number, got %q", args[1])
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	if err := subjects.SetPerformance(args[0], pct); err != nil {
		return err
	}

	recorded, err := subjects.Performance(args[0])
	if err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("%s standing at %.1f%%", args[0], recorded))
	return nil
}

func runMarksShow(_ *cobra.Command, _ []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	list, err := subjects.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Inf("No subjects yet.")
		return nil
	}
	perf, err := subjects.PerformanceMap()
	if err != nil {
		return err
	}

	ui.Header(ui.IconMarks + " Marks")
	for _, sub := range list {
		pct, ok := perf[sub.Tag]
		value := "—"
		if ok {
			value = fmt.Sprintf("%.1f%%", pct)
		}
		ui.Kv(sub.Tag, value)
	}
	fmt.Println()
	ui.Tip("higher standing means lower task priority — the scorer assumes you need it less")
	fmt.Println()
	return nil
}
