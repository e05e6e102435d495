package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/cram/internal/priority"
	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
	"github.com/rnwolfe/cram/internal/ui"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Manage grading weight tables",
	Long: `Manage grading weight tables. Each subject can carry its own
table (the authoritative source); subjects without one fall back to
imported class averages, and finally to the built-in defaults.`,
	RunE: runWeightsShow,
}

var weightsSetCmd = &cobra.Command{
	Use:     "set <subject> <section> <weight>",
	Short:   "Set a subject's weight for a grading section",
	Example: `  cram weights set CS101 quiz 12.5`,
	Args:    cobra.ExactArgs(3),
	RunE:    runWeightsSet,
}

var weightsUnsetCmd = &cobra.Command{
	Use:   "unset <subject> <section>",
	Short: "Remove one entry from a subject's weight table",
	Args:  cobra.ExactArgs(2),
	RunE:  runWeightsUnset,
}

var weightsAvgCmd = &cobra.Command{
	Use:   "avg <subject> <section> <avg>",
	Short: "Record an imported class-average weight",
	Long: `Record a class-average weight under the section label exactly as
it appears in the shared class table. Averages only matter for
subjects with no weight table of their own.`,
	Args: cobra.ExactArgs(3),
	RunE: runWeightsAvg,
}

var weightsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy class averages into subjects that lack their own table",
	Long: `For every subject with no weight table of its own, copy each
non-zero class average into the subject table. Subjects that already
have a table are left alone.`,
	RunE: runWeightsSync,
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all weight tables",
	RunE:  runWeightsShow,
}

func init() {
	weightsCmd.AddCommand(weightsSetCmd)
	weightsCmd.AddCommand(weightsUnsetCmd)
	weightsCmd.AddCommand(weightsAvgCmd)
	weightsCmd.AddCommand(weightsSyncCmd)
	weightsCmd.AddCommand(weightsShowCmd)
}

func runWeightsSet(_ *cobra.Command, args []string) error {
	weight, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("weight must be a number, got %q", args[2])
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	if err := subjects.SetWeight(args[0], args[1], weight); err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("%s %s = %v", args[0], string(priority.NormalizeSection(args[1])), weight))
	return nil
}

func runWeightsUnset(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	if err := subjects.RemoveWeight(args[0], args[1]); err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("Removed %s weight for %s", args[1], args[0]))
	return nil
}

func runWeightsAvg(_ *cobra.Command, args []string) error {
	avg, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("average must be a number, got %q", args[2])
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	if err := subjects.SetProjectAvg(args[0], args[1], avg); err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("%s %q avg = %v", args[0], args[1], avg))
	return nil
}

func runWeightsSync(_ *cobra.Command, _ []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	synced, err := subjects.SyncProjectWeights()
	if err != nil {
		return err
	}
	if len(synced) == 0 {
		ui.Inf("Nothing to sync — every subject already has its own table (or no averages).")
		return nil
	}

	for _, tag := range synced {
		ui.Ok("Synced class averages into " + tag)
	}
	return nil
}

func runWeightsShow(_ *cobra.Command, _ []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	tables, err := subjects.WeightTables()
	if err != nil {
		return err
	}
	if len(tables.Subject) == 0 && len(tables.Project) == 0 {
		ui.Inf("No weight tables yet. The built-in defaults apply to everything.")
		ui.Tip("cram weights set CS101 quiz 12.5")
		return nil
	}

	ui.Header(ui.IconMarks + " Weight tables")
	for _, tag := range sortedKeys(tables.Subject) {
		fmt.Println("  " + ui.Tag.Render(tag))
		weights := tables.Subject[tag]
		cats := make([]string, 0, len(weights))
		for c := range weights {
			cats = append(cats, string(c))
		}
		sort.Strings(cats)
		for _, c := range cats {
			ui.Kv("  "+c, fmt.Sprintf("%v", weights[priority.Category(c)]))
		}
	}
	if len(tables.Project) > 0 {
		fmt.Println()
		fmt.Println(ui.Muted.Render("  Class averages (fallback only):"))
		for _, tag := range sortedKeys(tables.Project) {
			fmt.Println("  " + ui.Tag.Render(tag))
			avgs := tables.Project[tag]
			labels := make([]string, 0, len(avgs))
			for l := range avgs {
				labels = append(labels, l)
			}
			sort.Strings(labels)
			for _, l := range labels {
				ui.Kv("  "+l, fmt.Sprintf("%v", avgs[l].Avg))
			}
		}
	}
	fmt.Println()
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
