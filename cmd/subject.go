package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
	"github.com/rnwolfe/cram/internal/task"
	"github.com/rnwolfe/cram/internal/ui"
)

var subjectCmd = &cobra.Command{
	Use:     "subject",
	Aliases: []string{"sub"},
	Short:   "Manage the subjects you're taking",
	RunE:    runSubjectList,
}

var (
	subjectAddCredits    float64
	subjectAddDifficulty float64
)

var subjectAddCmd = &cobra.Command{
	Use:   "add <tag> <name>",
	Short: "Add a subject",
	Long: `Add a subject. Credit hours drive the subject's share of the
priority score: the heaviest subject counts 100 and the rest scale
proportionally. Difficulty is your own 0-100 estimate of how hard the
subject is for you.`,
	Example: `  cram subject add CS101 "Intro to CS" --credits 3 --difficulty 40`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSubjectAdd,
}

var subjectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subjects",
	RunE:    runSubjectList,
}

var subjectRemoveCmd = &cobra.Command{
	Use:     "remove <tag>",
	Aliases: []string{"rm"},
	Short:   "Remove a subject and all of its tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubjectRemove,
}

var (
	subjectEditName       string
	subjectEditCredits    float64
	subjectEditDifficulty float64
)

var subjectEditCmd = &cobra.Command{
	Use:     "edit <tag>",
	Aliases: []string{"set"},
	Short:   "Edit a subject",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubjectEdit,
}

func init() {
	subjectAddCmd.Flags().Float64Var(&subjectAddCredits, "credits", 3, "credit hours")
	subjectAddCmd.Flags().Float64Var(&subjectAddDifficulty, "difficulty", 50, "cognitive difficulty (0-100)")

	subjectEditCmd.Flags().StringVar(&subjectEditName, "name", "", "new display name")
	subjectEditCmd.Flags().Float64Var(&subjectEditCredits, "credits", 0, "new credit hours")
	subjectEditCmd.Flags().Float64Var(&subjectEditDifficulty, "difficulty", -1, "new cognitive difficulty (0-100)")

	subjectCmd.AddCommand(subjectAddCmd)
	subjectCmd.AddCommand(subjectListCmd)
	subjectCmd.AddCommand(subjectRemoveCmd)
	subjectCmd.AddCommand(subjectEditCmd)
}

func runSubjectAdd(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	if err := subjects.Add(args[0], args[1], subjectAddCredits, subjectAddDifficulty); err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("Added %s (%s)", args[0], args[1]))
	return nil
}

func runSubjectList(_ *cobra.Command, _ []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	tasks := task.NewStore(db.Conn())

	list, err := subjects.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Inf("No subjects yet.")
		ui.Tip(`cram subject add CS101 "Intro to CS" --credits 3`)
		return nil
	}

	ui.Header(ui.IconBook + " Subjects")
	for _, sub := range list {
		pending, err := tasks.Count(sub.Tag)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("  %s %s", ui.Tag.Render(sub.Tag), ui.ValueStyle.Render(sub.Name))
		line += ui.Muted.Render(fmt.Sprintf("  %.0fch · weight %.0f · difficulty %.0f · %d pending",
			sub.CreditHours, sub.RelativeScore, sub.CognitiveDifficulty, pending))
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}

func runSubjectRemove(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	subjects := subject.NewStore(db.Conn())
	if err := subjects.Remove(args[0]); err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("Removed %s (its tasks, weights, and marks went with it)", args[0]))
	return nil
}

func runSubjectEdit(cmd *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	var name *string
	var credits, difficulty *float64
	if cmd.Flags().Changed("name") {
		name = &subjectEditName
	}
	if cmd.Flags().Changed("credits") {
		credits = &subjectEditCredits
	}
	if cmd.Flags().Changed("difficulty") {
		difficulty = &subjectEditDifficulty
	}
	if name == nil && credits == nil && difficulty == nil {
		return fmt.Errorf("nothing to change (use --name, --credits, or --difficulty)")
	}

	subjects := subject.NewStore(db.Conn())
	if err := subjects.Edit(args[0], name, credits, difficulty); err != nil {
		return err
	}

	ui.Ok("Updated " + args[0])
	return nil
}
