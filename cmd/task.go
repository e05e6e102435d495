package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/task"
	"github.com/rnwolfe/cram/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage study tasks",
	RunE:  runTaskList,
}

var (
	taskAddSection string
	taskAddDue     string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <subject> <title>",
	Short: "Add a task to a subject",
	Long: `Add a task. The section tells the scorer which grading category
the task falls under (assignment, quiz, midterm, final, revision —
common aliases like "OHT" or "Finals" work too).`,
	Example: `  cram task add CS101 "Lab report" --section assignment --due 2026-09-15`,
	Args:    cobra.ExactArgs(2),
	RunE:    runTaskAdd,
}

var (
	taskListSubject string
	taskListAll     bool
)

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE:    runTaskList,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Put a completed task back on the list",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskReopen,
}

var taskRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskRemove,
}

var (
	taskEditTitle   string
	taskEditSection string
	taskEditDue     string
)

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddSection, "section", "assignment", "grading section (assignment, quiz, midterm, final, revision)")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "due date (YYYY-MM-DD)")

	taskListCmd.Flags().StringVar(&taskListSubject, "subject", "", "filter to one subject")
	taskListCmd.Flags().BoolVarP(&taskListAll, "all", "a", false, "include completed tasks")

	taskEditCmd.Flags().StringVar(&taskEditTitle, "title", "", "new title")
	taskEditCmd.Flags().StringVar(&taskEditSection, "section", "", "new grading section")
	taskEditCmd.Flags().StringVar(&taskEditDue, "due", "", "new due date (empty clears it)")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskReopenCmd)
	taskCmd.AddCommand(taskRemoveCmd)
	taskCmd.AddCommand(taskEditCmd)
}

func runTaskAdd(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks := task.NewStore(db.Conn())
	t, err := tasks.Add(args[0], args[1], taskAddSection, taskAddDue)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("Added %s [%s]", t.Title, t.Section)
	if t.DueDate != "" {
		line += " due " + t.DueDate
	}
	ui.Ok(line)
	fmt.Println(ui.Muted.Render("  id: " + t.ID[:8]))
	return nil
}

func runTaskList(_ *cobra.Command, _ []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks := task.NewStore(db.Conn())
	list, err := tasks.List(task.ListOptions{SubjectTag: taskListSubject, ShowDone: taskListAll})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Inf("No tasks.")
		ui.Tip(`cram task add CS101 "Lab report" --due 2026-09-15`)
		return nil
	}

	ui.Header(ui.IconTask + " Tasks")
	for _, t := range list {
		marker := " "
		title := ui.ValueStyle.Render(t.Title)
		if t.Done {
			marker = ui.Success.Render("✓")
			title = ui.Muted.Render(t.Title)
		}
		line := fmt.Sprintf("  %s %s %s %s %s",
			marker,
			ui.Muted.Render(t.ID[:8]),
			ui.Tag.Render(t.SubjectTag),
			title,
			ui.Muted.Render("["+t.Section+"]"),
		)
		if t.DueDate != "" {
			line += ui.Muted.Render(" due " + t.DueDate)
		}
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}

func runTaskDone(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks := task.NewStore(db.Conn())
	t, err := tasks.Done(args[0])
	if err != nil {
		return err
	}

	ui.Ok("Done: " + t.Title)
	return nil
}

func runTaskReopen(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks := task.NewStore(db.Conn())
	t, err := tasks.Reopen(args[0])
	if err != nil {
		return err
	}

	ui.Ok("Reopened: " + t.Title)
	return nil
}

func runTaskRemove(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks := task.NewStore(db.Conn())
	if err := tasks.Remove(args[0]); err != nil {
		return err
	}

	ui.Ok("Removed task " + args[0])
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	var title, section, due *string
	if cmd.Flags().Changed("title") {
		title = &taskEditTitle
	}
	if cmd.Flags().Changed("section") {
		section = &taskEditSection
	}
	if cmd.Flags().Changed("due") {
		due = &taskEditDue
	}
	if title == nil && section == nil && due == nil {
		return fmt.Errorf("nothing to change (use --title, --section, or --due)")
	}

	tasks := task.NewStore(db.Conn())
	t, err := tasks.Edit(args[0], title, section, due)
	if err != nil {
		return err
	}

	ui.Ok("Updated " + t.Title)
	return nil
}
