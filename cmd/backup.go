package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rnwolfe/cram/internal/backup"
	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and restore your study data",
	Long: `Export the whole database — subjects, tasks, weight tables, and
marks — as one passphrase-encrypted archive, or restore from one. The
archive is ASCII-armored, so it pastes cleanly into anything.`,
}

var backupExportCmd = &cobra.Command{
	Use:     "export <file>",
	Short:   "Write an encrypted archive",
	Example: `  cram backup export semester.age`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore from an encrypted archive (replaces everything)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupImport,
}

func init() {
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}

func runBackupExport(_ *cobra.Command, args []string) error {
	passphrase, err := readPassphrase(true)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := backup.ExportFile(db.Conn(), passphrase, args[0]); err != nil {
		return err
	}

	ui.Ok("Exported to " + args[0])
	ui.Tip("the archive is useless without the passphrase — don't lose it")
	return nil
}

func runBackupImport(_ *cobra.Command, args []string) error {
	passphrase, err := readPassphrase(false)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	arch, err := backup.ImportFile(db.Conn(), passphrase, args[0])
	if err != nil {
		return formatBackupError(err)
	}

	ui.Ok(fmt.Sprintf("Restored %d subjects and %d tasks (exported %s)",
		len(arch.Subjects), len(arch.Tasks), arch.ExportedAt.Format("2006-01-02")))
	return nil
}

// readPassphrase reads the archive passphrase from CRAM_PASSPHRASE or
// prompts for it on the terminal. With confirm set it asks twice.
func readPassphrase(confirm bool) (string, error) {
	if p := os.Getenv("CRAM_PASSPHRASE"); p != "" {
		return p, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("passphrase required — set CRAM_PASSPHRASE or run interactively")
	}

	fmt.Fprint(os.Stderr, ui.Muted.Render("  Passphrase: "))
	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	passphrase := strings.TrimSpace(string(passBytes))
	if passphrase == "" {
		return "", fmt.Errorf("passphrase can't be empty")
	}

	if confirm {
		fmt.Fprint(os.Stderr, ui.Muted.Render("  Confirm passphrase: "))
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase confirmation: %w", err)
		}
		if string(passBytes) != string(confirmBytes) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return passphrase, nil
}

func formatBackupError(err error) error {
	switch {
	case errors.Is(err, backup.ErrWrongPassphrase):
		return fmt.Errorf("wrong passphrase — nothing was changed")
	case errors.Is(err, backup.ErrCorruptedArchive):
		return fmt.Errorf("that file doesn't look like a cram archive — nothing was changed")
	default:
		return err
	}
}
