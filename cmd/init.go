package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/cram/internal/config"
	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up cram for the first time",
	Long:  `Initialize cram with your preferences. Creates config and data directories.`,
	RunE:  runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	return runInitWithReader(bufio.NewReader(os.Stdin))
}

func runInitWithReader(reader *bufio.Reader) error {
	fmt.Println(ui.Title.Render(ui.IconBook + " Welcome to cram!"))
	fmt.Println()
	ui.Inf("Let's get you set up. This takes about 30 seconds.")
	fmt.Println()

	name := prompt(reader, "  What should I call you?", guessName())
	fmt.Println()

	cfg := &config.Config{}
	cfg.User.Name = name

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	db.Close()

	paths := config.GetPaths()

	if name != "" {
		ui.Ok("All set, " + name + "!")
	} else {
		ui.Ok("All set!")
	}
	fmt.Println()
	fmt.Println(ui.Muted.Render("  Created:"))
	fmt.Printf("    Config  %s\n", ui.Muted.Render(paths.ConfigFile))
	fmt.Printf("    Data    %s\n", ui.Muted.Render(paths.DBFile))
	fmt.Println()
	fmt.Println(ui.Muted.Render("  Where to go from here:"))
	fmt.Println()
	fmt.Printf("    1. %s\n", ui.Accent.Render(`cram subject add CS101 "Intro to CS" --credits 3 --difficulty 40`))
	fmt.Printf("    2. %s\n", ui.Accent.Render(`cram task add CS101 "Lab report" --section assignment --due 2026-09-15`))
	fmt.Printf("    3. %s\n", ui.Accent.Render("cram rank"))
	fmt.Println()

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s %s ", question, ui.Muted.Render(fmt.Sprintf("(%s)", defaultVal)))
	} else {
		fmt.Printf("%s ", question)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func guessName() string {
	if name := gitUserName(); name != "" {
		return name
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return ""
}

// gitUserName reads user.name from ~/.gitconfig without shelling out.
func gitUserName() string {
	home, _ := os.UserHomeDir()
	data, err := os.ReadFile(home + "/.gitconfig")
	if err != nil {
		return ""
	}

	inUser := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "[user]" {
			inUser = true
			continue
		}
		if strings.HasPrefix(line, "[") {
			inUser = false
			continue
		}
		if inUser && strings.HasPrefix(line, "name") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				return strings.Trim(strings.TrimSpace(parts[1]), `"`)
			}
		}
	}
	return ""
}
