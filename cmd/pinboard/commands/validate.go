package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/livetemplate/pinboard"
	"github.com/livetemplate/pinboard/internal/config"
)

// ValidateCommand implements the validate command. It loads the config file,
// checks it, and builds the board it describes.
func ValidateCommand(args []string) error {
	path := config.FileNames[0]
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	fmt.Printf("🔍 Validating %s\n\n", absPath)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	items := cfg.Board.GetItems()
	app, err := pinboard.NewApp(nil, items)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	fmt.Printf("Board %q:\n", cfg.Board.GetName())
	for i, spec := range app.Page.Specs() {
		fmt.Printf("  %2d. %s\n", i+1, spec)
	}
	if cfg.Board.Items == nil {
		fmt.Printf("  (no items configured, demo items shown)\n")
	}
	fmt.Printf("\n✅ %d item(s) valid\n", app.Page.Len())
	return nil
}
