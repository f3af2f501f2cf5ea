package commands

import (
	"fmt"
	"os"

	"github.com/livetemplate/pinboard"
	"github.com/livetemplate/pinboard/internal/config"
)

// InitCommand writes a starter config seeded with the demo items. It refuses
// to overwrite an existing file.
func InitCommand(args []string) error {
	path := config.FileNames[0]
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	cfg.Board.Items = pinboard.DemoItems()
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("✅ Created %s\n", path)
	fmt.Printf("Run 'pinboard serve -c %s' to start\n", path)
	return nil
}
