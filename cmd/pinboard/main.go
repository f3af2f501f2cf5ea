// Command pinboard serves a board of draggable, closable item cards.
package main

import (
	"fmt"
	"os"

	"github.com/livetemplate/pinboard/cmd/pinboard/commands"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = commands.ServeCommand(args)
	case "validate":
		err = commands.ValidateCommand(args)
	case "init":
		err = commands.InitCommand(args)
	case "version":
		fmt.Printf("pinboard version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("pinboard - A board of draggable cards")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pinboard serve [options]         Start the board server")
	fmt.Println("  pinboard validate [file]         Validate a config file")
	fmt.Println("  pinboard init [file]             Write a starter config")
	fmt.Println("  pinboard version                 Show version")
	fmt.Println("  pinboard help                    Show this help")
	fmt.Println()
	fmt.Println("Serve options:")
	fmt.Println("  -c, --config FILE   Config file (default: pinboard.yaml in the current directory)")
	fmt.Println("  -p, --port N        Listen port")
	fmt.Println("      --host H        Listen host")
	fmt.Println("  -w, --watch         Reload the board when the config file changes")
	fmt.Println("      --debug         Verbose logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pinboard serve                    # Serve the demo board")
	fmt.Println("  pinboard serve --port 3000        # Serve on another port")
	fmt.Println("  pinboard serve -c team.yaml -w    # Serve team.yaml with live reload")
	fmt.Println("  pinboard init                     # Create pinboard.yaml")
	fmt.Println("  pinboard validate team.yaml       # Check a config before serving")
}
