package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/livetemplate/pinboard/internal/config"
	"github.com/livetemplate/pinboard/internal/server"
	"github.com/livetemplate/pinboard/internal/storage"
)

// serveOptions are the serve flags. Nil pointers leave the config value alone.
type serveOptions struct {
	configPath string
	port       string
	host       string
	watch      *bool
	debug      *bool
}

func parseServeArgs(args []string) (serveOptions, error) {
	var opts serveOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--watch", "-w":
			v := true
			opts.watch = &v
		case "--debug":
			v := true
			opts.debug = &v
		case "--port", "-p", "--host", "--config", "-c":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", arg)
			}
			i++
			switch arg {
			case "--port", "-p":
				opts.port = args[i]
			case "--host":
				opts.host = args[i]
			default:
				opts.configPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag: %s", arg)
			}
			opts.configPath = arg
		}
	}
	return opts, nil
}

// loadServeConfig loads the config named by opts, or pinboard.yaml from the
// working directory, and applies the flag overrides.
func loadServeConfig(opts serveOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		if _, statErr := os.Stat(opts.configPath); statErr != nil {
			return nil, fmt.Errorf("config file does not exist: %s", opts.configPath)
		}
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flags override config
	if opts.port != "" {
		port, err := strconv.Atoi(opts.port)
		if err != nil {
			return nil, fmt.Errorf("invalid port: %s", opts.port)
		}
		cfg.Server.Port = port
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.watch != nil {
		cfg.Features.HotReload = *opts.watch
	}
	if opts.debug != nil {
		cfg.Server.Debug = *opts.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging routes the standard logger to a rotating file when log.file is
// set. The returned closer flushes the file.
func setupLogging(cfg *config.Config) io.Closer {
	if cfg.Log.File == "" {
		return io.NopCloser(nil)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.GetMaxSizeMB(),
		MaxBackups: cfg.Log.GetMaxBackups(),
		MaxAge:     cfg.Log.GetMaxAgeDays(),
		Compress:   cfg.Log.Compress,
	}
	log.SetOutput(rotator)
	log.SetFlags(log.LstdFlags)
	return rotator
}

// openStore opens snapshot storage when it is configured.
func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	if !cfg.Storage.IsEnabled() {
		return nil, nil
	}
	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.GetDSN(cfg.BaseDir()))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}

// ServeCommand implements the serve command.
func ServeCommand(args []string) error {
	opts, err := parseServeArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return err
	}

	logs := setupLogging(cfg)
	defer logs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📌 Pinboard Server\n\n")
	if cfg.Path != "" {
		fmt.Printf("📝 Using config: %s\n", cfg.Path)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		fmt.Printf("💾 Snapshots: %s (board %q)\n", cfg.Storage.Driver, cfg.Board.GetName())
	}

	srv, err := server.New(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer srv.Close()

	if cfg.Features.HotReload {
		if cfg.Path == "" {
			fmt.Printf("⚠️  --watch ignored: no config file to watch\n")
		} else {
			if err := srv.EnableWatch(ctx); err != nil {
				return fmt.Errorf("failed to enable watch mode: %w", err)
			}
			fmt.Printf("👀 Watch mode enabled - edit %s to reload the board\n", cfg.Path)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("\n🌐 Server running at http://%s\n", addr)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func init() {
	log.SetFlags(0) // Remove timestamp from logs
}
