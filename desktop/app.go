package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/livetemplate/pinboard/internal/config"
	"github.com/livetemplate/pinboard/internal/server"
	"github.com/livetemplate/pinboard/internal/storage"
)

// App holds the desktop state. Boards are served from a loopback HTTP server
// because the webview's asset server cannot carry the websocket.
type App struct {
	ctx context.Context

	mu         sync.RWMutex
	server     *server.Server
	store      *storage.Store
	httpServer *http.Server
	cancel     context.CancelFunc
	url        string
	configPath string
}

// NewApp creates a new App application struct.
func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *App) shutdown(ctx context.Context) {
	a.stopServer()
}

// stopServer stops the current board server if running.
func (a *App) stopServer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.httpServer != nil {
		a.httpServer.Close()
		a.httpServer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.server != nil {
		a.server.Close()
		a.server = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	a.url = ""
}

// OpenBoard asks for a pinboard.yaml and serves the board it describes.
func (a *App) OpenBoard() (string, error) {
	selection, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Board",
		Filters: []runtime.FileFilter{
			{DisplayName: "Board config (*.yaml, *.yml)", Pattern: "*.yaml;*.yml"},
		},
	})
	if err != nil || selection == "" {
		return "", err
	}

	cfg, err := config.Load(selection)
	if err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid config: %w", err)
	}
	// Desktop boards always follow their file.
	cfg.Features.HotReload = true
	if err := a.serve(cfg); err != nil {
		return "", err
	}
	return selection, nil
}

// OpenDemo serves the demo board without storage.
func (a *App) OpenDemo() (string, error) {
	if err := a.serve(config.DefaultConfig()); err != nil {
		return "", err
	}
	return a.GetServerURL(), nil
}

func (a *App) serve(cfg *config.Config) error {
	a.stopServer()

	ctx, cancel := context.WithCancel(a.ctx)

	var store *storage.Store
	if cfg.Storage.IsEnabled() {
		var err error
		store, err = storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.GetDSN(cfg.BaseDir()))
		if err != nil {
			cancel()
			return fmt.Errorf("failed to open storage: %w", err)
		}
	}

	srv, err := server.New(ctx, cfg, store)
	if err != nil {
		cancel()
		if store != nil {
			store.Close()
		}
		return err
	}
	if cfg.Features.HotReload && cfg.Path != "" {
		if err := srv.EnableWatch(ctx); err != nil {
			log.Printf("[Desktop] Watch disabled: %v", err)
		}
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		cancel()
		srv.Close()
		if store != nil {
			store.Close()
		}
		return fmt.Errorf("failed to find free port: %w", err)
	}
	httpServer := &http.Server{Handler: srv.Handler(ctx)}
	go func() {
		if err := httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Desktop] HTTP server error: %v", err)
		}
	}()

	url := fmt.Sprintf("http://%s/", listener.Addr())

	a.mu.Lock()
	a.server = srv
	a.store = store
	a.httpServer = httpServer
	a.cancel = cancel
	a.url = url
	a.configPath = cfg.Path
	a.mu.Unlock()

	title := cfg.Title
	if cfg.Path != "" {
		title = fmt.Sprintf("%s - %s", cfg.Title, filepath.Base(cfg.Path))
	}
	runtime.WindowSetTitle(a.ctx, title)
	runtime.EventsEmit(a.ctx, "navigate", url)
	return nil
}

// GetServerURL returns the URL of the running board, or empty string if none.
func (a *App) GetServerURL() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.url
}

// GetConfigPath returns the open board's config file.
func (a *App) GetConfigPath() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.configPath
}

// GetHandler serves the welcome screen shown before a board is opened.
func (a *App) GetHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if url := a.GetServerURL(); url != "" {
			http.Redirect(w, r, url, http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(welcomeHTML))
	})
}

const welcomeHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8"/>
    <title>Pinboard</title>
    <style>
        body {
            margin: 0;
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            background: #f4f1ea;
            color: #2b2b2b;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
        }
        .welcome { text-align: center; }
        button {
            margin: 0 0.5rem;
            padding: 0.75rem 1.5rem;
            border: none;
            border-radius: 6px;
            background: #2b2b2b;
            color: #fff;
            font-size: 1rem;
            cursor: pointer;
        }
        #status { min-height: 1.5em; color: #d9534f; }
    </style>
</head>
<body>
    <div class="welcome">
        <h1>Pinboard</h1>
        <p>Open a board config or start from the demo board.</p>
        <button id="open">Open Board</button>
        <button id="demo">Demo Board</button>
        <p id="status"></p>
    </div>
    <script>
        function init() {
            var status = document.getElementById('status');
            function run(fn) {
                return function () {
                    fn().catch(function (err) { status.textContent = 'Error: ' + err; });
                };
            }
            document.getElementById('open').addEventListener('click', run(window.go.main.App.OpenBoard));
            document.getElementById('demo').addEventListener('click', run(window.go.main.App.OpenDemo));
            window.runtime.EventsOn('navigate', function (url) {
                window.location.href = url;
            });
        }

        function waitForWails() {
            if (window.go && window.runtime) {
                init();
            } else {
                setTimeout(waitForWails, 50);
            }
        }
        waitForWails();
    </script>
</body>
</html>`
