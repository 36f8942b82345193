package tui

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/watch"
)

// App wraps the Bubbletea program and the directory watcher that feeds it.
type App struct {
	program *tea.Program
	model   *Model
	logger  *logging.Logger
}

// New creates a viewer application for the session file at path.
func New(path string, opts Options, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &App{
		model:  NewModel(path, opts),
		logger: logger,
	}
}

// Run starts the viewer and blocks until the user quits.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Reload when the session file grows, including writes by other processes
	w, err := watch.New(filepath.Dir(a.model.Path()),
		watch.WithLogger(a.logger),
		watch.WithCallback(func(d watch.Detection) {
			a.program.Send(DumpDetectedMsg{Path: d.Path})
		}),
	)
	if err != nil {
		// The viewer still works without live reload
		a.logger.Warn("dump watcher unavailable", "error", err)
	} else {
		w.Start()
		defer w.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	_, err = a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	return err
}
