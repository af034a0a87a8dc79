package bootstrap

import (
	"sync"

	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// App is a component the Launcher runs for the lifetime of the process.
type App interface {
	Run(launcher *Launcher) error
}

// LauncherOption configures a Launcher.
type LauncherOption func(l *Launcher)

// WithLogger attaches logger to the launcher.
func WithLogger(logger mlog.Logger) LauncherOption {
	return func(l *Launcher) { l.Logger = logger }
}

// RunApp registers app under name.
func RunApp(name string, app App) LauncherOption {
	return func(l *Launcher) { l.Add(name, app) }
}

// Launcher runs every registered App concurrently and blocks until all of
// them return.
type Launcher struct {
	Logger mlog.Logger
	apps   map[string]App
	wg     *sync.WaitGroup
}

// Add registers app under name.
func (l *Launcher) Add(name string, app App) *Launcher {
	l.apps[name] = app
	return l
}

// Run starts every registered app in its own goroutine and waits for all of
// them to return. An app that returns a non-nil error is logged at ERROR;
// Run does not stop the remaining apps on one app's failure.
func (l *Launcher) Run() {
	l.wg.Add(len(l.apps))

	l.Logger.Infof("starting %d app(s)", len(l.apps))

	for name, app := range l.apps {
		go func(name string, app App) {
			defer l.wg.Done()

			l.Logger.Infof("app %q starting", name)

			if err := app.Run(l); err != nil {
				l.Logger.Errorf("app %q exited with error: %v", name, err)
				return
			}

			l.Logger.Infof("app %q stopped", name)
		}(name, app)
	}

	l.wg.Wait()

	l.Logger.Info("launcher: all apps stopped")
}

// NewLauncher builds a Launcher from opts.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		apps: make(map[string]App),
		wg:   new(sync.WaitGroup),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}
