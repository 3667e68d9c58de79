package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/millr/internal/config"
	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/infocache"
	"github.com/kk-code-lab/millr/internal/nav"
	"github.com/kk-code-lab/millr/internal/preview/handlers"
	"github.com/kk-code-lab/millr/internal/pubsub"
	inputui "github.com/kk-code-lab/millr/internal/ui/input"
	renderui "github.com/kk-code-lab/millr/internal/ui/render"
)

const (
	callBuffer   = 64
	actionBuffer = 16
	eventBuffer  = 256
)

// Application represents the running app.
type Application struct {
	screen   tcell.Screen
	renderer *renderui.Renderer
	input    *inputui.InputHandler
	ctrl     *nav.Controller
	broker   *pubsub.Broker[nav.Event]
	events   <-chan pubsub.Event[nav.Event]
	cache    *infocache.Cache

	actionCh chan nav.Action
	callCh   chan func()
	done     chan struct{}
	stop     context.CancelFunc
	once     sync.Once

	shouldQuit  bool
	helpVisible bool
	message     string

	lastButtons   tcell.ButtonMask
	lastClickKey  string
	lastClickTime time.Time
}

// NewApplication initialises the terminal and builds the app for cfg.
func NewApplication(cfg config.Config) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	app, err := newApplication(screen, cfg, NewSystemOpener())
	if err != nil {
		screen.Fini()
		return nil, err
	}
	return app, nil
}

func newApplication(screen tcell.Screen, cfg config.Config, opener nav.Opener) (*Application, error) {
	start := cfg.StartDir
	if start == "" {
		cwd, err := GetCwd()
		if err != nil {
			return nil, err
		}
		start = cwd
	}
	root, err := fs.ItemFromPath(start)
	if err != nil {
		return nil, fmt.Errorf("start directory: %w", err)
	}
	if !root.IsDir() {
		return nil, fmt.Errorf("start directory: %s is not a directory", start)
	}

	registry, err := handlers.NewRegistry(cfg.Preview)
	if err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(context.Background())
	broker := pubsub.NewBrokerWithBuffer[nav.Event](eventBuffer)
	actionCh := make(chan nav.Action, actionBuffer)

	app := &Application{
		screen:   screen,
		renderer: renderui.NewRenderer(screen),
		input:    inputui.NewInputHandler(actionCh),
		broker:   broker,
		events:   broker.Subscribe(ctx),
		cache:    infocache.New(cfg.Cache.TTL, cfg.Cache.Cleanup),
		actionCh: actionCh,
		callCh:   make(chan func(), callBuffer),
		done:     make(chan struct{}),
		stop:     stop,
	}

	hidden := fs.IsHiddenItem
	if cfg.ShowHidden {
		hidden = fs.ShowAll
	}
	app.ctrl = nav.New(root, nav.Config{
		Hidden:     hidden,
		Info:       app.cache,
		Registry:   registry,
		Dispatcher: app,
		Surfaces:   app.renderer,
		Opener:     opener,
		Events:     broker,
	})
	app.input.SetView(app)
	return app, nil
}

// Post queues fn for the UI loop. It reports false once the app shut down.
func (app *Application) Post(fn func()) bool {
	select {
	case <-app.done:
		return false
	default:
	}
	select {
	case app.callCh <- fn:
		return true
	case <-app.done:
		return false
	}
}

func (app *Application) OverlayOpen() bool {
	session, _ := app.ctrl.Overlay()
	return session != nil
}

func (app *Application) HelpVisible() bool { return app.helpVisible }

// shutdown unloads every preview and stops accepting posted work. Posted
// calls still queued are dropped; their sessions were unloaded above.
func (app *Application) shutdown() {
	app.once.Do(func() {
		app.ctrl.Close()
		close(app.done)
		app.stop()
		app.broker.Close()
		app.cache.Flush()
	})
}

// Close cleans up resources.
func (app *Application) Close() error {
	app.shutdown()
	app.screen.Fini()
	return nil
}

// GetCwd returns current working directory.
func GetCwd() (string, error) {
	return os.Getwd()
}
