package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtranslit/internal/bridge"
	"github.com/kobzarvs/qtranslit/internal/config"
	"github.com/kobzarvs/qtranslit/internal/editor"
	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/observe"
	"github.com/kobzarvs/qtranslit/internal/platform/keyboard"
	"github.com/kobzarvs/qtranslit/internal/provider"
	"github.com/kobzarvs/qtranslit/internal/session"
)

// Options are the command line switches of the form binary.
type Options struct {
	// BridgeURL overrides provider.bridge-url from the config.
	BridgeURL string
	// MetricsAddr, when set, serves the session and provider counters on
	// /metrics. Without it they are recorded on a no-op meter.
	MetricsAddr string
	Debug       bool
}

// App is the top-level runtime for qtranslit.
type App struct {
	args []string
	opts Options
}

func New(args []string, opts Options) *App {
	return &App{args: args, opts: opts}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	if err := logger.Init(a.opts.Debug); err != nil {
		return err
	}
	defer logger.Close()

	if a.opts.MetricsAddr != "" {
		addr, stop, err := serveMetrics(a.opts.MetricsAddr)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("app: serving metrics", "addr", addr.String())
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	settingsPath, err := config.SettingsPath()
	if err != nil {
		return err
	}
	if err := ensureSettings(settingsPath); err != nil {
		return err
	}

	channel, closeChannel, err := a.channel(cfg)
	if err != nil {
		return err
	}
	defer closeChannel()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	loopDone := make(chan struct{})
	defer close(loopDone)
	post := newPoster(s, loopDone)

	state, err := session.NewManager()
	if err != nil {
		logger.Warn("app: state unavailable", "err", err)
		state = nil
	}
	if state != nil {
		defer func() { _ = state.Stop() }()
	}

	initial, err := config.LoadSettings(settingsPath)
	if err != nil {
		logger.Warn("app: settings unreadable, using defaults", "err", err)
		initial = config.DefaultSettings()
	}

	ed := editor.New(cfg, editor.Options{
		Channel:   channel,
		Settings:  initial,
		Languages: langs,
		Post:      post,
		Metrics:   observe.DefaultMetrics(),
		State:     state,
		OnSettings: func(st config.Settings) {
			if err := config.SaveSettings(settingsPath, st); err != nil {
				logger.Warn("app: save settings failed", "err", err)
			}
		},
	})
	defer ed.Shutdown()

	watcher, err := config.WatchSettings(settingsPath, func(st config.Settings) {
		post(func() { ed.ApplySettings(st) })
	})
	if err != nil {
		logger.Warn("app: settings watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	if len(a.args) > 0 {
		if err := ed.OpenFile(a.args[0]); err != nil {
			return err
		}
	}

	stopLayout := make(chan struct{})
	defer close(stopLayout)
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopLayout:
				return
			case <-ticker.C:
				_ = s.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	lastLayoutRaw := keyboard.CurrentLayoutRaw()
	ed.SetKeyboardLayout(keyboard.CurrentLayout())
	ed.Render(s)
	for {
		ev := s.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			ed.HandleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			if f, ok := ev.Data().(func()); ok && f != nil {
				f()
			}
		}
		layoutRaw := keyboard.CurrentLayoutRaw()
		if layoutRaw != lastLayoutRaw {
			lastLayoutRaw = layoutRaw
			ed.SetKeyboardLayout(keyboard.CurrentLayout())
		}
		ed.Render(s)
	}
}

// channel picks the WebSocket bridge when one is configured, otherwise it
// calls the provider in process.
func (a *App) channel(cfg config.Config) (bridge.Channel, func(), error) {
	url := a.opts.BridgeURL
	if url == "" {
		url = cfg.Provider.BridgeURL
	}
	if url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := bridge.Dial(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("app: using bridge", "url", url)
		return c, func() { _ = c.Close() }, nil
	}

	metrics := observe.DefaultMetrics()
	p := provider.NewInputTools(cfg.Provider.Endpoint,
		provider.WithTimeout(time.Duration(cfg.Provider.TimeoutMs)*time.Millisecond),
		provider.WithCandidates(cfg.Provider.Candidates),
		provider.WithBreaker(provider.NewCircuitBreaker(
			cfg.Provider.BreakerFails,
			time.Duration(cfg.Provider.BreakerResetS)*time.Second,
		)),
		provider.WithMetrics(metrics),
	)
	l := bridge.NewLocal(p)
	return l, l.Wait, nil
}

// ensureSettings writes the default settings file so the watcher has a
// directory to observe.
func ensureSettings(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return config.SaveSettings(path, config.DefaultSettings())
}
