package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/floatwm/internal/config"
	"github.com/1broseidon/floatwm/internal/daemon"
	"github.com/1broseidon/floatwm/internal/ipc"
	"github.com/1broseidon/floatwm/internal/logging"
	"github.com/1broseidon/floatwm/internal/platform"
	"github.com/1broseidon/floatwm/internal/runtimepath"
	"github.com/1broseidon/floatwm/internal/wm"
	"github.com/1broseidon/floatwm/internal/x11"
)

func runDaemon(args []string) int {
	fs := newFlagSet("run", "Start the window manager in the foreground.")
	cfgPath := fs.String("config", "", "Config file path (default: ~/.config/floatwm/config.yaml)")
	display := fs.String("display", "", "X display to manage (default: config display, then $DISPLAY)")
	logLevel := fs.String("log-level", "", "Log level override: debug, info, warn or error")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	*cfgPath = res.Path
	cfg := res.Config

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logger, err := logging.New(os.Stderr, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger.Info("configuration loaded", "path", res.Path, "exists", res.Exists,
		"modifier", cfg.Modifier, "layout", cfg.Layout)

	if *display == "" {
		*display = cfg.Display
	}
	conn, err := x11.NewConnection(*display)
	if err != nil {
		logger.Error("failed to connect to display", "display", *display, "error", err)
		return 1
	}
	backend := platform.NewLinuxBackend(conn)

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			conn.Quit()
			backend.Disconnect()
		})
	}
	defer stop()

	opts := wm.OptionsFromConfig(cfg)
	mgr := wm.NewManager(backend, opts, wm.ExecSpawner{}, logger.With("component", "wm"))
	mgr.OnQuit(stop)

	binder, err := wm.NewXBinder(backend, mgr, logger.With("component", "x11"))
	if err != nil {
		logger.Error("failed to set up bindings", "error", err)
		return 1
	}
	if err := binder.Start(opts); err != nil {
		logger.Error("failed to start window manager", "error", err)
		return 1
	}

	d := &daemonState{
		cfgPath: *cfgPath,
		flagLvl: *logLevel,
		logger:  logger,
		mgr:     mgr,
		binder:  binder,
		backend: backend,
	}

	socket, err := runtimepath.SocketPath(*display)
	if err != nil {
		logger.Error("failed to resolve IPC socket path", "error", err)
		return 1
	}
	ipcServer := ipc.NewServer(socket, d, logger.With("component", "ipc"))
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncLogger := logger.With("component", "reconciler")
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   syncLogger,
	}, daemon.NewStateSynchronizer(mgr, syncLogger), backend.TopLevelWindows)
	go reconciler.Run(ctx)

	go func() {
		err := config.Watch(ctx, *cfgPath, logger.With("component", "config"), func() {
			if err := d.Reload(); err != nil {
				logger.Warn("config reload after file change failed", "error", err)
			}
		})
		if err != nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					logger.Info("received SIGHUP, reloading config")
					if err := d.Reload(); err != nil {
						logger.Warn("config reload failed", "error", err)
					}
				default:
					logger.Info("shutting down", "signal", sig.String())
					stop()
					return
				}
			}
		}
	}()

	logger.Info("floatwm started", "display", *display, "socket", socket)
	conn.EventLoop()
	logger.Info("event loop stopped")
	return 0
}

// daemonState answers IPC requests and applies reloads.
type daemonState struct {
	cfgPath string
	flagLvl string
	logger  *logging.Logger
	mgr     *wm.Manager
	binder  *wm.XBinder
	backend platform.Backend

	reloadMu sync.Mutex
}

var _ ipc.Handler = (*daemonState)(nil)

// Reload re-reads the config file. An invalid file leaves the running
// configuration untouched.
func (d *daemonState) Reload() error {
	d.reloadMu.Lock()
	defer d.reloadMu.Unlock()

	res, err := config.LoadFromPath(d.cfgPath)
	if err != nil {
		return err
	}
	cfg := res.Config

	opts := wm.OptionsFromConfig(cfg)
	if err := d.binder.Rebind(opts); err != nil {
		return fmt.Errorf("failed to apply bindings: %w", err)
	}
	d.mgr.UpdateOptions(opts)

	level := cfg.LogLevel
	if d.flagLvl != "" {
		level = d.flagLvl
	}
	if err := d.logger.SetLevel(level); err != nil {
		d.logger.Warn("keeping log level", "error", err)
	}

	if opts.ArrangeOnMap {
		d.mgr.Arrange()
	}
	d.logger.Info("config reloaded", "path", res.Path, "layout", cfg.Layout)
	return nil
}

func (d *daemonState) Status() ipc.StatusData {
	return statusData(d.mgr.Status())
}

func (d *daemonState) Windows() []ipc.WindowInfo {
	wins := d.mgr.Windows()
	out := make([]ipc.WindowInfo, len(wins))
	for i, w := range wins {
		out[i] = windowInfo(w)
	}
	return out
}

func (d *daemonState) Outputs() ([]ipc.OutputInfo, error) {
	outputs, err := d.backend.Outputs()
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, errors.New("no outputs")
	}
	out := make([]ipc.OutputInfo, len(outputs))
	for i, o := range outputs {
		out[i] = outputInfo(o)
	}
	return out, nil
}

func (d *daemonState) StopSession() {
	d.binder.StopSession()
}

func (d *daemonState) Arrange() {
	d.mgr.Arrange()
}

func statusData(st wm.Status) ipc.StatusData {
	data := ipc.StatusData{
		Layout:      string(st.Layout),
		WindowCount: st.Windows,
		Focused:     uint32(st.Focused),
		Session: ipc.SessionInfo{
			Active: st.Session.Active,
			GrabX:  st.Session.Grab.X,
			GrabY:  st.Session.Grab.Y,
		},
	}
	if st.Session.Active {
		data.Session.Window = uint32(st.Session.Window)
		if !st.Session.Edges.IsEmpty() {
			data.Session.Edges = st.Session.Edges.String()
		}
	}
	return data
}

func windowInfo(w platform.Window) ipc.WindowInfo {
	return ipc.WindowInfo{
		ID:        uint32(w.ID),
		Title:     w.Title,
		X:         w.Geometry.Origin.X,
		Y:         w.Geometry.Origin.Y,
		Width:     w.Geometry.Size.W,
		Height:    w.Geometry.Size.H,
		Activated: w.Activated,
		Resizing:  w.Resizing,
	}
}

func outputInfo(o platform.Output) ipc.OutputInfo {
	return ipc.OutputInfo{
		ID:     o.ID,
		Name:   o.Name,
		X:      o.Bounds.Origin.X,
		Y:      o.Bounds.Origin.Y,
		Width:  o.Bounds.Size.W,
		Height: o.Bounds.Size.H,
	}
}
