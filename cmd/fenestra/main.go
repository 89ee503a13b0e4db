// Command fenestra is the reparenting window manager and compositor
// described by SessionControl (§4.O): it wires DisplayCore, AtomTable,
// Bridge, WMController, GLContextMgr and CompositorCore together, then
// runs until SIGTERM/SIGINT or the X connection dies. Grounded on
// original_source/src/wm/terminate.rs and session.rs for the signal
// handling and shutdown-ordering contract, and on the teacher's cmd/
// layout (a thin main that loads config, opens the display, and hands off
// to the long-running component).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/xgb/composite"

	"github.com/fenestra-wm/fenestra/internal/atoms"
	"github.com/fenestra-wm/fenestra/internal/bridge"
	"github.com/fenestra-wm/fenestra/internal/compositor"
	"github.com/fenestra-wm/fenestra/internal/config"
	"github.com/fenestra-wm/fenestra/internal/flog"
	"github.com/fenestra-wm/fenestra/internal/glx"
	"github.com/fenestra-wm/fenestra/internal/shell"
	"github.com/fenestra-wm/fenestra/internal/wm"
	"github.com/fenestra-wm/fenestra/internal/x11core"
)

var log = flog.New("main")

func main() {
	opt, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if opt.logFilter != "" {
		flog.InitFromString(opt.logFilter)
	} else {
		flog.Init()
	}

	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "fenestra: %v\n", err)
		os.Exit(1)
	}
}

func run(opt cliOptions) error {
	if err := config.EnsureExists(); err != nil {
		return fmt.Errorf("preparing config directory: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opt.benchmark {
		cfg.Compositor.Vsync = config.VsyncOff
	}

	core, err := x11core.Open()
	if err != nil {
		return fmt.Errorf("opening X display: %w", err)
	}
	defer core.Close()

	if err := core.RequireCore(); err != nil {
		return err
	}

	at, err := atoms.New(core.XU)
	if err != nil {
		return fmt.Errorf("interning atoms: %w", err)
	}

	br := bridge.New()
	controller := wm.New(core, at, br, cfg)

	if err := controller.BecomeWM(opt.replace); err != nil {
		return fmt.Errorf("becoming window manager: %w", err)
	}
	defer controller.Close()

	overlay, visualID, err := openOverlay(core)
	if err != nil {
		log.Warn("no Composite overlay window, compositing against root: %v", err)
		overlay = core.Root
	}

	// fenestra manages a single screen, matching DisplayCore's ":0" fallback.
	glctx, err := glx.Open(uint32(overlay), 0, visualID)
	if err != nil {
		return fmt.Errorf("initializing GLX: %w", err)
	}

	screenW, screenH := core.Screen.WidthInPixels, core.Screen.HeightInPixels
	comp, err := compositor.New(core, glctx, br, &cfg.Compositor, screenW, screenH)
	if err != nil {
		return fmt.Errorf("initializing compositor: %w", err)
	}
	comp.AddOverlay(shell.NewPanel(cfg.Panel))
	comp.AddOverlay(shell.NewLogoutDialog())

	stopCompositor := make(chan struct{})
	go comp.Run(stopCompositor)

	stopWM := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sig
		log.Info("shutting down")
		close(stopWM)
	}()

	runErr := controller.Run(stopWM)
	close(stopCompositor)

	return runErr
}

// openOverlay acquires the Composite overlay window and returns it with the
// root window's visual ID as the visual GLContextMgr should prefer, per
// §4.I step 5's "xfwm4 trick". On failure both returned IDs are zero.
func openOverlay(core *x11core.Core) (uint32, uint32, error) {
	if !core.Ext.Composite {
		return 0, 0, fmt.Errorf("Composite extension unavailable")
	}
	reply, err := composite.GetOverlayWindow(core.Conn, core.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return uint32(reply.OverlayWin), uint32(core.Screen.RootVisual), nil
}
