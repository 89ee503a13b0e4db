// Package compositor implements CompositorCore: the actor goroutine that
// owns the GL context, the CWindow scene, and the cursor mirror, and
// presents a frame whenever the Bridge reports damage. Grounded on
// original_source/src/compositor/mod.rs's drain-then-render loop shape,
// reimplemented with a Go select over the Bridge channel and a ticker
// fallback in place of a condvar.
package compositor

import (
	"runtime"
	"sort"
	"time"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/fenestra-wm/fenestra/internal/bridge"
	"github.com/fenestra-wm/fenestra/internal/config"
	"github.com/fenestra-wm/fenestra/internal/flog"
	"github.com/fenestra-wm/fenestra/internal/glx"
	"github.com/fenestra-wm/fenestra/internal/x11core"
)

var log = flog.New("compositor")

// Quad is a renderable colored rectangle, the narrow contract shell
// overlays and the fallback bind-failure rectangle both produce instead of
// reaching into CompositorCore's GL state directly.
type Quad struct {
	Rect           Rect
	R, G, B, A     float32
}

// RectRenderer is implemented by anything CompositorCore draws without
// owning: currently internal/shell's panel and logout overlays.
type RectRenderer interface {
	Render(screen Rect) []Quad
}

// CompositorCore owns the GL context and the CWindow scene. It must run on
// a single, locked OS thread: GL contexts are not transferable (§5).
type CompositorCore struct {
	core   *x11core.Core
	glctx  *glx.Manager
	bridge *bridge.Bridge
	cfg    *config.Compositor

	scene   map[uint32]*CWindow
	cursor  *CursorOverlay
	overlays []RectRenderer

	screen Rect

	forceRender bool
	fpsFrames   int
	fpsWindow   time.Time
}

// New constructs CompositorCore against an already-open GLX context.
func New(core *x11core.Core, glctx *glx.Manager, br *bridge.Bridge, cfg *config.Compositor, screenW, screenH uint16) (*CompositorCore, error) {
	cursor, err := NewCursorOverlay(core)
	if err != nil {
		return nil, err
	}
	return &CompositorCore{
		core:      core,
		glctx:     glctx,
		bridge:    br,
		cfg:       cfg,
		scene:     make(map[uint32]*CWindow),
		cursor:    cursor,
		screen:    Rect{0, 0, screenW, screenH},
		fpsWindow: time.Time{},
	}, nil
}

// AddOverlay registers a shell overlay (panel, logout dialog) drawn after
// the window scene and before the cursor, per §4.H.2e.
func (cc *CompositorCore) AddOverlay(r RectRenderer) {
	cc.overlays = append(cc.overlays, r)
}

// Run is CompositorCore's goroutine entry point. It must be started with
// go and never migrated across OS threads afterward.
func (cc *CompositorCore) Run(stop <-chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cc.glctx.MakeCurrent()
	switch cc.cfg.Vsync {
	case config.VsyncOff:
		cc.glctx.SetSwapInterval(0)
	case config.VsyncAdaptive:
		cc.glctx.SetSwapInterval(-1)
	default:
		cc.glctx.SetSwapInterval(1)
	}
	setupGLState(cc.screen)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	recv := cc.bridge.Receiver()
	for {
		anyDamage := false

		select {
		case <-stop:
			cc.shutdown()
			return
		case cmd := <-recv:
			anyDamage = cc.applyCommand(cmd) || anyDamage
			drain := true
			for drain {
				select {
				case cmd := <-recv:
					anyDamage = cc.applyCommand(cmd) || anyDamage
				default:
					drain = false
				}
			}
		case <-ticker.C:
		}

		cursorMoved := cc.cursor.Update()
		if cc.forceRender || anyDamage || cursorMoved {
			cc.renderFrame()
			cc.forceRender = false
		}
	}
}

// applyCommand implements §4.H.1's command drain; returns whether the
// command marks something damaged (and thus worth a render).
func (cc *CompositorCore) applyCommand(cmd bridge.Command) bool {
	switch cmd.Kind {
	case bridge.AddWindow:
		w := &CWindow{
			ID: cmd.Window, Viewable: true, Opacity: 1.0,
			Layer: cmd.Layer, ZIndex: cmd.ZIndex,
			Geometry: Rect{cmd.Geometry.X, cmd.Geometry.Y, cmd.Geometry.Width, cmd.Geometry.Height},
		}
		cc.subscribeDamage(w)
		cc.scene[uint32(cmd.Window)] = w
		return true

	case bridge.RemoveWindow:
		if w, ok := cc.scene[uint32(cmd.Window)]; ok {
			cc.unsubscribeDamage(w)
			cc.releaseBinding(w)
			delete(cc.scene, uint32(cmd.Window))
		}
		return true

	case bridge.UpdateWindowGeometry:
		if w, ok := cc.scene[uint32(cmd.Window)]; ok {
			newGeom := Rect{cmd.Geometry.X, cmd.Geometry.Y, cmd.Geometry.Width, cmd.Geometry.Height}
			if newGeom.Width != w.Geometry.Width || newGeom.Height != w.Geometry.Height {
				cc.releaseBinding(w)
			}
			w.Geometry = newGeom
			w.Layer, w.ZIndex = cmd.Layer, cmd.ZIndex
			w.Damaged = true
		}
		return true

	case bridge.UpdateWindowDamage:
		if w, ok := cc.scene[uint32(cmd.Window)]; ok {
			w.Damaged = true
		}
		return true

	case bridge.UpdateCursor:
		cc.cursor.SetPosition(cmd.CursorX, cmd.CursorY, cmd.Visible)
		return true

	case bridge.UnredirectWindow:
		if w, ok := cc.scene[uint32(cmd.Window)]; ok {
			if cc.core.Ext.Composite {
				composite.UnredirectWindow(cc.core.Conn, w.ID, composite.RedirectManual)
			}
			w.Unredirected = true
		}
		return true

	case bridge.RedirectWindow:
		if w, ok := cc.scene[uint32(cmd.Window)]; ok {
			if cc.core.Ext.Composite {
				composite.RedirectWindow(cc.core.Conn, w.ID, composite.RedirectManual)
			}
			w.Unredirected = false
			w.Damaged = true
		}
		return true

	case bridge.TriggerRender:
		cc.forceRender = true
		return false

	case bridge.Shutdown:
		cc.forceRender = true
		return false
	}
	return false
}

func (cc *CompositorCore) subscribeDamage(w *CWindow) {
	if !cc.core.Ext.Damage {
		return
	}
	id, err := damage.NewDamageId(cc.core.Conn)
	if err != nil {
		return
	}
	if err := damage.CreateChecked(cc.core.Conn, id, w.ID, damage.ReportLevelNonEmpty).Check(); err != nil {
		return
	}
	w.damageObj = id
	w.hasDamage = true
}

func (cc *CompositorCore) unsubscribeDamage(w *CWindow) {
	if w.hasDamage {
		damage.Destroy(cc.core.Conn, w.damageObj)
		w.hasDamage = false
	}
}

// renderFrame is the §4.H.2 body: bind outstanding textures, draw the
// scene in stacking order, subtract damage, draw overlays and cursor,
// swap.
func (cc *CompositorCore) renderFrame() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	for _, w := range cc.scene {
		if !w.bound && !w.BindFailed {
			cc.bindTexture(w)
		}
	}

	ordered := make([]*CWindow, 0, len(cc.scene))
	for _, w := range cc.scene {
		ordered = append(ordered, w)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Layer != ordered[j].Layer {
			return ordered[i].Layer < ordered[j].Layer
		}
		return ordered[i].ZIndex < ordered[j].ZIndex
	})

	for _, w := range ordered {
		if !w.presentable() {
			continue
		}
		if w.BindFailed || !w.bound {
			drawFallbackQuad(w.Geometry)
			continue
		}
		if w.Damaged {
			if err := cc.refreshTexture(w); err != nil {
				w.BindFailed = true
				drawFallbackQuad(w.Geometry)
				continue
			}
		}
		drawTexturedQuad(w.Geometry, w.texture, w.Opacity)
		if w.Damaged && w.hasDamage {
			damage.Subtract(cc.core.Conn, w.damageObj, 0, 0)
			w.Damaged = false
		}
	}

	for _, ov := range cc.overlays {
		for _, q := range ov.Render(cc.screen) {
			drawColorQuad(q)
		}
	}

	if rect, tex, ok := cc.cursor.Quad(); ok {
		drawTexturedQuad(rect, tex, 1.0)
	}

	cc.glctx.SwapBuffers()
	cc.fpsFrames++
	if cc.fpsWindow.IsZero() {
		cc.fpsWindow = time.Now()
	} else if since := time.Now().Sub(cc.fpsWindow); since >= 5*time.Second {
		log.Debug("%.1f fps", float64(cc.fpsFrames)/since.Seconds())
		cc.fpsFrames = 0
		cc.fpsWindow = time.Now()
	}
}

func (cc *CompositorCore) shutdown() {
	for _, w := range cc.scene {
		cc.unsubscribeDamage(w)
		cc.releaseBinding(w)
	}
	cc.glctx.Close()
}
