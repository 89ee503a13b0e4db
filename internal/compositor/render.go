// GL drawing helpers for CompositorCore's render step: an orthographic
// projection matching root window coordinates, and three quad-drawing
// primitives (textured window, textured cursor, flat fallback/overlay
// color) using go-gl/gl/v2.1's immediate-mode calls, the same style
// other_examples' cangzhang-gio-example and moderniselife-ultrardp use
// once their GLX context is current.
package compositor

import (
	"github.com/go-gl/gl/v2.1/gl"
)

// setupGLState configures the fixed-function pipeline once at startup: an
// orthographic projection in root pixel coordinates (origin top-left, Y
// down, matching X11), alpha blending for window opacity and ARGB cursor
// pixels, and texturing enabled for the quad draws.
func setupGLState(screen Rect) {
	gl.Viewport(0, 0, int32(screen.Width), int32(screen.Height))
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(screen.Width), float64(screen.Height), 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
}

// drawTexturedQuad draws a window or cursor quad textured from tex, at
// opacity alpha (1.0 for the cursor, the CWindow's Opacity for windows).
func drawTexturedQuad(r Rect, tex uint32, alpha float64) {
	gl.Enable(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Color4f(1, 1, 1, float32(alpha))

	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := x0+float32(r.Width), y0+float32(r.Height)

	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(x0, y0)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(x1, y0)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(x1, y1)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(x0, y1)
	gl.End()

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.TEXTURE_2D)
}

// drawFallbackQuad draws the flat rectangle a bind_failed CWindow shows
// instead of leaving a black hole in the scene (§3's invariant).
func drawFallbackQuad(r Rect) {
	drawColorQuad(Quad{Rect: r, R: 0.25, G: 0.25, B: 0.25, A: 1})
}

// drawColorQuad draws a flat colored rectangle: shell overlays and the
// bind-failure fallback both go through this.
func drawColorQuad(q Quad) {
	gl.Disable(gl.TEXTURE_2D)
	gl.Color4f(q.R, q.G, q.B, q.A)

	x0, y0 := float32(q.Rect.X), float32(q.Rect.Y)
	x1, y1 := x0+float32(q.Rect.Width), y0+float32(q.Rect.Height)

	gl.Begin(gl.QUADS)
	gl.Vertex2f(x0, y0)
	gl.Vertex2f(x1, y0)
	gl.Vertex2f(x1, y1)
	gl.Vertex2f(x0, y1)
	gl.End()
}
