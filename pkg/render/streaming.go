package render

import (
	"io"
	"net/http"
)

// StreamingRenderer writes pages in two flushed chunks: the head, so the
// browser can start fetching stylesheets, then the body.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer for w. Flushing only
// happens when w implements http.Flusher.
func NewStreamingRenderer(w io.Writer, config RendererConfig) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: NewRenderer(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders page, flushing after the head and at the end.
func (s *StreamingRenderer) RenderPage(page PageData) error {
	return s.writePage(s.w, page, s.flush)
}

func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// FlushableWriter counts flushes. Useful for exercising streaming output
// without an http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
