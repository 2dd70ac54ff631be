package middleware

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const defaultBrotliMinLength = 1024

// BrotliOption customises the Brotli middleware.
type BrotliOption func(*brotliOptions)

type brotliOptions struct {
	quality   int
	minLength int
}

// BrotliQuality sets the encoder quality, 0 to 11.
func BrotliQuality(q int) BrotliOption {
	return func(o *brotliOptions) {
		if q >= brotli.BestSpeed && q <= brotli.BestCompression {
			o.quality = q
		}
	}
}

// BrotliMinLength sets the smallest body that is worth compressing.
func BrotliMinLength(n int) BrotliOption {
	return func(o *brotliOptions) {
		if n > 0 {
			o.minLength = n
		}
	}
}

// Brotli compresses responses for clients that accept br. Bodies shorter than
// the minimum length and media that is already compressed pass through as is.
func Brotli(opts ...BrotliOption) gin.HandlerFunc {
	o := brotliOptions{quality: brotli.DefaultCompression, minLength: defaultBrotliMinLength}
	for _, opt := range opts {
		opt(&o)
	}
	pool := &sync.Pool{New: func() interface{} {
		return brotli.NewWriterLevel(io.Discard, o.quality)
	}}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || isStreaming(c.Request) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		bw := &brotliWriter{ResponseWriter: c.Writer, pool: pool, minLength: o.minLength}
		c.Writer = bw
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

// brotliWriter buffers the start of a body until it can decide whether
// to compress, then streams the rest through the chosen path.
type brotliWriter struct {
	gin.ResponseWriter
	pool      *sync.Pool
	enc       *brotli.Writer
	buf       []byte
	minLength int
	decided   bool
}

func (bw *brotliWriter) Write(p []byte) (int, error) {
	if bw.decided {
		return bw.sink().Write(p)
	}
	bw.buf = append(bw.buf, p...)
	if len(bw.buf) < bw.minLength {
		return len(p), nil
	}
	bw.decide(true)
	return len(p), bw.drain()
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush pushes out whatever is buffered for streaming handlers.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		bw.decide(false)
	}
	_ = bw.drain()
	if bw.enc != nil {
		_ = bw.enc.Flush()
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) sink() io.Writer {
	if bw.enc != nil {
		return bw.enc
	}
	return bw.ResponseWriter
}

func (bw *brotliWriter) decide(largeEnough bool) {
	bw.decided = true
	h := bw.Header()
	if !largeEnough || h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
		return
	}
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	bw.enc = bw.pool.Get().(*brotli.Writer)
	bw.enc.Reset(bw.ResponseWriter)
}

func (bw *brotliWriter) drain() error {
	if len(bw.buf) == 0 {
		return nil
	}
	_, err := bw.sink().Write(bw.buf)
	bw.buf = bw.buf[:0]
	return err
}

func (bw *brotliWriter) finish() error {
	if !bw.decided {
		bw.decide(false)
	}
	err := bw.drain()
	if bw.enc != nil {
		if cerr := bw.enc.Close(); err == nil {
			err = cerr
		}
		bw.pool.Put(bw.enc)
		bw.enc = nil
	}
	return err
}

// compressible reports whether a content type benefits from compression.
// Images other than SVG, audio, video and archives are already compressed.
func compressible(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case mt == "image/svg+xml":
		return true
	case strings.HasPrefix(mt, "image/"), strings.HasPrefix(mt, "audio/"), strings.HasPrefix(mt, "video/"):
		return false
	case mt == "application/zip", mt == "application/gzip", mt == "application/pdf":
		return false
	}
	return true
}

// isStreaming matches WebSocket handshakes and SSE, which need the raw writer.
func isStreaming(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
