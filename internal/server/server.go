// Package server serves a bundled project the way the descriptor's dev
// server block describes.
package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// reloadClient is injected into served HTML pages when inline reload is on.
const reloadClient = `<script>new EventSource("/events").onmessage=function(e){if(e.data==="reload")location.reload()};</script>`

// Server serves Root from Fs.
type Server struct {
	Addr   string
	Root   string
	Fs     afero.Fs
	Hot    bool // expose /events and watch for changes
	Inline bool // inject the reload client into HTML

	// WatchDir is watched when Hot is set. Rebuild, if set, runs before
	// clients are told to reload; a failing rebuild sends no reload.
	WatchDir string
	Rebuild  func() error
	Debounce time.Duration

	logger    *slog.Logger
	hub       *hub
	rebuildMu sync.Mutex
}

// New creates a server for the descriptor's dev server block.
func New(ds models.DevServer, fs afero.Fs, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Addr:     net.JoinHostPort("localhost", strconv.Itoa(ds.Port)),
		Root:     ds.ContentBase,
		Fs:       fs,
		Hot:      ds.Hot,
		Inline:   ds.Inline && ds.Hot,
		Debounce: 300 * time.Millisecond,
		logger:   logger,
		hub:      newHub(),
	}
}

// gzipResponseWriter wraps the underlying ResponseWriter to enable Gzip compression
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func gzipHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()
		next(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	}
}

// Handler returns the HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.Hot {
		mux.HandleFunc("/events", s.hub.handleSSE)
	}
	mux.HandleFunc("/", gzipHandler(s.serveFile))
	return mux
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	rel := normalizeRequestPath(r.URL.Path)
	fullPath, err := validatePath(s.Root, rel)
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("403 - Forbidden: Invalid path"))
		return
	}

	info, err := s.Fs.Stat(fullPath)
	if err == nil && info.IsDir() {
		fullPath = path.Join(fullPath, "index.html")
		info, err = s.Fs.Stat(fullPath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 - Page Not Found"))
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("500 - Internal Server Error"))
		}
		return
	}

	filename := path.Base(fullPath)
	isHTML := strings.HasSuffix(filename, ".html")
	switch {
	case isHashedAsset(filename):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case isHTML:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
	default:
		w.Header().Set("Cache-Control", "public, max-age=60")
	}

	data, err := afero.ReadFile(s.Fs, fullPath)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("500 - Internal Server Error"))
		return
	}
	if isHTML && s.Inline {
		data = injectClient(data)
	}
	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func injectClient(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(page, reloadClient...)
	}
	out := make([]byte, 0, len(page)+len(reloadClient))
	out = append(out, page[:i]...)
	out = append(out, reloadClient...)
	return append(out, page[i:]...)
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.Hot && s.WatchDir != "" {
		w, err := s.watch(ctx, s.WatchDir)
		if err != nil {
			s.logger.Warn("file watching disabled", "dir", s.WatchDir, "error", err)
		} else {
			defer w.stop()
		}
	}

	httpServer := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		fmt.Println("\n🛑 Shutting down HTTP server...")
		s.hub.close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown error", "error", err)
		}
	}()

	fmt.Printf("🌍 Serving %s on http://%s\n", s.Root, s.Addr)
	if s.Hot {
		fmt.Println("   (Auto-reload enabled via /events)")
	}

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Println("✅ Server stopped.")
	return nil
}
