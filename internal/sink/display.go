package sink

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"net"
	"net/http"
	"sync"

	"github.com/radarlab/radarview/internal/monitoring"
	"github.com/radarlab/radarview/internal/render"
)

// Display serves the live preview as an MJPEG stream over HTTP. It is the
// one resource shared across sessions in a batch: sessions push frames
// exclusively, one at a time.
//
// A Display never fails the pipeline. If the listen socket cannot be bound
// it logs once and degrades to a no-op; Push and Close stay safe to call.
type Display struct {
	ln  net.Listener
	srv *http.Server

	mu     sync.Mutex
	cond   *sync.Cond
	frame  []byte // latest JPEG-encoded frame
	seq    uint64
	closed bool

	disabled bool
}

// NewDisplay binds the preview server on addr ("" disables the display
// entirely, ":0" picks an ephemeral port). The returned Display is always
// usable.
func NewDisplay(addr string) *Display {
	d := &Display{}
	d.cond = sync.NewCond(&d.mu)

	if addr == "" {
		d.disabled = true
		return d
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		monitoring.Logf("display: cannot bind %s, preview disabled: %v", addr, err)
		d.disabled = true
		return d
	}
	d.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleIndex)
	mux.HandleFunc("/stream", d.handleStream)
	d.srv = &http.Server{Handler: mux}
	go func() {
		if err := d.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("display: server stopped: %v", err)
		}
	}()

	monitoring.Logf("display: live preview on http://%s/", ln.Addr())
	return d
}

// Addr returns the bound listen address, or "" when the display is disabled.
func (d *Display) Addr() string {
	if d.disabled {
		return ""
	}
	return d.ln.Addr().String()
}

// Enabled reports whether the preview server is live.
func (d *Display) Enabled() bool { return !d.disabled }

// Push publishes one frame to all connected viewers. Never fails; encoding
// or delivery problems are the display's own to log.
func (d *Display) Push(rf *render.RasterFrame) error {
	if d.disabled {
		return nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rf, &jpeg.Options{Quality: 80}); err != nil {
		monitoring.Logf("display: encode frame: %v", err)
		return nil
	}

	d.mu.Lock()
	d.frame = buf.Bytes()
	d.seq++
	d.mu.Unlock()
	d.cond.Broadcast()
	return nil
}

// Close shuts the preview server down and wakes any streaming handlers.
func (d *Display) Close() error {
	if d.disabled {
		return nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()
	d.cond.Broadcast()
	return d.srv.Close()
}

func (d *Display) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html><title>radarview</title>`+
		`<body style="margin:0;background:#000"><img src="/stream"></body>`)
}

// handleStream writes a multipart MJPEG response, one part per new frame.
func (d *Display) handleStream(w http.ResponseWriter, r *http.Request) {
	const boundary = "radarviewframe"
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	// Send headers now; the first frame may be a long wait away.
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var last uint64
	for {
		d.mu.Lock()
		for d.seq == last && !d.closed {
			d.cond.Wait()
		}
		if d.closed {
			d.mu.Unlock()
			return
		}
		last = d.seq
		frame := d.frame
		d.mu.Unlock()

		if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(frame)); err != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
