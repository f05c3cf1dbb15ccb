package sink

import (
	"bufio"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/radarlab/radarview/internal/render"
)

func TestDisplayDisabled(t *testing.T) {
	d := NewDisplay("")
	if d.Enabled() {
		t.Fatal("empty listen address should disable the display")
	}
	if err := d.Push(render.NewRasterFrame(8, 8)); err != nil {
		t.Errorf("Push() on disabled display error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() on disabled display error = %v", err)
	}
}

func TestDisplayDegradesOnBindFailure(t *testing.T) {
	d := NewDisplay("256.256.256.256:99999")
	if d.Enabled() {
		t.Fatal("unbindable address should degrade to a disabled display")
	}
	if err := d.Push(render.NewRasterFrame(8, 8)); err != nil {
		t.Errorf("Push() after degrade error = %v", err)
	}
}

func TestDisplayStreamsFrames(t *testing.T) {
	d := NewDisplay("127.0.0.1:0")
	if !d.Enabled() {
		t.Skip("cannot bind a loopback listener in this environment")
	}
	defer d.Close()

	resp, err := http.Get("http://" + d.Addr() + "/stream")
	if err != nil {
		t.Fatalf("GET /stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("Content-Type = %q, want multipart/x-mixed-replace", ct)
	}

	// Feed frames until the handler has published one part.
	done := make(chan struct{})
	go func() {
		rf := render.NewRasterFrame(16, 16)
		for {
			select {
			case <-done:
				return
			default:
				d.Push(rf)
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
	defer close(done)

	br := bufio.NewReader(resp.Body)
	deadline := time.After(5 * time.Second)
	lineCh := make(chan string, 1)
	go func() {
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if strings.HasPrefix(line, "Content-Type: image/jpeg") {
				lineCh <- line
				return
			}
		}
	}()

	select {
	case <-lineCh:
	case <-deadline:
		t.Fatal("no MJPEG part arrived within 5s")
	}
}

func TestDisplayIndexPage(t *testing.T) {
	d := NewDisplay("127.0.0.1:0")
	if !d.Enabled() {
		t.Skip("cannot bind a loopback listener in this environment")
	}
	defer d.Close()

	resp, err := http.Get("http://" + d.Addr() + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", resp.StatusCode)
	}
}
