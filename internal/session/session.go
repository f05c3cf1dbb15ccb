package session

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/radarlab/radarview/internal/config"
	"github.com/radarlab/radarview/internal/frames"
	"github.com/radarlab/radarview/internal/monitoring"
	"github.com/radarlab/radarview/internal/overlay"
	"github.com/radarlab/radarview/internal/pbs"
	"github.com/radarlab/radarview/internal/render"
	"github.com/radarlab/radarview/internal/sink"
)

// State tracks a session through its lifecycle. Closed is terminal.
type State int

const (
	Idle State = iota
	Opening
	Streaming
	Draining
	Aborted
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Opening:
		return "opening"
	case Streaming:
		return "streaming"
	case Draining:
		return "draining"
	case Aborted:
		return "aborted"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EncoderFactory builds the encoder sink once the first frame's dimensions
// are known. Tests substitute a capture sink; production wires ffmpeg.
type EncoderFactory func(path string, w, h int) (sink.Sink, error)

// Config carries the collaborators and options shared across a batch.
type Config struct {
	// Display receives every emitted frame when non-nil. Shared across
	// sessions; the batch owns its lifecycle, not the session.
	Display sink.Sink

	// NewEncoder is invoked lazily on the first frame of a session with an
	// output path. Nil disables encoding.
	NewEncoder EncoderFactory

	ShowRangeGrid  bool
	GridSeparation float64

	// Tuning optionally overrides the point-cloud imaging window.
	Tuning *config.ViewConfig
}

// Session processes one IOPath from open to close.
type Session struct {
	io  IOPath
	cfg Config
	id  string

	state      State
	frames     int
	emitted    int
	lastResult error
}

// New prepares a session in the Idle state.
func New(ioPath IOPath, cfg Config) *Session {
	return &Session{
		io:  ioPath,
		cfg: cfg,
		id:  uuid.NewString(),
	}
}

// ID returns the session's batch-unique id used in log lines.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Emitted returns how many frames reached the sinks.
func (s *Session) Emitted() int { return s.emitted }

func (s *Session) logf(format string, v ...interface{}) {
	monitoring.Logf("session %s (%s, %s): "+format,
		append([]interface{}{s.id[:8], s.io.RadarName, s.io.Mode}, v...)...)
}

// decode converts one raw record according to the session's mode.
func (s *Session) decode(raw []byte) (frames.Frame, error) {
	if s.io.Mode == ModePointCloud {
		return frames.DecodeTrackerState(raw)
	}
	return frames.DecodeImage(raw)
}

// newRenderer picks the renderer variant for the session's mode.
func (s *Session) newRenderer() render.Renderer {
	if s.io.Mode == ModePointCloud {
		r := render.NewPointCloudRenderer()
		s.cfg.Tuning.ApplyWindow(r)
		return r
	}
	return render.NewImageRenderer()
}

// Run drives the session to completion. Any exit path — exhaustion, decode
// failure, corrupt stream, cancellation — releases the reader and finalises
// the encoder before Run returns, and leaves the session Closed.
func (s *Session) Run(ctx context.Context) error {
	if s.state != Idle {
		return fmt.Errorf("session %s already ran (state %s)", s.id[:8], s.state)
	}

	s.state = Opening
	reader, err := pbs.Open(s.io.InputPath)
	if err != nil {
		// No encoder or display resource has been touched yet.
		s.state = Closed
		s.lastResult = err
		return err
	}

	renderer := s.newRenderer()
	ov := overlay.Overlay{ShowRangeGrid: s.cfg.ShowRangeGrid, Separation: s.cfg.GridSeparation}

	var fanout sink.Fanout
	fanout.Attach(s.cfg.Display)
	var encoder sink.Sink

	defer func() {
		reader.Close()
		if encoder != nil {
			if err := encoder.Close(); err != nil {
				s.logf("finalise encoder: %v", err)
				if s.lastResult == nil {
					s.lastResult = err
				}
			}
		}
		s.state = Closed
		s.logf("closed after %d records, %d frames emitted", s.frames, s.emitted)
	}()

	s.state = Streaming
	s.logf("streaming %s", s.io.InputPath)

	for {
		if err := ctx.Err(); err != nil {
			s.state = Aborted
			s.lastResult = err
			return err
		}

		raw, err := reader.Next()
		if err == io.EOF {
			s.state = Draining
			return nil
		}
		if err != nil {
			s.state = Aborted
			s.lastResult = err
			return err
		}
		s.frames++

		frame, err := s.decode(raw)
		if err != nil {
			s.state = Aborted
			s.lastResult = err
			return err
		}

		// Skip-empty policy: a tracker record with no detections emits no
		// frame at all, to every sink alike. Blank frames in the output
		// video are worse than dropped ones.
		if pc, ok := frame.(*frames.PointCloudFrame); ok && len(pc.Points) == 0 {
			continue
		}

		rf, err := renderer.Render(frame)
		if err != nil {
			s.state = Aborted
			s.lastResult = err
			return err
		}
		rf = ov.Apply(frame, rf)

		// Sink-init step: the encoder needs the first frame's dimensions.
		if encoder == nil && s.io.OutputPath != "" && s.cfg.NewEncoder != nil {
			enc, err := s.cfg.NewEncoder(s.io.OutputPath, rf.W, rf.H)
			if err != nil {
				s.state = Aborted
				s.lastResult = err
				return err
			}
			encoder = enc
			fanout.Attach(encoder)
		}

		if err := fanout.Push(rf); err != nil {
			s.state = Aborted
			s.lastResult = err
			return fmt.Errorf("deliver frame %d: %w", frame.ID(), err)
		}
		s.emitted++
	}
}
