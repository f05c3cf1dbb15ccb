package sink

import (
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/radarlab/radarview/internal/fsutil"
	"github.com/radarlab/radarview/internal/monitoring"
	"github.com/radarlab/radarview/internal/render"
)

// keyframeInterval is the H.264 GOP size. Short groups keep partially
// written files seekable and playable after an aborted session.
const keyframeInterval = 5

// EncoderInitError reports that the encoder sink could not be constructed:
// unwritable output directory, missing ffmpeg, or a failed process start.
type EncoderInitError struct {
	Path string
	Err  error
}

func (e *EncoderInitError) Error() string {
	return fmt.Sprintf("init encoder for %s: %v", e.Path, e.Err)
}

func (e *EncoderInitError) Unwrap() error { return e.Err }

// Encoder pipes raw RGB24 frames into an ffmpeg child process producing an
// H.264 mp4. One encoder serves one session; it is created lazily once the
// first frame's dimensions are known and cannot be resized.
type Encoder struct {
	path   string
	w, h   int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	frames int
	closed bool
}

// NewEncoder validates the output location and starts ffmpeg. Frame size is
// fixed for the encoder's lifetime.
func NewEncoder(path string, w, h, frameRate, quality int) (*Encoder, error) {
	if w <= 0 || h <= 0 {
		return nil, &EncoderInitError{Path: path, Err: fmt.Errorf("invalid frame size %dx%d", w, h)}
	}
	if err := fsutil.DirWritable(filepath.Dir(path)); err != nil {
		return nil, &EncoderInitError{Path: path, Err: err}
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &EncoderInitError{Path: path, Err: err}
	}

	cmd := exec.Command(ffmpeg, encoderArgs(w, h, frameRate, quality, path)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &EncoderInitError{Path: path, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &EncoderInitError{Path: path, Err: err}
	}

	monitoring.Logf("encoder: writing %dx%d video to %s", w, h, path)
	return &Encoder{path: path, w: w, h: h, cmd: cmd, stdin: stdin}, nil
}

// encoderArgs builds the ffmpeg invocation: raw RGB24 on stdin, libx264 out.
func encoderArgs(w, h, frameRate, quality int, out string) []string {
	return []string{
		"-y",
		"-loglevel", "warning",
		"-f", "rawvideo",
		"-vcodec", "rawvideo",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-pix_fmt", "rgb24",
		"-r", strconv.Itoa(frameRate),
		"-i", "-",
		"-an",
		"-vcodec", "libx264",
		"-pix_fmt", "yuv444p",
		"-crf", strconv.Itoa(quality),
		"-g", strconv.Itoa(keyframeInterval),
		out,
	}
}

// Push writes one frame to the encoder. The frame must match the dimensions
// the encoder was opened with.
func (e *Encoder) Push(rf *render.RasterFrame) error {
	if e.closed {
		return fmt.Errorf("encoder for %s is closed", e.path)
	}
	if rf.W != e.w || rf.H != e.h {
		return fmt.Errorf("frame is %dx%d, encoder for %s locked to %dx%d",
			rf.W, rf.H, e.path, e.w, e.h)
	}
	if _, err := e.stdin.Write(rf.Pix); err != nil {
		return fmt.Errorf("write frame to encoder for %s: %w", e.path, err)
	}
	e.frames++
	return nil
}

// Frames returns the number of frames accepted so far.
func (e *Encoder) Frames() int { return e.frames }

// Close finalises the video: flushes stdin, waits for ffmpeg, and surfaces a
// non-zero exit. Output written before an error remains playable up to the
// last encoded frame. Idempotent.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.stdin.Close(); err != nil {
		// Keep waiting; the process still needs reaping.
		monitoring.Logf("encoder: close stdin for %s: %v", e.path, err)
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg for %s: %w", e.path, err)
	}
	monitoring.Logf("encoder: finished %s (%d frames)", e.path, e.frames)
	return nil
}
