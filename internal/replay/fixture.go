package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// ErrDuplicateFrame is returned when a stream repeats a frame index.
var ErrDuplicateFrame = errors.New("duplicate frame index")

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string                  `json:"description"`
	Thresholds  map[string]float64      `json:"thresholds"`
	Frames      []FixtureFrame          `json:"frames"`
	Expected    []FixtureExpectedResult `json:"expected"`
}

// FixtureFrame is one recorded estimator output. Landmarks is null when no pose
// was detected; MediaPipe carries the raw 33-point list instead, when present.
type FixtureFrame struct {
	Index     int                   `json:"index"`
	Landmarks *pose.Set             `json:"landmarks"`
	MediaPipe []pose.MediaPipePoint `json:"mediapipe,omitempty"`
}

// FixtureExpectedResult captures the expected display lines per frame.
type FixtureExpectedResult struct {
	Index int      `json:"index"`
	Lines []string `json:"lines"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// KneeThresholds converts the fixture's flat thresholds.
func (f *Fixture) KneeThresholds() (feedback.Thresholds, error) {
	return feedback.ThresholdsFromFlat(f.Thresholds)
}

// ToFrames converts fixture frames to domain frames. Frame indices must be unique.
func (f *Fixture) ToFrames() ([]Frame, error) {
	frames := make([]Frame, len(f.Frames))
	seen := make(map[int]bool, len(f.Frames))
	for i := range f.Frames {
		if seen[f.Frames[i].Index] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateFrame, f.Frames[i].Index)
		}
		seen[f.Frames[i].Index] = true
		fr, err := f.Frames[i].ToFrame()
		if err != nil {
			return nil, err
		}
		frames[i] = fr
	}
	return frames, nil
}

// ToFrame converts a FixtureFrame to a domain Frame.
func (ff *FixtureFrame) ToFrame() (Frame, error) {
	if ff.Landmarks != nil || len(ff.MediaPipe) == 0 {
		return Frame{Index: ff.Index, Landmarks: ff.Landmarks}, nil
	}
	set, err := pose.FromMediaPipe(ff.MediaPipe)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", ff.Index, err)
	}
	return Frame{Index: ff.Index, Landmarks: set}, nil
}

// #endregion fixture-loader

// #region stream-reader

// ReadFrames decodes a JSON-lines landmark stream: one FixtureFrame object per line.
// Blank lines are skipped. A frame without an index takes the previous frame's
// index plus one (0 for the first). A repeated index is an error wrapping
// ErrDuplicateFrame.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	err := ScanFrames(r, func(fr Frame) error {
		frames = append(frames, fr)
		return nil
	})
	return frames, err
}

// ScanFrames streams frames to fn as they are decoded, stopping at the first error.
func ScanFrames(r io.Reader, fn func(Frame) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line, next := 0, 0
	seen := make(map[int]bool)
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		ff := FixtureFrame{Index: -1}
		if err := json.Unmarshal(raw, &ff); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if ff.Index < 0 {
			ff.Index = next
		}
		if seen[ff.Index] {
			return fmt.Errorf("line %d: %w: %d", line, ErrDuplicateFrame, ff.Index)
		}
		seen[ff.Index] = true
		next = ff.Index + 1

		fr, err := ff.ToFrame()
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(fr); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read frames: %w", err)
	}
	return nil
}

// #endregion stream-reader
