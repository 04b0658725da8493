package pose

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/squat-coach/internal/geometry"
)

// #region set
// Set is the immutable landmark collection for one frame. A nil *Set means no pose
// was detected; a non-nil Set always carries every ID in AllLandmarks.
type Set struct {
	points [numLandmarks]Landmark
}

// NewSet validates that every required landmark is present exactly once.
func NewSet(landmarks []Landmark) (*Set, error) {
	var s Set
	var seen [numLandmarks]bool
	for _, lm := range landmarks {
		if !lm.ID.Valid() {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownLandmark, int(lm.ID))
		}
		if seen[lm.ID] {
			return nil, fmt.Errorf("duplicate landmark %s", lm.ID)
		}
		seen[lm.ID] = true
		s.points[lm.ID] = lm
	}

	var missing []string
	for i, ok := range seen {
		if !ok {
			missing = append(missing, LandmarkID(i).String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteSet, strings.Join(missing, ", "))
	}
	return &s, nil
}

// Get returns the landmark for id. id must be valid.
func (s *Set) Get(id LandmarkID) Landmark {
	return s.points[id]
}

// Point returns the planar position of id.
func (s *Set) Point(id LandmarkID) geometry.Point {
	lm := s.points[id]
	return geometry.Point{X: lm.X, Y: lm.Y}
}

// Landmarks returns a copy of the set's points in enumeration order.
func (s *Set) Landmarks() []Landmark {
	out := make([]Landmark, numLandmarks)
	copy(out, s.points[:])
	return out
}

// #endregion set

// #region json
type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility,omitempty"`
}

// MarshalJSON encodes the set as an object keyed by landmark name.
func (s *Set) MarshalJSON() ([]byte, error) {
	m := make(map[string]jsonLandmark, numLandmarks)
	for _, lm := range s.points {
		m[lm.ID.String()] = jsonLandmark{X: lm.X, Y: lm.Y, Visibility: lm.Visibility}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the named-object form and validates completeness.
// Names outside the enumeration are ignored so estimator output carrying extra
// points (nose, shoulders, ...) can be passed through unchanged.
func (s *Set) UnmarshalJSON(data []byte) error {
	var m map[string]jsonLandmark
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode landmarks: %w", err)
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	landmarks := make([]Landmark, 0, numLandmarks)
	for _, name := range names {
		id, err := ParseLandmarkID(name)
		if err != nil {
			continue
		}
		jl := m[name]
		landmarks = append(landmarks, Landmark{ID: id, X: jl.X, Y: jl.Y, Visibility: jl.Visibility})
	}

	built, err := NewSet(landmarks)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}

// #endregion json
