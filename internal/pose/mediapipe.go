package pose

import "fmt"

// #region mediapipe
// BlazePose (MediaPipe Pose) emits 33 points per frame; only the lower-limb
// indices below are consumed.
const mediaPipePointCount = 33

var mediaPipeIndex = map[LandmarkID]int{
	LeftHip:    11,
	RightHip:   12,
	LeftKnee:   13,
	RightKnee:  14,
	LeftAnkle:  15,
	RightAnkle: 16,
}

// MediaPipePoint is one entry of the estimator's indexed landmark list.
type MediaPipePoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// FromMediaPipe builds a Set from a full 33-point MediaPipe landmark list.
// An empty list means no pose was detected and yields a nil Set.
func FromMediaPipe(points []MediaPipePoint) (*Set, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if len(points) != mediaPipePointCount {
		return nil, fmt.Errorf("%w: mediapipe list has %d points, want %d",
			ErrIncompleteSet, len(points), mediaPipePointCount)
	}

	landmarks := make([]Landmark, 0, len(mediaPipeIndex))
	for _, id := range AllLandmarks() {
		p := points[mediaPipeIndex[id]]
		landmarks = append(landmarks, Landmark{ID: id, X: p.X, Y: p.Y, Visibility: p.Visibility})
	}
	return NewSet(landmarks)
}

// #endregion mediapipe
