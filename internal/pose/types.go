package pose

import (
	"errors"
	"fmt"
)

// #region errors
var (
	// ErrIncompleteSet is returned when a landmark set lacks a point every evaluated joint needs.
	ErrIncompleteSet = errors.New("incomplete landmark set")
	// ErrUnknownLandmark is returned for a landmark name or ID outside the enumeration.
	ErrUnknownLandmark = errors.New("unknown landmark")
)

// #endregion errors

// #region side-role
// Side is the body side a landmark belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Role is the anatomical role of a landmark, independent of side.
type Role string

const (
	RoleHip   Role = "hip"
	RoleKnee  Role = "knee"
	RoleAnkle Role = "ankle"
)

// #endregion side-role

// #region landmark-id
// LandmarkID names one anatomical point by side and role.
type LandmarkID int

const (
	LeftHip LandmarkID = iota
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle

	numLandmarks
)

var landmarkNames = [numLandmarks]string{
	LeftHip:    "left_hip",
	RightHip:   "right_hip",
	LeftKnee:   "left_knee",
	RightKnee:  "right_knee",
	LeftAnkle:  "left_ankle",
	RightAnkle: "right_ankle",
}

// AllLandmarks lists every ID a complete Set carries, in enumeration order.
func AllLandmarks() []LandmarkID {
	ids := make([]LandmarkID, numLandmarks)
	for i := range ids {
		ids[i] = LandmarkID(i)
	}
	return ids
}

// ID resolves the landmark for a side and role.
func ID(side Side, role Role) (LandmarkID, error) {
	name := string(side) + "_" + string(role)
	return ParseLandmarkID(name)
}

// LegChain returns the hip, knee and ankle IDs of one leg. Any side other than
// SideRight resolves to the left leg.
func LegChain(side Side) (hip, knee, ankle LandmarkID) {
	if side == SideRight {
		return RightHip, RightKnee, RightAnkle
	}
	return LeftHip, LeftKnee, LeftAnkle
}

// ParseLandmarkID maps a snake_case name such as "left_knee" to its ID.
func ParseLandmarkID(name string) (LandmarkID, error) {
	for i, n := range landmarkNames {
		if n == name {
			return LandmarkID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLandmark, name)
}

// Valid reports whether id is inside the enumeration.
func (id LandmarkID) Valid() bool {
	return id >= 0 && id < numLandmarks
}

func (id LandmarkID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("landmark(%d)", int(id))
	}
	return landmarkNames[id]
}

// #endregion landmark-id

// #region landmark
// Landmark is one estimated point. Visibility is the estimator's confidence; 0 means
// the estimator did not report one.
type Landmark struct {
	ID         LandmarkID
	X          float64
	Y          float64
	Visibility float64
}

// #endregion landmark
