package feedback

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/squat-coach/internal/pose"
	"github.com/danielpatrickdp/squat-coach/internal/testutil"
)

var refThresholds = KneeThresholds(70, 120)

// #region measure-tests
func TestMeasure_KneeAngles(t *testing.T) {
	set := testutil.KneeSet(t, 95, 130)
	angles := Measure(set)

	if len(angles) != 2 {
		t.Fatalf("expected 2 angles, got %d", len(angles))
	}
	if angles[0].Joint != LeftKnee || angles[1].Joint != RightKnee {
		t.Fatalf("unexpected order: %+v", angles)
	}
	if math.Abs(angles[0].Degrees-95) > 1e-9 {
		t.Errorf("left = %f, want 95", angles[0].Degrees)
	}
	if math.Abs(angles[1].Degrees-130) > 1e-9 {
		t.Errorf("right = %f, want 130", angles[1].Degrees)
	}
}

// #endregion measure-tests

// #region assess-tests
func TestAssessKneeAngle(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		want string
	}{
		{"good-mid", 95, MsgGoodForm},
		{"good-lower-edge", 70, MsgGoodForm},
		{"good-upper-edge", 120, MsgGoodForm},
		{"too-low", 65, MsgTooLow},
		{"too-shallow", 130, MsgTooShallow},
		{"standing", 180, MsgTooShallow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssessKneeAngle(tt.deg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssess_PerSide(t *testing.T) {
	set := testutil.KneeSet(t, 65, 130)
	if got := Assess(set, pose.SideLeft); got != MsgTooLow {
		t.Errorf("left: got %q", got)
	}
	if got := Assess(set, pose.SideRight); got != MsgTooShallow {
		t.Errorf("right: got %q", got)
	}
}

func TestAssess_IgnoresThresholds(t *testing.T) {
	// Risk bounds that would flag 95° leave the qualitative cue untouched.
	set := testutil.KneeSet(t, 95, 95)
	lines, err := Evaluate(set, KneeThresholds(100, 110))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if lines[0] != MsgGoodForm || lines[1] != MsgGoodForm {
		t.Errorf("joint lines changed with thresholds: %q", lines[:2])
	}
}

// #endregion assess-tests

// #region classify-tests
func TestClassifyAngle(t *testing.T) {
	b := Bounds{Min: 70, Max: 120}
	tests := []struct {
		name     string
		deg      float64
		wantHit  bool
		wantKind RiskKind
	}{
		{"inside", 95, false, ""},
		{"on-min", 70, false, ""},
		{"on-max", 120, false, ""},
		{"below-min", 65, true, Underbend},
		{"above-max", 130, true, Overbend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, hit := ClassifyAngle(LeftKnee, tt.deg, b)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && f.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", f.Kind, tt.wantKind)
			}
		})
	}
}

func TestClassify_Messages(t *testing.T) {
	set := testutil.KneeSet(t, 65, 130)
	got, err := Classify(set, refThresholds)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := []RiskFinding{
		{Joint: LeftKnee, Kind: Underbend, Message: "Left knee over-bending detected."},
		{Joint: RightKnee, Kind: Overbend, Message: "Right knee insufficient bending detected."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_OrderLeftBeforeRight(t *testing.T) {
	set := testutil.KneeSet(t, 95, 65)
	got, err := Classify(set, refThresholds)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got) != 1 || got[0].Joint != RightKnee || got[0].Kind != Underbend {
		t.Fatalf("unexpected findings: %+v", got)
	}
}

func TestClassify_NoRisk(t *testing.T) {
	set := testutil.KneeSet(t, 95, 95)
	got, err := Classify(set, refThresholds)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no findings, got %+v", got)
	}
}

func TestClassify_MissingThreshold(t *testing.T) {
	set := testutil.KneeSet(t, 95, 95)
	th := Thresholds{LeftKnee: {Min: 70, Max: 120}}
	_, err := Classify(set, th)
	if !errors.Is(err, ErrMissingThreshold) {
		t.Fatalf("expected ErrMissingThreshold, got %v", err)
	}
}

// #endregion classify-tests

// #region thresholds-tests
func TestThresholdsFromFlat(t *testing.T) {
	th, err := ThresholdsFromFlat(map[string]float64{"knee_min": 70, "knee_max": 120})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(refThresholds, th); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestThresholdsFromFlat_Errors(t *testing.T) {
	tests := []struct {
		name        string
		flat        map[string]float64
		wantMissing bool
	}{
		{"missing-min", map[string]float64{"knee_max": 120}, true},
		{"missing-max", map[string]float64{"knee_min": 70}, true},
		{"empty", nil, true},
		{"inverted", map[string]float64{"knee_min": 130, "knee_max": 120}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ThresholdsFromFlat(tt.flat)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrMissingThreshold) != tt.wantMissing {
				t.Errorf("errors.Is(ErrMissingThreshold) = %v, want %v (%v)", !tt.wantMissing, tt.wantMissing, err)
			}
		})
	}
}

func TestThresholds_Flat(t *testing.T) {
	flat := KneeThresholds(65, 125).Flat()
	want := map[string]float64{"knee_min": 65, "knee_max": 125}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	back, err := ThresholdsFromFlat(flat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(KneeThresholds(65, 125), back); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := (Thresholds{}).Flat(); len(got) != 0 {
		t.Errorf("empty thresholds flattened to %v", got)
	}
}

// #endregion thresholds-tests

// #region aggregate-tests
func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); got != MsgNoRisk {
		t.Errorf("got %q", got)
	}
}

func TestAggregate_KeepsOrder(t *testing.T) {
	findings := []RiskFinding{
		{Joint: RightKnee, Kind: Overbend, Message: "second"},
		{Joint: LeftKnee, Kind: Underbend, Message: "first"},
	}
	want := "Risk Analysis:\nsecond\nfirst"
	if got := Aggregate(findings); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// #endregion aggregate-tests

// #region evaluate-tests
func TestEvaluate_NoPose(t *testing.T) {
	for _, th := range []Thresholds{nil, {}, refThresholds} {
		lines, err := Evaluate(nil, th)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{MsgNoPose}, lines); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	}
}

func TestEvaluate_Lines(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64
		want        []string
	}{
		{
			"both-good", 95, 95,
			[]string{MsgGoodForm, MsgGoodForm, MsgNoRisk},
		},
		{
			"left-low", 65, 95,
			[]string{MsgTooLow, MsgGoodForm, "Risk Analysis:\nLeft knee over-bending detected."},
		},
		{
			"both-out", 130, 65,
			[]string{MsgTooShallow, MsgTooLow,
				"Risk Analysis:\nLeft knee insufficient bending detected.\nRight knee over-bending detected."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Evaluate(testutil.KneeSet(t, tt.left, tt.right), refThresholds)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if len(lines) != 3 {
				t.Fatalf("expected 3 lines, got %d", len(lines))
			}
			if diff := cmp.Diff(tt.want, lines); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_MissingThresholdPropagates(t *testing.T) {
	_, err := Evaluate(testutil.KneeSet(t, 95, 95), Thresholds{})
	if !errors.Is(err, ErrMissingThreshold) {
		t.Fatalf("expected ErrMissingThreshold, got %v", err)
	}
}

func TestEvaluator_Run(t *testing.T) {
	ev, err := NewEvaluator(refThresholds).Run(testutil.KneeSet(t, 65, 95))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ev.PoseDetected {
		t.Error("expected PoseDetected")
	}
	if deg, ok := ev.Angle(LeftKnee); !ok || math.Abs(deg-65) > 1e-9 {
		t.Errorf("left angle = %f, %v", deg, ok)
	}
	if len(ev.Findings) != 1 || ev.Findings[0].Kind != Underbend {
		t.Errorf("findings = %+v", ev.Findings)
	}
}

func TestEvaluator_RunNoPose(t *testing.T) {
	ev, err := NewEvaluator(refThresholds).Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ev.PoseDetected || len(ev.Angles) != 0 {
		t.Errorf("unexpected evaluation: %+v", ev)
	}
	if _, ok := ev.Angle(LeftKnee); ok {
		t.Error("no-pose frame should have no angle")
	}
}

// #endregion evaluate-tests

// #region layout-tests
func TestLineOffsets(t *testing.T) {
	if diff := cmp.Diff([]int{30, 50, 70}, LineOffsets(3)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, n := range []int{0, -1, -5} {
		if got := LineOffsets(n); len(got) != 0 {
			t.Errorf("LineOffsets(%d) = %v, want empty", n, got)
		}
	}
}

func TestSplitForOverlay(t *testing.T) {
	got := SplitForOverlay([]string{MsgGoodForm, "Risk Analysis:\na\nb"})
	want := []string{MsgGoodForm, "Risk Analysis:", "a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// #endregion layout-tests
