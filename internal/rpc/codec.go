package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// #region request
// decodeLandmarks extracts the landmark set from a request. A missing or null
// "landmarks" field means no pose was detected.
func decodeLandmarks(req *structpb.Struct) (*pose.Set, error) {
	v, ok := req.GetFields()["landmarks"]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	data, err := protojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode landmarks: %w", err)
	}
	var set pose.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// encodeRequest builds the request Struct for set (nil = no pose).
func encodeRequest(set *pose.Set) (*structpb.Struct, error) {
	if set == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			"landmarks": structpb.NewNullValue(),
		}}, nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode landmarks: %w", err)
	}
	lm := new(structpb.Struct)
	if err := protojson.Unmarshal(data, lm); err != nil {
		return nil, fmt.Errorf("encode landmarks: %w", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"landmarks": structpb.NewStructValue(lm),
	}}, nil
}

// #endregion request

// #region response
// encodeEvaluation also reports the thresholds the frame was judged against, so
// callers recording remote sessions can store what the server actually used.
func encodeEvaluation(ev feedback.Evaluation, th feedback.Thresholds) (*structpb.Struct, error) {
	lines := make([]interface{}, len(ev.Lines))
	for i, l := range ev.Lines {
		lines[i] = l
	}
	findings := make([]interface{}, len(ev.Findings))
	for i, f := range ev.Findings {
		findings[i] = map[string]interface{}{
			"joint":   string(f.Joint),
			"kind":    string(f.Kind),
			"message": f.Message,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"pose_detected": ev.PoseDetected,
		"lines":         lines,
		"findings":      findings,
		"thresholds":    flatThresholds(th),
	})
}

func flatThresholds(th feedback.Thresholds) map[string]interface{} {
	out := make(map[string]interface{}, 2)
	for k, v := range th.Flat() {
		out[k] = v
	}
	return out
}

// decodeThresholds reads the "thresholds" field of a response.
func decodeThresholds(resp *structpb.Struct) (feedback.Thresholds, error) {
	v, ok := resp.GetFields()["thresholds"]
	if !ok || v.GetStructValue() == nil {
		return nil, fmt.Errorf("%w: response carries no thresholds", feedback.ErrMissingThreshold)
	}
	flat := make(map[string]float64, 2)
	for k, f := range v.GetStructValue().GetFields() {
		n, isNum := f.GetKind().(*structpb.Value_NumberValue)
		if !isNum {
			return nil, fmt.Errorf("threshold %s: not a number", k)
		}
		flat[k] = n.NumberValue
	}
	return feedback.ThresholdsFromFlat(flat)
}

// decodeEvaluation reads a response Struct. Angles are not carried on the wire.
func decodeEvaluation(resp *structpb.Struct) (feedback.Evaluation, error) {
	data, err := protojson.Marshal(resp)
	if err != nil {
		return feedback.Evaluation{}, fmt.Errorf("decode response: %w", err)
	}
	var ev feedback.Evaluation
	if err := json.Unmarshal(data, &ev); err != nil {
		return feedback.Evaluation{}, fmt.Errorf("decode response: %w", err)
	}
	return ev, nil
}

// #endregion response
