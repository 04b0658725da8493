package rpc

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/replay"
	"github.com/danielpatrickdp/squat-coach/internal/session"
	"github.com/danielpatrickdp/squat-coach/internal/testutil"
)

// #region harness
func startServer(t *testing.T, th feedback.Thresholds) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	Register(s, NewServer(feedback.NewEvaluator(th), nil, zerolog.Nop()))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// #endregion harness

// #region evaluate-tests
func TestEvaluateGoodForm(t *testing.T) {
	client := startServer(t, feedback.KneeThresholds(70, 120))

	ev, err := client.Evaluate(context.Background(), testutil.KneeSet(t, 90, 90))
	require.NoError(t, err)
	assert.True(t, ev.PoseDetected)
	assert.Equal(t, []string{feedback.MsgGoodForm, feedback.MsgGoodForm, feedback.MsgNoRisk}, ev.Lines)
	assert.Empty(t, ev.Findings)
}

func TestEvaluateFindings(t *testing.T) {
	client := startServer(t, feedback.KneeThresholds(70, 120))

	ev, err := client.Evaluate(context.Background(), testutil.KneeSet(t, 45, 90))
	require.NoError(t, err)
	require.Len(t, ev.Findings, 1)
	assert.Equal(t, feedback.LeftKnee, ev.Findings[0].Joint)
	assert.Equal(t, feedback.Underbend, ev.Findings[0].Kind)
	assert.Equal(t, "Risk Analysis:\nLeft knee over-bending detected.", ev.Lines[2])
}

func TestEvaluateNoPose(t *testing.T) {
	client := startServer(t, feedback.KneeThresholds(70, 120))

	lines, err := client.Lines(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{feedback.MsgNoPose}, lines)
}

func TestEvaluateNoPoseSkipsThresholds(t *testing.T) {
	client := startServer(t, feedback.Thresholds{})

	lines, err := client.Lines(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{feedback.MsgNoPose}, lines)
}

func TestEvaluateMissingThreshold(t *testing.T) {
	client := startServer(t, feedback.Thresholds{})

	_, err := client.Evaluate(context.Background(), testutil.KneeSet(t, 90, 90))
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
}

func TestEvaluateIncompleteLandmarks(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	Register(s, NewServer(feedback.NewEvaluator(feedback.KneeThresholds(70, 120)), nil, zerolog.Nop()))
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecureCreds()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	defer conn.Close()

	req, err := structpb.NewStruct(map[string]interface{}{
		"landmarks": map[string]interface{}{
			"left_hip": map[string]interface{}{"x": 0.5, "y": 0.4},
		},
	})
	require.NoError(t, err)

	err = conn.Invoke(context.Background(), EvaluateFullMethod, req, new(structpb.Struct))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

// #endregion evaluate-tests

// #region session-tests
func TestThresholds(t *testing.T) {
	client := startServer(t, feedback.KneeThresholds(80, 110))

	th, err := client.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, feedback.KneeThresholds(80, 110), th)
}

func TestThresholdsUnconfigured(t *testing.T) {
	client := startServer(t, feedback.Thresholds{})

	_, err := client.Thresholds(context.Background())
	assert.True(t, errors.Is(err, feedback.ErrMissingThreshold), "got %v", err)
}

// A session evaluated remotely records the server's thresholds, so replaying it
// locally reproduces the lines the server returned.
func TestRemoteSessionReplaysWithServerThresholds(t *testing.T) {
	ctx := context.Background()
	client := startServer(t, feedback.KneeThresholds(80, 110))

	store, err := session.NewStore(filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)
	defer store.Close()

	th, err := client.Thresholds(ctx)
	require.NoError(t, err)
	sess, err := store.StartSession("grpc:test", th)
	require.NoError(t, err)

	set := testutil.KneeSet(t, 75, 90)
	ev, err := client.Evaluate(ctx, set)
	require.NoError(t, err)
	require.Equal(t, "Risk Analysis:\nLeft knee over-bending detected.", ev.Lines[2])
	require.NoError(t, store.RecordFrame(sess.SessionID, 0, set, ev))

	f, err := replay.ExportSession(store, sess.SessionID, 0)
	require.NoError(t, err)
	fixtureTh, err := f.KneeThresholds()
	require.NoError(t, err)
	frames, err := f.ToFrames()
	require.NoError(t, err)

	results, err := replay.Replay(frames, feedback.NewEvaluator(fixtureTh))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, f.Expected[0].Lines, results[0].Evaluation.Lines)
}

// #endregion session-tests

// #region codec-tests
func TestRequestRoundTrip(t *testing.T) {
	set := testutil.KneeSet(t, 100, 130)
	req, err := encodeRequest(set)
	require.NoError(t, err)

	got, err := decodeLandmarks(req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, set.Landmarks(), got.Landmarks())
}

func TestDecodeLandmarksAbsent(t *testing.T) {
	got, err := decodeLandmarks(&structpb.Struct{})
	require.NoError(t, err)
	assert.Nil(t, got)

	req, err := encodeRequest(nil)
	require.NoError(t, err)
	got, err = decodeLandmarks(req)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// #endregion codec-tests

func insecureCreds() credentials.TransportCredentials {
	return insecure.NewCredentials()
}
