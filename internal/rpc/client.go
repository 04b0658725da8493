package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// #region client-struct
// Client calls a remote feedback service.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to the feedback service at addr without transport security.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion close

// #region evaluate
// Evaluate sends one frame (nil = no pose) and returns the remote evaluation.
// Angles are not part of the response and stay empty.
func (c *Client) Evaluate(ctx context.Context, set *pose.Set) (feedback.Evaluation, error) {
	req, err := encodeRequest(set)
	if err != nil {
		return feedback.Evaluation{}, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, EvaluateFullMethod, req, resp); err != nil {
		return feedback.Evaluation{}, fmt.Errorf("grpc Evaluate: %w", err)
	}
	return decodeEvaluation(resp)
}

// Lines is Evaluate reduced to the display lines.
func (c *Client) Lines(ctx context.Context, set *pose.Set) ([]string, error) {
	ev, err := c.Evaluate(ctx, set)
	if err != nil {
		return nil, err
	}
	return ev.Lines, nil
}

// Thresholds asks the service which thresholds it evaluates against. It sends a
// no-pose frame, which the service answers without judging any angles.
func (c *Client) Thresholds(ctx context.Context) (feedback.Thresholds, error) {
	req, err := encodeRequest(nil)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, EvaluateFullMethod, req, resp); err != nil {
		return nil, fmt.Errorf("grpc Evaluate: %w", err)
	}
	return decodeThresholds(resp)
}

// #endregion evaluate
