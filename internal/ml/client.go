package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/ev"
)

// PredictMethod is the full gRPC method name of the probability endpoint.
// Requests and responses are google.protobuf.Struct messages.
const PredictMethod = "/clevermulti.ml.v1.ProbabilityService/Predict"

// SourceName is reported as the probability source of ML estimates
const SourceName = "ml"

const defaultRequestTimeout = 2 * time.Second

// Client calls the ML service over gRPC and implements ev.ProbabilitySource
type Client struct {
	conn    *grpc.ClientConn
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewClient dials the ML service. Extra dial options are appended to the defaults.
func NewClient(cfg *config.MLServiceConfig, logger *logrus.Logger, opts ...grpc.DialOption) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connectParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  1 * time.Second,
			Multiplier: 1.6,
			Jitter:     0.2,
			MaxDelay:   5 * time.Second,
		},
		MinConnectTimeout: 10 * time.Second,
	}

	keepAlive := keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             10 * time.Second,
		PermitWithoutStream: true,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
		grpc.WithConnectParams(connectParams),
		grpc.WithKeepaliveParams(keepAlive),
	}, opts...)

	conn, err := grpc.DialContext(ctx, cfg.GRPCAddress, dialOpts...)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to ML service")
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	model := cfg.ModelName
	if model == "" {
		model = "default"
	}

	logger.WithFields(logrus.Fields{
		"address": cfg.GRPCAddress,
		"model":   model,
	}).Info("Connected to ML service")

	return &Client{conn: conn, model: model, timeout: timeout, logger: logger}, nil
}

// Name returns the source name
func (c *Client) Name() string { return SourceName }

// Model returns the model the client requests predictions from
func (c *Client) Model() string { return c.model }

// Probability requests a win probability for the feature vector
func (c *Client) Probability(ctx context.Context, features ev.FeatureVector) (float64, error) {
	start := time.Now()
	defer func() {
		MLPredictionLatency.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
	}()

	req, err := newPredictRequest(c.model, features)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, PredictMethod, req, resp); err != nil {
		return 0, c.classify(err)
	}

	p, err := parsePredictResponse(resp)
	if err != nil {
		MLGRPCErrorsTotal.WithLabelValues("Predict", "invalid_response").Inc()
		return 0, err
	}

	MLPredictionsTotal.WithLabelValues(c.model, "false").Inc()
	return p, nil
}

// Close closes the gRPC connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) classify(err error) error {
	switch status.Code(err) {
	case codes.DeadlineExceeded:
		MLGRPCErrorsTotal.WithLabelValues("Predict", "timeout").Inc()
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case codes.Unavailable:
		MLGRPCErrorsTotal.WithLabelValues("Predict", "unavailable").Inc()
		return fmt.Errorf("%w: %v", ErrMLServiceUnavailable, err)
	default:
		MLGRPCErrorsTotal.WithLabelValues("Predict", "rpc_failed").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}
}

func newPredictRequest(model string, features ev.FeatureVector) (*structpb.Struct, error) {
	values := make([]interface{}, len(features))
	for i, f := range features {
		values[i] = f
	}
	return structpb.NewStruct(map[string]interface{}{
		"model":    model,
		"features": values,
	})
}

func parsePredictResponse(resp *structpb.Struct) (float64, error) {
	v, ok := resp.GetFields()["probability"]
	if !ok {
		return 0, fmt.Errorf("%w: missing probability", ErrInvalidPrediction)
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: probability is not a number", ErrInvalidPrediction)
	}
	p := num.NumberValue
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %v", ev.ErrProbabilityOutOfRange, p)
	}
	return p, nil
}

// IsUnavailable reports whether err means the service could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrMLServiceUnavailable) || errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrTimeout)
}
