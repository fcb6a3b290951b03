package ml

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/ev"
)

type predictFunc func(req *structpb.Struct) (*structpb.Struct, error)

type fakeService struct {
	predict predictFunc
	calls   atomic.Int32
}

func startFakeService(t *testing.T, fn predictFunc) (*fakeService, *bufconn.Listener) {
	t.Helper()
	svc := &fakeService{predict: fn}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "clevermulti.ml.v1.ProbabilityService",
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Predict",
			Handler: func(_ interface{}, _ context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				req := &structpb.Struct{}
				if err := dec(req); err != nil {
					return nil, err
				}
				svc.calls.Add(1)
				return svc.predict(req)
			},
		}},
	}, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return svc, lis
}

func dialFake(t *testing.T, lis *bufconn.Listener) *Client {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.MLServiceConfig{Enabled: true, GRPCAddress: "bufnet", ModelName: "nba-v2"}
	client, err := NewClient(cfg, log, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func respond(p interface{}) predictFunc {
	return func(*structpb.Struct) (*structpb.Struct, error) {
		return structpb.NewStruct(map[string]interface{}{"probability": p})
	}
}

func TestClientProbability(t *testing.T) {
	var got *structpb.Struct
	_, lis := startFakeService(t, func(req *structpb.Struct) (*structpb.Struct, error) {
		got = req
		return structpb.NewStruct(map[string]interface{}{"probability": 0.83})
	})
	client := dialFake(t, lis)

	features := ev.FeatureVector{0.75, 0.75, 1, 1, -0.2, 0.8696}
	p, err := client.Probability(context.Background(), features)

	require.NoError(t, err)
	assert.Equal(t, 0.83, p)
	assert.Equal(t, SourceName, client.Name())
	require.NotNil(t, got)
	assert.Equal(t, "nba-v2", got.Fields["model"].GetStringValue())
	assert.Len(t, got.Fields["features"].GetListValue().GetValues(), len(features))
}

func TestClientProbabilityErrors(t *testing.T) {
	tests := []struct {
		name    string
		predict predictFunc
		wantErr error
	}{
		{"out of range", respond(1.4), ev.ErrProbabilityOutOfRange},
		{"not a number", respond("high"), ErrInvalidPrediction},
		{
			name: "missing field",
			predict: func(*structpb.Struct) (*structpb.Struct, error) {
				return structpb.NewStruct(map[string]interface{}{"p": 0.5})
			},
			wantErr: ErrInvalidPrediction,
		},
		{
			name: "unavailable",
			predict: func(*structpb.Struct) (*structpb.Struct, error) {
				return nil, status.Error(codes.Unavailable, "model loading")
			},
			wantErr: ErrMLServiceUnavailable,
		},
		{
			name: "internal",
			predict: func(*structpb.Struct) (*structpb.Struct, error) {
				return nil, status.Error(codes.Internal, "boom")
			},
			wantErr: ErrInvalidPrediction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lis := startFakeService(t, tt.predict)
			client := dialFake(t, lis)

			_, err := client.Probability(context.Background(), ev.FeatureVector{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(ErrTimeout))
	assert.True(t, IsUnavailable(ErrConnectionFailed))
	assert.False(t, IsUnavailable(ErrInvalidPrediction))
}

func TestCachedClientAgainstService(t *testing.T) {
	svc, lis := startFakeService(t, respond(0.9))
	client := dialFake(t, lis)

	log := logrus.New()
	log.SetOutput(io.Discard)
	cached := WrapCached(client, client.Model(), &config.MLServiceConfig{CacheTTLSeconds: 60, CacheMaxSize: 10}, log)

	features := ev.FeatureVector{0.6, 0.6, 1, 0, -0.1, 0.7}
	for i := 0; i < 3; i++ {
		p, err := cached.Probability(context.Background(), features)
		require.NoError(t, err)
		assert.Equal(t, 0.9, p)
	}

	assert.Equal(t, int32(1), svc.calls.Load())
	hits, misses, _ := cached.GetCacheStats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
}
