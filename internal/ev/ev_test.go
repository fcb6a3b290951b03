package ev

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clever-multi/internal/models"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Probability(ctx context.Context, f FeatureVector) (float64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(float64), args.Error(1)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testQuote(odds float64) models.MarketQuote {
	return models.MarketQuote{
		EventID:       "evt_1",
		Sport:         models.SportNBA,
		HomeTeam:      "Boston Celtics",
		AwayTeam:      "Detroit Pistons",
		CommenceTime:  time.Date(2026, 10, 20, 23, 0, 0, 0, time.UTC),
		MarketType:    models.MarketTypeMoneyline,
		SelectionName: "Boston Celtics",
		DecimalOdds:   odds,
		Bookmaker:     "sportsbet",
	}
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		odds float64
		want float64
	}{
		{1.15, 0.8696},
		{2.0, 0.5},
		{2.10, 0.4762},
		{0, 0},
		{-1.5, 0},
	}
	for _, tt := range tests {
		got := ImpliedProbability(tt.odds)
		assert.Equal(t, tt.want, got, "odds %v", tt.odds)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestExpectedValue(t *testing.T) {
	assert.Equal(t, -0.08, ExpectedValue(0.80, 1.15))
	assert.Equal(t, 0.155, ExpectedValue(0.55, 2.10))
	assert.Equal(t, 0.0, ExpectedValue(0.5, 2.0))
}

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		ev   float64
		want models.Confidence
	}{
		{"high boundary", 0.85, 0.05, models.ConfidenceHigh},
		{"high prob but medium ev", 0.90, 0.03, models.ConfidenceMedium},
		{"low", 0.70, 0.015, models.ConfidenceLow},
		{"prob too low", 0.60, 0.20, models.ConfidenceNone},
		{"negative ev", 0.95, -0.01, models.ConfidenceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyConfidence(tt.p, tt.ev))
		})
	}
}

func TestValueRating(t *testing.T) {
	tests := []struct {
		ev   float64
		want int
	}{
		{0.155, 5},
		{0.10, 5},
		{0.07, 4},
		{0.04, 3},
		{0.02, 2},
		{0.019, 1},
		{-0.3, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValueRating(tt.ev), "ev %v", tt.ev)
	}
}

func TestHeuristicProbability(t *testing.T) {
	tests := []struct {
		name    string
		implied float64
		sc      *SelectionContext
		want    float64
	}{
		{"top tier strong form at home", 0.8696, &SelectionContext{WinRate: 0.75, RecentForm: 0.75, IsHome: true}, 0.9596},
		{"top tier strong form away", 0.8696, &SelectionContext{WinRate: 0.75, RecentForm: 0.75}, 0.9396},
		{"top tier middling form", 0.86, &SelectionContext{WinRate: 0.56, RecentForm: 0.56}, 0.89},
		{"second tier weak form", 0.80, &SelectionContext{WinRate: 0.55, RecentForm: 0.55}, 0.82},
		{"third tier flat", 0.65, &SelectionContext{WinRate: 0.5, RecentForm: 0.5}, 0.68},
		{"underdog hot form", 0.40, &SelectionContext{WinRate: 0.4, RecentForm: 0.7}, 0.44},
		{"clamped high", 0.97, &SelectionContext{WinRate: 0.7, RecentForm: 0.7, IsHome: true}, 0.98},
		{"zero implied", 0, &SelectionContext{}, 0.02},
		{"defaults favorite", 0.90, nil, 0.93},
		{"defaults underdog", 0.30, nil, 0.32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HeuristicProbability(tt.implied, tt.sc), 1e-9)
		})
	}
}

func TestHeuristicSourceMatchesContext(t *testing.T) {
	sc := &SelectionContext{WinRate: 0.68, RecentForm: 0.68, IsFavorite: true, IsHome: true, RankingDiff: -20}
	p, err := HeuristicSource{}.Probability(context.Background(), sc.Features(0.8))
	require.NoError(t, err)
	assert.Equal(t, HeuristicProbability(0.8, sc), p)
}

func TestContextFromQuote(t *testing.T) {
	tests := []struct {
		odds     float64
		form     float64
		fav      bool
		rankDiff float64
	}{
		{1.10, 0.75, true, -20},
		{1.20, 0.68, true, -20},
		{1.45, 0.60, true, -20},
		{1.70, 0.55, true, -10},
		{2.50, 0.42, false, 10},
	}
	for _, tt := range tests {
		q := testQuote(tt.odds)
		sc := ContextFromQuote(&q)
		assert.Equal(t, tt.form, sc.WinRate, "odds %v", tt.odds)
		assert.Equal(t, tt.form, sc.RecentForm)
		assert.Equal(t, tt.fav, sc.IsFavorite)
		assert.Equal(t, tt.rankDiff, sc.RankingDiff)
		assert.True(t, sc.IsHome)
	}

	away := testQuote(1.3)
	away.SelectionName = "Detroit Pistons"
	assert.False(t, ContextFromQuote(&away).IsHome)
}

func TestFeatures(t *testing.T) {
	sc := &SelectionContext{WinRate: 0.6, RecentForm: 0.5, IsFavorite: true, RankingDiff: -20}
	f := sc.Features(0.75)
	assert.Equal(t, FeatureVector{0.6, 0.5, 1, 0, -0.2, 0.75}, f)
}

func TestEngineAnalyzeHeuristic(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), quietLogger())

	got := engine.AnalyzeQuote(context.Background(), testQuote(1.15))

	assert.Equal(t, 0.8696, got.ImpliedProbability)
	assert.Equal(t, 0.9596, got.ModelProbability)
	assert.Equal(t, 0.1035, got.ExpectedValue)
	assert.Equal(t, 0.09, got.Edge)
	assert.Equal(t, models.ConfidenceHigh, got.Confidence)
	assert.Equal(t, 5, got.ValueRating)
	assert.True(t, got.IsValueBet)
	assert.True(t, got.IsHighConfidence)
	assert.True(t, got.QualifiesAsRecommended)
	assert.Equal(t, HeuristicSourceName, got.ProbabilitySource)
	assert.Equal(t, "evt_1", got.EventID)
}

func TestEngineAnalyzeNotValue(t *testing.T) {
	src := new(mockSource)
	src.On("Probability", mock.Anything, mock.Anything).Return(0.80, nil)
	engine := NewEngine(DefaultThresholds(), quietLogger(), src)

	got := engine.AnalyzeQuote(context.Background(), testQuote(1.15))

	assert.Equal(t, 0.80, got.ModelProbability)
	assert.Equal(t, -0.08, got.ExpectedValue)
	assert.False(t, got.IsValueBet)
	assert.True(t, got.IsHighConfidence)
	assert.False(t, got.QualifiesAsRecommended)
	assert.Equal(t, "mock", got.ProbabilitySource)
	src.AssertExpectations(t)
}

func TestEngineFallsBackOnSourceFailure(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		err  error
	}{
		{"source error", 0, errors.New("unavailable")},
		{"out of range", 1.5, nil},
		{"negative", -0.1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(mockSource)
			src.On("Probability", mock.Anything, mock.Anything).Return(tt.p, tt.err)
			engine := NewEngine(DefaultThresholds(), quietLogger(), src)

			q := testQuote(1.15)
			got := engine.AnalyzeQuote(context.Background(), q)

			assert.Equal(t, HeuristicSourceName, got.ProbabilitySource)
			assert.Equal(t, 0.9596, got.ModelProbability)
		})
	}
}

func TestEngineSkipsTrainedSourceWithoutContext(t *testing.T) {
	src := new(mockSource)
	engine := NewEngine(DefaultThresholds(), quietLogger(), src)

	got := engine.Analyze(context.Background(), testQuote(2.10), nil)

	src.AssertNotCalled(t, "Probability", mock.Anything, mock.Anything)
	assert.Equal(t, HeuristicSourceName, got.ProbabilitySource)
	assert.Equal(t, 0.4962, got.ModelProbability)
}

func TestEngineValueBetExample(t *testing.T) {
	src := new(mockSource)
	src.On("Probability", mock.Anything, mock.Anything).Return(0.55, nil)
	engine := NewEngine(DefaultThresholds(), quietLogger(), src)

	got := engine.AnalyzeQuote(context.Background(), testQuote(2.10))

	assert.Equal(t, 0.155, got.ExpectedValue)
	assert.True(t, got.IsValueBet)
	assert.Equal(t, 5, got.ValueRating)
	assert.False(t, got.IsHighConfidence)
}
