package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/multi"
	"github.com/yourusername/clever-multi/internal/selection"
	"github.com/yourusername/clever-multi/internal/signals"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func quote(eventID, home, away, selection string, odds float64, commence time.Time) models.MarketQuote {
	return models.MarketQuote{
		EventID:       eventID,
		Sport:         models.SportNBA,
		HomeTeam:      home,
		AwayTeam:      away,
		CommenceTime:  commence,
		MarketType:    models.MarketTypeMoneyline,
		SelectionName: selection,
		DecimalOdds:   odds,
		Bookmaker:     "sportsbet",
	}
}

func newTestPipeline() *Pipeline {
	cfg := PipelineConfig{
		Selection:       selection.DefaultConfig(),
		Multi:           multi.DefaultConfig(),
		RecommendedLegs: 20,
		Concurrency:     2,
	}
	log := quietLogger()
	engine := ev.NewEngine(ev.DefaultThresholds(), log)
	return NewPipeline(cfg, engine, signals.NewDeriver(nil, log), log)
}

func TestQuoteValidator(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	line := 24.5

	tests := []struct {
		name    string
		mutate  func(q *models.MarketQuote)
		wantErr string
	}{
		{"valid", func(q *models.MarketQuote) {}, ""},
		{"odds not above one", func(q *models.MarketQuote) { q.DecimalOdds = 1.0 }, "DecimalOdds must be greater than 1"},
		{"missing selection", func(q *models.MarketQuote) { q.SelectionName = "" }, "SelectionName is required"},
		{"missing event id", func(q *models.MarketQuote) { q.EventID = "" }, "EventID is required"},
		{"unknown sport", func(q *models.MarketQuote) { q.Sport = "curling" }, "is not supported"},
		{"bad side", func(q *models.MarketQuote) { q.Side = "sideways" }, "Side must be one of"},
		{"prop side without line", func(q *models.MarketQuote) {
			q.IsProp = true
			q.Side = models.SideOver
		}, "requires a line"},
		{"prop with line", func(q *models.MarketQuote) {
			q.IsProp = true
			q.Side = models.SideOver
			q.Line = &line
		}, ""},
	}

	v := NewQuoteValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, future)
			tt.mutate(&q)
			err := v.Validate(&q)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidQuote)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeQuote(t *testing.T) {
	raw := models.MarketQuote{
		EventID:       " evt_1 ",
		Sport:         " NBA",
		HomeTeam:      "  Boston   Celtics ",
		AwayTeam:      "Detroit Pistons",
		SelectionName: "Boston  Celtics",
		MarketType:    "h2h",
		Side:          " Over",
		CommenceTime:  time.Date(2026, 10, 20, 19, 0, 0, 0, time.FixedZone("EST", -5*3600)),
	}

	q := NormalizeQuote(raw)
	assert.Equal(t, "evt_1", q.EventID)
	assert.Equal(t, models.SportNBA, q.Sport)
	assert.Equal(t, "Boston Celtics", q.HomeTeam)
	assert.Equal(t, "Boston Celtics", q.SelectionName)
	assert.Equal(t, models.MarketTypeMoneyline, q.MarketType)
	assert.Equal(t, "over", q.Side)
	assert.Equal(t, time.UTC, q.CommenceTime.Location())
	assert.True(t, q.IsHomeSelection())
}

func TestPipelineRun(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	quotes := []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, future),
		quote("evt_2", "Washington Wizards", "Denver Nuggets", "Denver Nuggets", 1.20, future),
		quote("evt_3", "Miami Heat", "Orlando Magic", "Orlando Magic", 3.00, future),
		quote("evt_4", "Utah Jazz", "Phoenix Suns", "Phoenix Suns", 0.90, future),
		{EventID: "evt_5", Sport: "curling", HomeTeam: "A", AwayTeam: "B", SelectionName: "A", DecimalOdds: 1.5},
	}

	p := newTestPipeline()
	result, err := p.Run(context.Background(), quotes, "test")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Run.QuotesReceived)
	assert.Equal(t, 2, result.Run.QuotesSkipped)
	require.Len(t, result.Analyzed, 3)
	assert.Equal(t, "evt_1", result.Analyzed[0].EventID)
	assert.Equal(t, "evt_2", result.Analyzed[1].EventID)
	assert.Equal(t, "evt_3", result.Analyzed[2].EventID)

	assert.Equal(t, 2, result.Run.Stage1Count)
	require.Len(t, result.Run.Recommendations, 2)
	assert.Equal(t, "evt_1", result.Run.Recommendations[0].EventID)
	for _, leg := range result.Run.Recommendations {
		assert.GreaterOrEqual(t, leg.DecimalOdds, 1.05)
		assert.LessOrEqual(t, leg.DecimalOdds, 1.25)
		assert.NotEmpty(t, leg.Rationale)
	}

	assert.LessOrEqual(t, result.Run.Parlay.NumLegs, 2)
	assert.NotEqual(t, uuid.Nil, result.Run.ID)
	assert.False(t, result.Run.CompletedAt.Before(result.Run.StartedAt))
}

func TestPipelineRunSkipsQuotesWithoutEventID(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	over := func(event, home, away string) models.MarketQuote {
		q := quote(event, home, away, "Over", 1.10, future)
		line := 220.5
		q.MarketType = models.MarketTypeTotals
		q.Side = models.SideOver
		q.Line = &line
		return q
	}
	quotes := []models.MarketQuote{
		over("", "Boston Celtics", "Detroit Pistons"),
		over("", "Washington Wizards", "Denver Nuggets"),
		over("evt_3", "Utah Jazz", "Phoenix Suns"),
	}

	result, err := newTestPipeline().Run(context.Background(), quotes, "test")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Run.QuotesSkipped)
	require.Len(t, result.Analyzed, 1)
	assert.Equal(t, "evt_3", result.Analyzed[0].EventID)
	for _, leg := range result.Run.Recommendations {
		assert.NotEmpty(t, leg.EventID)
	}
}

func TestPipelineLogsEachParlayOnce(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := PipelineConfig{Selection: selection.DefaultConfig(), Multi: multi.DefaultConfig(), RecommendedLegs: 20}
	p := NewPipeline(cfg, ev.NewEngine(ev.DefaultThresholds(), log), signals.NewDeriver(nil, log), log)

	future := time.Now().Add(48 * time.Hour)
	quotes := []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, future),
		quote("evt_2", "Washington Wizards", "Denver Nuggets", "Denver Nuggets", 1.20, future),
	}
	result, err := p.Run(context.Background(), quotes, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), `"msg":"Parlay built"`))

	buf.Reset()
	p.BuildMulti(result.Run.Recommendations, 1.5, 2)
	assert.Equal(t, 1, strings.Count(buf.String(), `"msg":"Parlay built"`))
}

func TestPipelineRunEmpty(t *testing.T) {
	result, err := newTestPipeline().Run(context.Background(), nil, "test")
	require.NoError(t, err)
	assert.Empty(t, result.Run.Recommendations)
	assert.Equal(t, 0, result.Run.Parlay.NumLegs)
	assert.Empty(t, result.ValueBets)
}

func TestPipelineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	quotes := []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, time.Now().Add(time.Hour)),
	}
	_, err := newTestPipeline().Run(ctx, quotes, "test")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineRunIsRepeatable(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	quotes := []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, future),
		quote("evt_2", "Washington Wizards", "Denver Nuggets", "Denver Nuggets", 1.20, future),
	}

	p := newTestPipeline()
	first, err := p.Run(context.Background(), quotes, "test")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), quotes, "test")
	require.NoError(t, err)

	require.Equal(t, len(first.Run.Recommendations), len(second.Run.Recommendations))
	for i := range first.Run.Recommendations {
		assert.Equal(t, first.Run.Recommendations[i].CompositeScore, second.Run.Recommendations[i].CompositeScore)
	}
	assert.Equal(t, first.Run.Parlay.CombinedOdds, second.Run.Parlay.CombinedOdds)
}

func TestSummarize(t *testing.T) {
	leg := func(sport models.Sport, odds, prob, ev, score float64, rivalry bool) models.RecommendedLeg {
		return models.RecommendedLeg{
			AnalyzedSelection: models.AnalyzedSelection{
				MarketQuote:      models.MarketQuote{Sport: sport, DecimalOdds: odds},
				ModelProbability: prob,
				ExpectedValue:    ev,
			},
			CompositeScore: score,
			RivalryFlag:    rivalry,
		}
	}

	result := &RunResult{
		Analyzed: make([]models.AnalyzedSelection, 12),
		Run: models.PipelineRun{Recommendations: []models.RecommendedLeg{
			leg(models.SportNBA, 1.10, 0.90, 0.05, 80, false),
			leg(models.SportNBA, 1.20, 0.86, 0.03, 70, true),
			leg(models.SportNFL, 1.15, 0.88, 0.01, 75, false),
			leg(models.SportNFL, 1.05, 0.96, 0.01, 65, false),
			leg(models.SportNFL, 1.25, 0.82, 0.02, 60, true),
		}},
	}

	s := Summarize(result)
	assert.Equal(t, 12, s.TotalMarketsAnalyzed)
	assert.Equal(t, 5, s.RecommendedLegsCount)
	assert.Equal(t, map[models.Sport]int{models.SportNBA: 2, models.SportNFL: 3}, s.SportsBreakdown)
	assert.InDelta(t, 1.15, s.AverageOdds, 1e-9)
	assert.InDelta(t, 0.884, s.AverageModelProbability, 1e-9)
	assert.InDelta(t, 0.024, s.AverageEV, 1e-9)
	assert.InDelta(t, 70.0, s.AverageCompositeScore, 1e-9)
	assert.InDelta(t, 1.59, s.Sample4LegMultiOdds, 1e-9)
	assert.Equal(t, 2, s.RivalryMatchupsIncluded)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&RunResult{})
	assert.Equal(t, 0, s.RecommendedLegsCount)
	assert.Equal(t, 0.0, s.AverageOdds)
	assert.Equal(t, 1.0, s.Sample4LegMultiOdds)
	assert.NotNil(t, s.RecommendedLegs)
}

type fakeFetcher struct {
	mu      sync.Mutex
	quotes  []models.MarketQuote
	err     error
	cleared int
	props   []bool
}

func (f *fakeFetcher) FetchWeek(_ context.Context, _ []models.Sport, includeProps bool) ([]models.MarketQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props = append(f.props, includeProps)
	return f.quotes, f.err
}

func (f *fakeFetcher) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

type memoryStore struct {
	snap *models.Snapshot
	err  error
}

func (m *memoryStore) Save(_ context.Context, snap *models.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.snap = snap
	return nil
}

func (m *memoryStore) Latest(_ context.Context) (*models.Snapshot, error) {
	if m.snap == nil {
		return nil, models.ErrNoSnapshot
	}
	return m.snap, nil
}

type mockRunRepository struct {
	mock.Mock
}

func (m *mockRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.PipelineRun), args.Error(1)
}

func (m *mockRunRepository) Latest(ctx context.Context) (*models.PipelineRun, error) {
	args := m.Called(ctx)
	return args.Get(0).(*models.PipelineRun), args.Error(1)
}

func (m *mockRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.PipelineRun), args.Error(1)
}

func TestRefreshSnapshot(t *testing.T) {
	now := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{quotes: []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, now.Add(24*time.Hour)),
		func() models.MarketQuote {
			q := quote("evt_1", "Boston Celtics", "Detroit Pistons", "Jayson Tatum Over 24.5 Points", 1.90, now.Add(24*time.Hour))
			q.IsProp = true
			return q
		}(),
	}}
	store := &memoryStore{}

	svc := NewOddsService(OddsServiceConfig{Sports: []models.Sport{models.SportNBA}, StoreName: "memory"}, fetcher, store, nil, quietLogger())
	svc.now = func() time.Time { return now }

	var got []RefreshSummary
	svc.OnRefresh(func(s RefreshSummary) { got = append(got, s) })

	snap, err := svc.RefreshSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.cleared)
	assert.Equal(t, []bool{true}, fetcher.props)
	assert.Equal(t, snap, store.snap)
	assert.Equal(t, now, snap.FetchedAt)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TotalQuotes)
	assert.Equal(t, models.SportCount{H2H: 1, Props: 1}, got[0].Sports[models.SportNBA])
}

func TestRefreshSnapshotErrors(t *testing.T) {
	cfg := OddsServiceConfig{Sports: []models.Sport{models.SportNBA}}

	t.Run("fetch failure", func(t *testing.T) {
		svc := NewOddsService(cfg, &fakeFetcher{err: errors.New("down")}, &memoryStore{}, nil, quietLogger())
		_, err := svc.RefreshSnapshot(context.Background())
		assert.ErrorContains(t, err, "failed to fetch odds")
	})

	t.Run("store failure", func(t *testing.T) {
		svc := NewOddsService(cfg, &fakeFetcher{}, &memoryStore{err: errors.New("disk full")}, nil, quietLogger())
		_, err := svc.RefreshSnapshot(context.Background())
		assert.ErrorContains(t, err, "failed to store snapshot")
	})
}

func TestLoadQuotes(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	upcoming := quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, now.Add(24*time.Hour))
	past := quote("evt_2", "Miami Heat", "Orlando Magic", "Miami Heat", 1.20, now.Add(-time.Hour))
	distant := quote("evt_3", "Utah Jazz", "Phoenix Suns", "Phoenix Suns", 1.15, now.Add(10*24*time.Hour))
	live := quote("evt_9", "Denver Nuggets", "Washington Wizards", "Denver Nuggets", 1.12, now.Add(2*time.Hour))

	tests := []struct {
		name        string
		stored      *models.Snapshot
		wantEvents  []string
		wantStored  bool
		wantFetches int
	}{
		{
			name:        "stored upcoming quotes",
			stored:      &models.Snapshot{ID: uuid.New(), FetchedAt: now, Quotes: []models.MarketQuote{upcoming, past, distant}},
			wantEvents:  []string{"evt_1"},
			wantStored:  true,
			wantFetches: 0,
		},
		{
			name:        "stored snapshot stale",
			stored:      &models.Snapshot{ID: uuid.New(), FetchedAt: now, Quotes: []models.MarketQuote{past}},
			wantEvents:  []string{"evt_9"},
			wantFetches: 1,
		},
		{
			name:        "nothing stored",
			wantEvents:  []string{"evt_9"},
			wantFetches: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{quotes: []models.MarketQuote{live}}
			svc := NewOddsService(OddsServiceConfig{Sports: []models.Sport{models.SportNBA}}, fetcher, &memoryStore{snap: tt.stored}, nil, quietLogger())
			svc.now = func() time.Time { return now }

			quotes, snapshotID, err := svc.LoadQuotes(context.Background())
			require.NoError(t, err)

			var events []string
			for _, q := range quotes {
				events = append(events, q.EventID)
			}
			assert.Equal(t, tt.wantEvents, events)
			assert.Equal(t, tt.wantStored, snapshotID != nil)
			assert.Len(t, fetcher.props, tt.wantFetches)
		})
	}
}

func TestLoadQuotesBestOddsOnly(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	a := quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, now.Add(24*time.Hour))
	b := a
	b.Bookmaker = "tab"
	b.DecimalOdds = 1.14

	store := &memoryStore{snap: &models.Snapshot{ID: uuid.New(), FetchedAt: now, Quotes: []models.MarketQuote{a, b}}}
	svc := NewOddsService(OddsServiceConfig{BestOddsOnly: true}, &fakeFetcher{}, store, nil, quietLogger())
	svc.now = func() time.Time { return now }

	quotes, _, err := svc.LoadQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, 1.14, quotes[0].DecimalOdds)
	assert.Equal(t, "tab", quotes[0].Bookmaker)
}

func TestStatus(t *testing.T) {
	store := &memoryStore{}
	svc := NewOddsService(OddsServiceConfig{}, &fakeFetcher{}, store, nil, quietLogger())

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.HasStoredData)

	store.snap = &models.Snapshot{ID: uuid.New(), FetchedAt: time.Now(), Quotes: make([]models.MarketQuote, 3)}
	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.HasStoredData)
	assert.Equal(t, 3, status.TotalMarkets)
	assert.Equal(t, store.snap.ID, *status.SnapshotID)
}

func TestPersistRun(t *testing.T) {
	run := &models.PipelineRun{ID: uuid.New()}

	t.Run("disabled", func(t *testing.T) {
		svc := NewOddsService(OddsServiceConfig{}, &fakeFetcher{}, &memoryStore{}, nil, quietLogger())
		assert.NoError(t, svc.PersistRun(context.Background(), run))
	})

	t.Run("stored", func(t *testing.T) {
		repo := new(mockRunRepository)
		repo.On("Create", mock.Anything, run).Return(nil)
		svc := NewOddsService(OddsServiceConfig{}, &fakeFetcher{}, &memoryStore{}, repo, quietLogger())

		assert.NoError(t, svc.PersistRun(context.Background(), run))
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mockRunRepository)
		repo.On("Create", mock.Anything, run).Return(errors.New("conn refused"))
		svc := NewOddsService(OddsServiceConfig{}, &fakeFetcher{}, &memoryStore{}, repo, quietLogger())

		assert.ErrorContains(t, svc.PersistRun(context.Background(), run), "failed to persist run")
	})
}

func TestAnalyzerCachesUntilRefresh(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{quotes: []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, now.Add(24*time.Hour)),
	}}
	odds := NewOddsService(OddsServiceConfig{Sports: []models.Sport{models.SportNBA}}, fetcher, &memoryStore{}, nil, quietLogger())
	analyzer := NewAnalyzer(odds, newTestPipeline(), time.Minute, quietLogger())

	first, err := analyzer.Latest(context.Background(), "test")
	require.NoError(t, err)
	second, err := analyzer.Latest(context.Background(), "test")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Nil(t, first.Run.SnapshotID)

	_, err = odds.RefreshSnapshot(context.Background())
	require.NoError(t, err)

	third, err := analyzer.Latest(context.Background(), "test")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	require.NotNil(t, third.Run.SnapshotID)
}

func TestPipelineLegs(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	quotes := []models.MarketQuote{
		quote("evt_1", "Boston Celtics", "Detroit Pistons", "Boston Celtics", 1.10, future),
		quote("evt_2", "Washington Wizards", "Denver Nuggets", "Denver Nuggets", 1.20, future),
		quote("evt_3", "Utah Jazz", "Phoenix Suns", "Phoenix Suns", 1.15, future),
	}

	cfg := PipelineConfig{Selection: selection.DefaultConfig(), Multi: multi.DefaultConfig(), RecommendedLegs: 1}
	log := quietLogger()
	p := NewPipeline(cfg, ev.NewEngine(ev.DefaultThresholds(), log), signals.NewDeriver(nil, log), log)

	result, err := p.Run(context.Background(), quotes, "test")
	require.NoError(t, err)
	require.Len(t, result.Run.Recommendations, 1)
	require.Len(t, result.Candidates, 3)

	assert.Len(t, p.Legs(result, 0), 1)
	assert.Len(t, p.Legs(result, 1), 1)

	more := p.Legs(result, 3)
	require.Len(t, more, 3)
	assert.Equal(t, result.Run.Recommendations[0].EventID, more[0].EventID)
}
