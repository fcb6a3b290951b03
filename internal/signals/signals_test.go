package signals

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clever-multi/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDeriveFromOddsFavorite(t *testing.T) {
	tests := []struct {
		name    string
		odds    float64
		want    models.TeamSignal
	}{
		{
			name: "strong favorite",
			odds: 1.15,
			want: models.TeamSignal{
				WinRate: 0.85, Last10Record: "8-2", Last5Record: "5-0",
				PointDifferential: 8.0, ConsistencyScore: 0.82, StrengthRating: 84.8, CurrentStreak: 1,
			},
		},
		{
			name: "heavy favorite",
			odds: 1.05,
			want: models.TeamSignal{
				WinRate: 0.85, Last10Record: "8-2", Last5Record: "5-0",
				PointDifferential: 13.0, ConsistencyScore: 0.84, StrengthRating: 88.1, CurrentStreak: 2,
			},
		},
		{
			name: "boundary favorite",
			odds: 1.25,
			want: models.TeamSignal{
				WinRate: 0.65, Last10Record: "6-4", Last5Record: "4-1",
				PointDifferential: 3.0, ConsistencyScore: 0.81, StrengthRating: 82.0, CurrentStreak: 1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveFromOdds("Boston Celtics", models.SportNBA, tt.odds, true)
			tt.want.TeamName = "Boston Celtics"
			tt.want.Sport = models.SportNBA
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveFromOddsUnderdog(t *testing.T) {
	got := DeriveFromOdds("Detroit Pistons", models.SportNBA, OpponentOdds(1.15, 2), false)

	assert.Equal(t, 0.117, got.WinRate)
	assert.Equal(t, "1-9", got.Last10Record)
	assert.Equal(t, "1-4", got.Last5Record)
	assert.Equal(t, -7.4, got.PointDifferential)
	assert.Equal(t, 0.44, got.ConsistencyScore)
	assert.Equal(t, 34.6, got.StrengthRating)
	assert.Equal(t, -1, got.CurrentStreak)
}

func TestDeriveFromOddsBounds(t *testing.T) {
	for _, odds := range []float64{0.5, 1.0, 1.01, 1.3, 2.5, 15} {
		for _, fav := range []bool{true, false} {
			got := DeriveFromOdds("Team", models.SportNFL, odds, fav)
			assert.GreaterOrEqual(t, got.ConsistencyScore, 0.0)
			assert.LessOrEqual(t, got.ConsistencyScore, 0.95)
			assert.GreaterOrEqual(t, got.StrengthRating, 0.0)
			assert.LessOrEqual(t, got.StrengthRating, 90.0)
		}
	}

	even := DeriveFromOdds("Team", models.SportNFL, 1.0, false)
	assert.Equal(t, 0.45, even.WinRate)
	assert.Equal(t, "4-6", even.Last10Record)
	assert.Equal(t, "3-2", even.Last5Record)
	assert.Equal(t, 0, even.CurrentStreak)
}

func TestOpponentOdds(t *testing.T) {
	assert.InDelta(t, 7.6667, OpponentOdds(1.15, 2), 1e-4)
	assert.Equal(t, 3.0, OpponentOdds(2.0, 2))
	assert.Equal(t, 3.0, OpponentOdds(1.0, 2))
	assert.InDelta(t, 1.6667, OpponentOdds(2.5, 5), 1e-4)
	assert.Equal(t, 3.0, OpponentOdds(6, 5))
}

func TestCheckRivalry(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		sport models.Sport
		want  models.RivalryInfo
	}{
		{"exact order", "Dallas Cowboys", "Philadelphia Eagles", models.SportNFL,
			models.RivalryInfo{IsRivalry: true, Name: "NFC East Rivalry", Intensity: 0.7}},
		{"reversed order", "Boston Celtics", "Los Angeles Lakers", models.SportNBA,
			models.RivalryInfo{IsRivalry: true, Name: "Historic NBA Rivalry", Intensity: 0.7}},
		{"short names", "Heat", "Celtics", models.SportNBA,
			models.RivalryInfo{IsRivalry: true, Name: "Eastern Rivalry", Intensity: 0.7}},
		{"wrong sport", "Dallas Cowboys", "Philadelphia Eagles", models.SportNBA, models.RivalryInfo{}},
		{"no rivalry", "Denver Nuggets", "Utah Jazz", models.SportNBA, models.RivalryInfo{}},
		{"empty team", "", "Boston Celtics", models.SportNBA, models.RivalryInfo{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckRivalry(tt.a, tt.b, tt.sport))
		})
	}
}

func TestDeriverMemoizes(t *testing.T) {
	memo := NewMemo(0)
	d := NewDeriver(memo, quietLogger())

	first := d.Derive("Boston Celtics", models.SportNBA, 1.15, true)
	assert.Equal(t, 1, memo.ItemCount())

	// Same key returns the memoized value even with a different favorite flag
	second := d.Derive("Boston Celtics", models.SportNBA, 1.15, false)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, memo.ItemCount())

	d.Derive("Boston Celtics", models.SportNBA, 1.20, true)
	assert.Equal(t, 2, memo.ItemCount())
}

func TestDeriverPrefersStaticProvider(t *testing.T) {
	stored := models.TeamSignal{
		TeamName: "Boston Celtics", Sport: models.SportNBA, WinRate: 0.7,
		Last10Record: "7-3", ConsistencyScore: 0.9, CurrentStreak: 4,
	}
	static := NewStaticProvider([]models.TeamSignal{stored})
	require.Equal(t, 1, static.Len())

	d := NewDeriver(NewMemo(0), quietLogger(), static)

	got := d.Derive("boston celtics", models.SportNBA, 1.15, true)
	assert.Equal(t, 0.7, got.WinRate)
	assert.Equal(t, 4, got.CurrentStreak)
	assert.Equal(t, "boston celtics", got.TeamName)

	fallback := d.Derive("Detroit Pistons", models.SportNBA, 7.5, false)
	assert.Equal(t, DeriveFromOdds("Detroit Pistons", models.SportNBA, 7.5, false), fallback)
}

func TestDeriverWithMemoIsolatesRuns(t *testing.T) {
	base := NewDeriver(nil, quietLogger())
	run1 := base.WithMemo(NewMemo(0))
	run2 := base.WithMemo(NewMemo(0))

	run1.Derive("Miami Heat", models.SportNBA, 1.2, true)
	assert.Equal(t, 1, run1.Memo().ItemCount())
	assert.Equal(t, 0, run2.Memo().ItemCount())
}
