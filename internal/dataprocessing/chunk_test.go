package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drillsheet/pkg/contracts/domain"
)

func makePoints(n int) []domain.DischargePoint {
	points := make([]domain.DischargePoint, n)
	for i := range points {
		points[i] = domain.DischargePoint{TMin: ptr(float64(i))}
	}
	return points
}

func TestChunkPoints(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"empty", 0, 400, nil},
		{"single page", 24, 400, []int{24}},
		{"exact page", 400, 400, []int{400}},
		{"oversized", 850, 400, []int{400, 400, 50}},
		{"default size", 401, 0, []int{400, 1}},
		{"small pages", 5, 2, []int{2, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := makePoints(tt.n)
			pages := ChunkPoints(points, tt.size)
			require.Len(t, pages, len(tt.sizes))

			var joined []domain.DischargePoint
			for i, p := range pages {
				assert.Len(t, p, tt.sizes[i])
				joined = append(joined, p...)
			}
			if tt.n > 0 {
				assert.Equal(t, points, joined)
			}
		})
	}
}

func TestChunkPoints_PagesDoNotAlias(t *testing.T) {
	pages := ChunkPoints(makePoints(4), 2)
	pages[0] = append(pages[0], domain.DischargePoint{WLM: ptr(1)})
	assert.Equal(t, 2.0, *pages[1][0].TMin)
}

func TestRecordBuilder_SeriesPaging(t *testing.T) {
	rate := 1
	b := recordBuilder{testID: "discharge-x", pageSize: DefaultPageSize}
	series := b.series([]ExtractedSeries{
		{Type: domain.SeriesDischargeRate, RateIndex: &rate, Points: makePoints(850)},
		{Type: domain.SeriesRecovery, Points: makePoints(3)},
	})

	require.Len(t, series, 4)
	for i, want := range []int{400, 400, 50} {
		s := series[i]
		assert.Equal(t, domain.SeriesDischargeRate, s.SeriesType)
		require.NotNil(t, s.RateIndex)
		assert.Equal(t, 1, *s.RateIndex)
		assert.Equal(t, i, s.PageIndex)
		assert.Len(t, s.Points, want)
		assert.Equal(t, "discharge-x", s.TestID)
	}
	assert.Equal(t, "discharge_rate-0", series[0].SeriesID)
	assert.Equal(t, "discharge_rate-2", series[2].SeriesID)
	assert.Equal(t, "recovery-3", series[3].SeriesID)
	assert.Equal(t, 0, series[3].PageIndex)
	assert.Nil(t, series[3].RateIndex)

	var joined []domain.DischargePoint
	for _, s := range series[:3] {
		joined = append(joined, s.Points...)
	}
	assert.Equal(t, makePoints(850), joined)
}
