package memo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/crs"
	"hospital-access/internal/domain"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeCachesByKey(t *testing.T) {
	c := New()
	calls := 0
	f := func() (int, error) { calls++; return 42, nil }

	v, err := GetOrCompute(c, "f", "k1", f)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	v, err = GetOrCompute(c, "f", "k1", f)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, _ = GetOrCompute(c, "f", "k2", f)
	_, _ = GetOrCompute(c, "g", "k1", f)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, c.Len())

	hits, misses := c.Stats("f")
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	calls := 0
	f := func() (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}
	_, err := GetOrCompute(c, "f", "k", f)
	assert.ErrorIs(t, err, boom)
	v, err := GetOrCompute(c, "f", "k", f)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestGetOrComputeConcurrentSingleCompute(t *testing.T) {
	c := New()
	var calls atomic.Int32
	release := make(chan struct{})
	f := func() (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}
	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = GetOrCompute(c, "slow", "k", f)
		}(i)
	}
	close(release)
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, 7, r)
	}
	assert.Equal(t, int32(1), calls.Load())
	v, _ := GetOrCompute(c, "slow", "k", f)
	assert.Equal(t, 7, v)
}

func snapshot(counts ...int) aggregate.DistrictCounts {
	dc := aggregate.DistrictCounts{CRS: crs.WGS84}
	for i, n := range counts {
		x := float64(i)
		dc.Districts = append(dc.Districts, domain.District{
			ID:            string(rune('a' + i)),
			Department:    "X",
			Geometry:      orb.MultiPolygon{{{{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 0}}}},
			HospitalCount: n,
		})
	}
	return dc
}

func TestDissolveSnapshotsNeverStale(t *testing.T) {
	c := New()
	dissolve := func(dc aggregate.DistrictCounts) domain.DepartmentSet {
		key := NewKey().Districts(dc.CRS, dc.Districts).Sum()
		v, err := GetOrCompute(c, "departments", key, func() (domain.DepartmentSet, error) {
			return aggregate.Dissolve(dc), nil
		})
		require.NoError(t, err)
		return v
	}
	a := dissolve(snapshot(2, 0, 5))
	b := dissolve(snapshot(1, 1, 1))
	assert.Equal(t, 7, a.Departments[0].HospitalCount)
	assert.Equal(t, 3, b.Departments[0].HospitalCount)

	again := dissolve(snapshot(2, 0, 5))
	assert.Equal(t, a, again)
	hits, misses := c.Stats("departments")
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestKeyContent(t *testing.T) {
	cs := domain.CenterSet{CRS: crs.UTM18S, Centers: []domain.PopulationCenter{{Name: "A", Department: "LIMA", Location: orb.Point{1, 2}}}}
	k1 := NewKey().Centers(cs).String("LIMA").Float(10000).Sum()
	k2 := NewKey().Centers(cs).String("LORETO").Float(10000).Sum()
	k3 := NewKey().Centers(cs).String("LIMA").Float(5000).Sum()
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)

	cs2 := domain.CenterSet{CRS: cs.CRS, Centers: append([]domain.PopulationCenter(nil), cs.Centers...)}
	assert.Equal(t, k1, NewKey().Centers(cs2).String("LIMA").Float(10000).Sum())

	assert.NotEqual(t, NewKey().String("ab").String("c").Sum(), NewKey().String("a").String("bc").Sum())
}
