package proximity

import (
	"errors"
	"math"
	"testing"

	"hospital-access/internal/crs"
	"hospital-access/internal/domain"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试数据直接使用 UTM 18S 米制坐标，便于精确控制距离
func centers(dep string, named map[string]orb.Point, order ...string) domain.CenterSet {
	cs := domain.CenterSet{CRS: crs.UTM18S}
	for _, n := range order {
		cs.Centers = append(cs.Centers, domain.PopulationCenter{Name: n, Department: dep, Location: named[n]})
	}
	return cs
}

func hospitalsAt(dep string, pts ...orb.Point) domain.HospitalSet {
	hs := domain.HospitalSet{CRS: crs.UTM18S}
	for _, p := range pts {
		hs.Hospitals = append(hs.Hospitals, domain.Hospital{Department: dep, Location: p})
	}
	return hs
}

func TestAnalyzeTieGoesToFirst(t *testing.T) {
	cs := centers("LIMA", map[string]orb.Point{
		"A": {300000, 8660000},
		"B": {400000, 8660000},
	}, "A", "B")
	hs := hospitalsAt("LIMA",
		orb.Point{300500, 8660000}, orb.Point{300000, 8661000},
		orb.Point{400500, 8660000}, orb.Point{400000, 8661000},
	)
	res, err := Analyze(cs, hs, "LIMA", DefaultRadius)
	require.NoError(t, err)
	assert.Equal(t, "A", res.Isolated.Center.Name)
	assert.Equal(t, "A", res.Concentrated.Center.Name)
	assert.Equal(t, 2, res.Isolated.Count)
	assert.Equal(t, 2, res.Evaluated)
	assert.False(t, res.Placeholder)
}

func TestAnalyzeMinMax(t *testing.T) {
	cs := centers("LORETO", map[string]orb.Point{
		"P": {600000, 9580000},
		"Q": {700000, 9580000},
		"R": {800000, 9580000},
		"S": {600000, 9580000},
	}, "P", "Q", "R", "S")
	hs := hospitalsAt("LORETO",
		orb.Point{600100, 9580000}, orb.Point{600200, 9580000}, orb.Point{600300, 9580000},
		orb.Point{700100, 9580000},
		orb.Point{800100, 9580000},
	)
	// 其他地区的医院不参与计数
	hs.Hospitals = append(hs.Hospitals, domain.Hospital{Department: "LIMA", Location: orb.Point{700200, 9580000}})

	res, err := Analyze(cs, hs, "LORETO", DefaultRadius)
	require.NoError(t, err)
	assert.Equal(t, "Q", res.Isolated.Center.Name)
	assert.Equal(t, 1, res.Isolated.Count)
	assert.Equal(t, "P", res.Concentrated.Center.Name)
	assert.Equal(t, 3, res.Concentrated.Count)
	assert.InDelta(t, -74.1, res.Concentrated.LonLat.Lon(), 0.05)
	assert.InDelta(t, -3.79, res.Concentrated.LonLat.Lat(), 0.05)
}

func TestAnalyzeClosedDisc(t *testing.T) {
	cs := centers("X", map[string]orb.Point{"C": {500000, 8800000}}, "C")
	hs := hospitalsAt("X", orb.Point{510000, 8800000}, orb.Point{500000, 8789999.99})

	res, err := Analyze(cs, hs, "X", 10000)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Concentrated.Count)

	res, err = Analyze(cs, hs, "X", 9999)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Concentrated.Count)
}

func TestAnalyzeEmptyRegion(t *testing.T) {
	cs := centers("LIMA", map[string]orb.Point{"A": {300000, 8660000}}, "A")
	hs := hospitalsAt("LIMA", orb.Point{300000, 8660000})

	_, err := Analyze(cs, hs, "ATLANTIDA", DefaultRadius)
	var ere *EmptyRegionError
	require.True(t, errors.As(err, &ere))
	assert.Equal(t, "ATLANTIDA", ere.Region)

	_, err = Analyze(cs, hospitalsAt("CUSCO", orb.Point{0, 0}), "LIMA", DefaultRadius)
	require.True(t, errors.As(err, &ere))
	assert.Equal(t, 1, ere.Centers)
	assert.Equal(t, 0, ere.Hospitals)

	_, err = Coverage(cs, hs, "ATLANTIDA", DefaultRadius)
	require.True(t, errors.As(err, &ere))
}

func TestAnalyzeBadRadius(t *testing.T) {
	cs := centers("LIMA", map[string]orb.Point{"A": {300000, 8660000}}, "A")
	hs := hospitalsAt("LIMA", orb.Point{300001, 8660000})
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Analyze(cs, hs, "LIMA", r)
		assert.Error(t, err, "radius %v", r)
		_, err = Coverage(cs, hs, "LIMA", r)
		assert.Error(t, err, "radius %v", r)
	}
	assert.True(t, ValidRadius(DefaultRadius))
}

func TestAnalyzeGeographicInputs(t *testing.T) {
	cs := domain.CenterSet{CRS: crs.WGS84, Centers: []domain.PopulationCenter{
		{Name: "Lima", Department: "LIMA", Location: orb.Point{-77.04, -12.05}},
		{Name: "Huacho", Department: "LIMA", Location: orb.Point{-77.61, -11.11}},
	}}
	hs := domain.HospitalSet{CRS: crs.WGS84, Hospitals: []domain.Hospital{
		{Department: "LIMA", Location: orb.Point{-77.05, -12.06}},
		{Department: "LIMA", Location: orb.Point{-77.03, -12.04}},
		// 约 0.2° 远，超出 10 km
		{Department: "LIMA", Location: orb.Point{-77.24, -12.05}},
	}}
	res, err := Analyze(cs, hs, "LIMA", DefaultRadius)
	require.NoError(t, err)
	assert.Equal(t, "Huacho", res.Isolated.Center.Name)
	assert.Equal(t, 0, res.Isolated.Count)
	assert.Equal(t, "Lima", res.Concentrated.Center.Name)
	assert.Equal(t, 2, res.Concentrated.Count)
	assert.InDelta(t, -77.04, res.Concentrated.LonLat.Lon(), 1e-9)
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder("UCAYALI", DefaultRadius)
	assert.True(t, p.Placeholder)
	assert.Equal(t, DefaultCenter, p.Isolated.LonLat)
	assert.Equal(t, 0, p.Concentrated.Count)
	assert.Equal(t, "UCAYALI", p.Region)
}

func TestCoverage(t *testing.T) {
	cs := centers("X", map[string]orb.Point{
		"near": {500000, 8800000},
		"far":  {600000, 8800000},
		"edge": {520000, 8800000},
	}, "near", "far", "edge")
	hs := hospitalsAt("X", orb.Point{505000, 8800000}, orb.Point{510000, 8800000})

	cov, err := Coverage(cs, hs, "X", 10000)
	require.NoError(t, err)
	require.Len(t, cov.Covered, 2)
	assert.Equal(t, "near", cov.Covered[0].Center.Name)
	assert.Equal(t, "edge", cov.Covered[1].Center.Name)
	assert.InDelta(t, 10000, cov.Covered[1].NearestM, 1e-9)
	require.Len(t, cov.Isolated, 1)
	assert.Equal(t, "far", cov.Isolated[0].Center.Name)
	assert.InDelta(t, 2.0/3.0, cov.Ratio, 1e-12)
}
