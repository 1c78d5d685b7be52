package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/chart"
	"hospital-access/internal/crs"
	"hospital-access/internal/domain"
	"hospital-access/internal/pipeline"
	"hospital-access/internal/proximity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func utmSquare(lon, lat, half float64) orb.MultiPolygon {
	c := crs.ToUTM(orb.Point{lon, lat}, 18, true)
	return orb.MultiPolygon{{{
		{c[0] - half, c[1] - half}, {c[0] + half, c[1] - half},
		{c[0] + half, c[1] + half}, {c[0] - half, c[1] + half}, {c[0] - half, c[1] - half},
	}}}
}

func sampleResult() *pipeline.Result {
	dc := aggregate.DistrictCounts{CRS: crs.UTM18S, Districts: []domain.District{
		{ID: "150101", Department: "LIMA", Geometry: utmSquare(-77.04, -12.05, 1000), HospitalCount: 2},
		{ID: "150102", Department: "LIMA", Geometry: utmSquare(-77.00, -12.05, 1000), HospitalCount: 0},
		{ID: "160101", Department: "LORETO", Geometry: utmSquare(-73.25, -3.75, 1000), HospitalCount: 1},
	}, Matched: 3}
	hs := domain.HospitalSet{CRS: crs.WGS84, Hospitals: []domain.Hospital{
		{Name: "Loayza", Category: "III-1", Institution: "MINSA", Department: "LIMA", Lat: -12.049, Lon: -77.042},
		{Name: "Dos de Mayo", Category: "III-1", Institution: "MINSA", Department: "LIMA", Lat: -12.056, Lon: -77.016},
		{Name: "Regional", Category: "II-2", Institution: "GORE", Department: "LORETO", Lat: -3.749, Lon: -73.253},
	}}
	for i := range hs.Hospitals {
		h := &hs.Hospitals[i]
		h.Location = orb.Point{h.Lon, h.Lat}
	}
	return &pipeline.Result{
		Hospitals:   hs,
		Districts:   dc,
		Departments: aggregate.Dissolve(dc),
		Proximity: []domain.ProximityResult{
			{Region: "LIMA", RadiusM: 10000, Evaluated: 2,
				Isolated:     domain.CenterCount{Center: domain.PopulationCenter{Name: "HUACHO"}, LonLat: orb.Point{-77.61, -11.11}},
				Concentrated: domain.CenterCount{Center: domain.PopulationCenter{Name: "CERCADO"}, LonLat: orb.Point{-77.04, -12.05}, Count: 2}},
			proximity.Placeholder("UCAYALI", 10000),
		},
		Coverage: []proximity.CoverageResult{{Region: "LIMA", RadiusM: 10000, Ratio: 0.5,
			Covered: []proximity.CenterDistance{{Center: domain.PopulationCenter{Name: "CERCADO"}, NearestM: 120}}}},
		RadiusM: 10000,
	}
}

func TestSummaryCSV(t *testing.T) {
	b, err := SummaryCSV([]aggregate.SummaryRow{{Department: "X", Hospitals: 7}, {Department: "Y", Hospitals: 1}})
	require.NoError(t, err)
	assert.Equal(t, "DEPARTAMENTO,N_HOSPITALES\nX,7\nY,1\n", string(b))
}

func TestSummaryXLSX(t *testing.T) {
	b, err := SummaryXLSX([]aggregate.SummaryRow{{Department: "LIMA", Hospitals: 120}})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(summarySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "LIMA", v)
	v, err = f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "120", v)
}

func TestDistrictsGeoJSONIsGeographic(t *testing.T) {
	res := sampleResult()
	fc, err := DistrictsGeoJSON(res.Districts)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	f := fc.Features[0]
	assert.Equal(t, "150101", f.Properties["IDDIST"])
	assert.Equal(t, 2, f.Properties["N_HOSPITALES"])
	assert.Equal(t, false, f.Properties["SIN_HOSPITAL"])
	assert.Equal(t, true, fc.Features[1].Properties["SIN_HOSPITAL"])

	c := f.Geometry.Bound().Center()
	assert.InDelta(t, -77.04, c.Lon(), 1e-3)
	assert.InDelta(t, -12.05, c.Lat(), 1e-3)

	// 源几何保持 UTM 坐标
	assert.Greater(t, res.Districts.Districts[0].Geometry[0][0][0][0], 1000.0)
}

func TestClusters(t *testing.T) {
	cs := Clusters(sampleResult().Hospitals, MarkerClusterPrecision)
	require.Len(t, cs, 2)
	assert.Equal(t, 2, cs[0].Count)
	assert.InDelta(t, -77.029, cs[0].Center.Lon(), 1e-9)
	assert.Equal(t, 1, cs[1].Count)
}

func TestBuildAndWriteDir(t *testing.T) {
	a, err := Build(sampleResult(), 1)
	require.NoError(t, err)

	b, ok := a.Get(SummaryCSVFile)
	require.True(t, ok)
	assert.Equal(t, "DEPARTAMENTO,N_HOSPITALES\nLIMA,2\nLORETO,1\n", string(b))

	b, _ = a.Get(TopDistrictsFile)
	assert.Equal(t, "IDDIST,DEPARTAMEN,N_HOSPITALES\n150101,LIMA,2\n", string(b))
	b, _ = a.Get(EmptyFile)
	assert.Equal(t, "IDDIST,DEPARTAMEN,N_HOSPITALES\n150102,LIMA,0\n", string(b))

	b, _ = a.Get(ProximityFile)
	var recs []ProximityRecord
	require.NoError(t, json.Unmarshal(b, &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "HUACHO", recs[0].Isolated.Name)
	assert.Equal(t, 2, recs[0].Concentrated.Count)
	assert.True(t, recs[1].Placeholder)
	assert.Equal(t, proximity.DefaultCenter.Lat(), recs[1].Isolated.Lat)

	b, _ = a.Get(MarkersFile)
	fc, err := geojson.UnmarshalFeatureCollection(b)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "Loayza", fc.Features[0].Properties["nombre"])

	_, ok = a.Get(chart.FileName)
	assert.True(t, ok)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, a.WriteDir(dir))
	for _, name := range a.Names() {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
