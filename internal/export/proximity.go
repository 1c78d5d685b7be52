package export

import (
	"hospital-access/internal/domain"
	"hospital-access/internal/proximity"
)

// CenterRecord：展示层需要的人口中心字段
type CenterRecord struct {
	Name  string  `json:"nombre"`
	Count int     `json:"n_hospitales"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
}

// ProximityRecord：proximidad.json 中的一条地区记录
type ProximityRecord struct {
	Region       string       `json:"region"`
	RadiusM      float64      `json:"radio_m"`
	Evaluated    int          `json:"centros_evaluados"`
	Isolated     CenterRecord `json:"aislado"`
	Concentrated CenterRecord `json:"concentrado"`
	Placeholder  bool         `json:"sin_datos"`
}

func centerRecord(c domain.CenterCount) CenterRecord {
	return CenterRecord{Name: c.Center.Name, Count: c.Count, Lon: c.LonLat.Lon(), Lat: c.LonLat.Lat()}
}

func ProximityRecords(rs []domain.ProximityResult) []ProximityRecord {
	out := make([]ProximityRecord, 0, len(rs))
	for _, r := range rs {
		out = append(out, ProximityRecord{
			Region:       r.Region,
			RadiusM:      r.RadiusM,
			Evaluated:    r.Evaluated,
			Isolated:     centerRecord(r.Isolated),
			Concentrated: centerRecord(r.Concentrated),
			Placeholder:  r.Placeholder,
		})
	}
	return out
}

// CoverageRecord：并集覆盖模式的汇总，中心只列名称与最近医院距离
type CoverageRecord struct {
	Region   string          `json:"region"`
	RadiusM  float64         `json:"radio_m"`
	Ratio    float64         `json:"cobertura"`
	Covered  []CoveredCenter `json:"cubiertos"`
	Isolated []CoveredCenter `json:"aislados"`
}

type CoveredCenter struct {
	Name     string  `json:"nombre"`
	NearestM float64 `json:"distancia_m"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
}

func coveredCenters(cs []proximity.CenterDistance) []CoveredCenter {
	out := make([]CoveredCenter, 0, len(cs))
	for _, c := range cs {
		out = append(out, CoveredCenter{Name: c.Center.Name, NearestM: c.NearestM, Lon: c.LonLat.Lon(), Lat: c.LonLat.Lat()})
	}
	return out
}

func CoverageRecords(cs []proximity.CoverageResult) []CoverageRecord {
	out := make([]CoverageRecord, 0, len(cs))
	for _, c := range cs {
		out = append(out, CoverageRecord{
			Region:   c.Region,
			RadiusM:  c.RadiusM,
			Ratio:    c.Ratio,
			Covered:  coveredCenters(c.Covered),
			Isolated: coveredCenters(c.Isolated),
		})
	}
	return out
}
