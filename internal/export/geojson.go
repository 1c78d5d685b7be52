package export

import (
	"fmt"
	"sort"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/crs"
	"hospital-access/internal/domain"
	"hospital-access/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 标记聚类使用的 geohash 精度（约 20 km 见方）
const MarkerClusterPrecision = 4

// 文档注释：区县分级设色图层
// 背景：Web 地图只接受经纬度，区县几何从源 CRS 重投影到 EPSG:4326。
// 约束：要素顺序与区县源顺序一致；属性 IDDIST/DEPARTAMEN/N_HOSPITALES/SIN_HOSPITAL。
func DistrictsGeoJSON(dc aggregate.DistrictCounts) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, d := range dc.Districts {
		mp, err := crs.MultiPolygon(d.Geometry, dc.CRS, crs.WGS84)
		if err != nil {
			return nil, fmt.Errorf("district %s: %w", d.ID, err)
		}
		f := geojson.NewFeature(mp)
		f.Properties["IDDIST"] = d.ID
		f.Properties["DEPARTAMEN"] = d.Department
		f.Properties["N_HOSPITALES"] = d.HospitalCount
		f.Properties["SIN_HOSPITAL"] = d.HospitalCount == 0
		fc.Append(f)
	}
	return fc, nil
}

// HospitalMarkers：全国医院点位，弹窗字段为名称/类别/机构
func HospitalMarkers(hs domain.HospitalSet) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, h := range hs.Hospitals {
		f := geojson.NewFeature(orb.Point{h.Lon, h.Lat})
		f.Properties["nombre"] = h.Name
		f.Properties["categoria"] = h.Category
		f.Properties["institucion"] = h.Institution
		f.Properties["departamento"] = h.Department
		f.Properties["geohash"] = geo.EncodeGeohash(h.Lat, h.Lon, MarkerClusterPrecision)
		fc.Append(f)
	}
	return fc
}

// Cluster：服务端标记聚类单元
type Cluster struct {
	Geohash string    `json:"geohash"`
	Count   int       `json:"count"`
	Center  orb.Point `json:"center"`
}

// Clusters：按 geohash 单元聚合医院，中心为单元内点的均值；按数量降序、geohash 升序
func Clusters(hs domain.HospitalSet, precision int) []Cluster {
	type acc struct {
		n      int
		sumLon float64
		sumLat float64
	}
	cells := make(map[string]*acc)
	for _, h := range hs.Hospitals {
		k := geo.EncodeGeohash(h.Lat, h.Lon, precision)
		a := cells[k]
		if a == nil {
			a = &acc{}
			cells[k] = a
		}
		a.n++
		a.sumLon += h.Lon
		a.sumLat += h.Lat
	}
	out := make([]Cluster, 0, len(cells))
	for k, a := range cells {
		out = append(out, Cluster{Geohash: k, Count: a.n, Center: orb.Point{a.sumLon / float64(a.n), a.sumLat / float64(a.n)}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Geohash < out[j].Geohash
	})
	return out
}
