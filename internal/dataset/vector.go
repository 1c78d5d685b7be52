package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"hospital-access/internal/crs"
	"hospital-access/internal/domain"
	"hospital-access/internal/geo"
	"hospital-access/internal/logger"

	"github.com/paulmach/orb"
)

// feature：与格式无关的要素；属性键统一大写
type feature struct {
	props    map[string]string
	geometry orb.Geometry
}

func (f feature) attr(keys ...string) string {
	for _, k := range keys {
		if v, ok := f.props[strings.ToUpper(k)]; ok && v != "" {
			return v
		}
	}
	return ""
}

// readVector：按扩展名分派到 GeoJSON 或 shapefile 读取
func readVector(path string) ([]feature, crs.Code, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return readGeoJSON(path)
	case ".shp":
		return readShapefile(path)
	}
	return nil, crs.Unknown, unreadable(path, "unsupported vector format %q", filepath.Ext(path))
}

var (
	districtIDKeys   = []string{"IDDIST", "UBIGEO"}
	departmentKeys   = []string{"DEPARTAMEN", "DEPARTAMENTO", "DEP"}
	centerNameKeys   = []string{"NOMCCPP", "NOMBRE", "NOM_CCPP"}
	districtGeomType = "Polygon/MultiPolygon"
)

// 文档注释：读取区县边界
// 背景：IGN 区县图层以 IDDIST 为唯一键、DEPARTAMEN 为所属省级名称；几何统一为 MultiPolygon 并预计算包围盒。
// 约束：空几何要素跳过并汇总计数；非面几何或重复 IDDIST 视为数据集不可读。
func LoadDistricts(path string) (domain.DistrictSet, error) {
	feats, code, err := readVector(path)
	if err != nil {
		return domain.DistrictSet{}, err
	}
	out := domain.DistrictSet{CRS: code}
	seen := make(map[string]struct{}, len(feats))
	skipped := 0
	for i, f := range feats {
		var mp orb.MultiPolygon
		switch g := f.geometry.(type) {
		case nil:
			skipped++
			continue
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			return domain.DistrictSet{}, unreadable(path, "feature %d: geometry %s, want %s", i, g.GeoJSONType(), districtGeomType)
		}
		if len(mp) == 0 {
			skipped++
			continue
		}
		id := f.attr(districtIDKeys...)
		if id == "" {
			return domain.DistrictSet{}, unreadable(path, "feature %d: missing IDDIST", i)
		}
		if _, dup := seen[id]; dup {
			return domain.DistrictSet{}, unreadable(path, "duplicate IDDIST %s", id)
		}
		seen[id] = struct{}{}
		out.Districts = append(out.Districts, domain.District{
			ID:         id,
			Department: f.attr(departmentKeys...),
			Geometry:   mp,
			Bound:      geo.BoundOf(mp),
		})
	}
	logger.L().Info("dataset_load_ok", "kind", "districts", "path", path, "crs", code.String(), "features", len(out.Districts), "skipped", skipped)
	return out, nil
}

// LoadPopulationCenters：读取人口中心点图层，保持源顺序（决定最值选择的并列规则）
func LoadPopulationCenters(path string) (domain.CenterSet, error) {
	feats, code, err := readVector(path)
	if err != nil {
		return domain.CenterSet{}, err
	}
	out := domain.CenterSet{CRS: code}
	skipped := 0
	for i, f := range feats {
		var pt orb.Point
		switch g := f.geometry.(type) {
		case nil:
			skipped++
			continue
		case orb.Point:
			pt = g
		case orb.MultiPoint:
			if len(g) == 0 {
				skipped++
				continue
			}
			pt = g[0]
		default:
			return domain.CenterSet{}, unreadable(path, "feature %d: geometry %s, want Point", i, g.GeoJSONType())
		}
		out.Centers = append(out.Centers, domain.PopulationCenter{
			Name:       f.attr(centerNameKeys...),
			Department: f.attr(departmentKeys...),
			Location:   pt,
		})
	}
	logger.L().Info("dataset_load_ok", "kind", "population_centers", "path", path, "crs", code.String(), "features", len(out.Centers), "skipped", skipped)
	return out, nil
}

func missingCRS(path, reason string, args ...any) error {
	return &MissingCRSError{Path: path, Reason: fmt.Sprintf(reason, args...)}
}
