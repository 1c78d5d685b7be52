// 包 proximity：人口中心周边固定半径内的医院计数，选出最孤立与最集中的中心
package proximity

import (
	"fmt"
	"math"

	"hospital-access/internal/crs"
	"hospital-access/internal/domain"
	"hospital-access/internal/geo"

	"github.com/paulmach/orb"
)

// DefaultRadius：缓冲半径（米）
const DefaultRadius = 10000.0

// ValidRadius：半径须为有限正数（拒绝 NaN 与 ±Inf）
func ValidRadius(radius float64) bool {
	return radius > 0 && !math.IsInf(radius, 1)
}

// MetricCRS：距离计算所用的平面坐标系（UTM 18S 覆盖秘鲁大部分国土）
const MetricCRS = crs.UTM18S

// DefaultCenter：地区无数据时占位记录使用的位置（lon, lat）
var DefaultCenter = orb.Point{-75.01, -9.19}

// EmptyRegionError：地区内没有人口中心或没有医院
type EmptyRegionError struct {
	Region    string
	Centers   int
	Hospitals int
}

func (e *EmptyRegionError) Error() string {
	return fmt.Sprintf("region %q has %d population centers and %d hospitals", e.Region, e.Centers, e.Hospitals)
}

// region：按省级名称过滤后的两组点，已投影到 MetricCRS
type region struct {
	centers   []domain.PopulationCenter
	metric    []orb.Point
	lonlat    []orb.Point
	hospitals []orb.Point
}

func prepare(cs domain.CenterSet, hs domain.HospitalSet, name string) (region, error) {
	var r region
	var cpts, hpts []orb.Point
	for _, c := range cs.Centers {
		if c.Department == name {
			r.centers = append(r.centers, c)
			cpts = append(cpts, c.Location)
		}
	}
	for _, h := range hs.Hospitals {
		if h.Department == name {
			hpts = append(hpts, h.Location)
		}
	}
	if len(cpts) == 0 || len(hpts) == 0 {
		return region{}, &EmptyRegionError{Region: name, Centers: len(cpts), Hospitals: len(hpts)}
	}
	var err error
	if r.metric, err = crs.Points(cpts, cs.CRS, MetricCRS); err != nil {
		return region{}, fmt.Errorf("reproject centers: %w", err)
	}
	if r.lonlat, err = crs.Points(cpts, cs.CRS, crs.WGS84); err != nil {
		return region{}, fmt.Errorf("reproject centers: %w", err)
	}
	if r.hospitals, err = crs.Points(hpts, hs.CRS, MetricCRS); err != nil {
		return region{}, fmt.Errorf("reproject hospitals: %w", err)
	}
	return r, nil
}

// 文档注释：地区邻近分析
// 背景：两组点按省级名称精确过滤后投影到 UTM 18S；每个中心统计距离 ≤ radius 的医院数（闭圆盘，kd 树范围查询）。
// 约束：最小/最大值并列时取输入顺序中的第一个；任一组为空返回 *EmptyRegionError。
func Analyze(cs domain.CenterSet, hs domain.HospitalSet, name string, radius float64) (domain.ProximityResult, error) {
	if !ValidRadius(radius) {
		return domain.ProximityResult{}, fmt.Errorf("radius must be a finite positive number, got %v", radius)
	}
	r, err := prepare(cs, hs, name)
	if err != nil {
		return domain.ProximityResult{}, err
	}
	tree := geo.NewKDTree(r.hospitals)
	res := domain.ProximityResult{Region: name, RadiusM: radius, Evaluated: len(r.centers)}
	minI, maxI := 0, 0
	counts := make([]int, len(r.centers))
	for i, p := range r.metric {
		counts[i] = tree.CountWithin(p, radius)
		if counts[i] < counts[minI] {
			minI = i
		}
		if counts[i] > counts[maxI] {
			maxI = i
		}
	}
	res.Isolated = domain.CenterCount{Center: r.centers[minI], LonLat: r.lonlat[minI], Count: counts[minI]}
	res.Concentrated = domain.CenterCount{Center: r.centers[maxI], LonLat: r.lonlat[maxI], Count: counts[maxI]}
	return res, nil
}

// Placeholder：地区为空时的替代记录，两个中心都落在 DefaultCenter
func Placeholder(name string, radius float64) domain.ProximityResult {
	cc := domain.CenterCount{Center: domain.PopulationCenter{Department: name, Location: DefaultCenter}, LonLat: DefaultCenter}
	return domain.ProximityResult{Region: name, RadiusM: radius, Isolated: cc, Concentrated: cc, Placeholder: true}
}
