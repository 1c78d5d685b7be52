package proximity

import (
	"fmt"

	"hospital-access/internal/domain"
	"hospital-access/internal/geo"

	"github.com/paulmach/orb"
)

// CenterDistance：人口中心及其到最近医院的距离（米）
type CenterDistance struct {
	Center   domain.PopulationCenter
	LonLat   orb.Point
	NearestM float64
}

// CoverageResult：并集缓冲覆盖模式的结果，与最值选择无关
type CoverageResult struct {
	Region   string
	RadiusM  float64
	Covered  []CenterDistance
	Isolated []CenterDistance
	Ratio    float64
}

// 文档注释：并集覆盖分析
// 背景：以每家医院为圆心作半径 radius 的缓冲并取并集；落入并集的中心视为已覆盖，其余为孤立。
// 实现：点落入圆盘并集等价于到最近医院的距离 ≤ radius，用 kd 树最近邻判定。
func Coverage(cs domain.CenterSet, hs domain.HospitalSet, name string, radius float64) (CoverageResult, error) {
	if !ValidRadius(radius) {
		return CoverageResult{}, fmt.Errorf("radius must be a finite positive number, got %v", radius)
	}
	r, err := prepare(cs, hs, name)
	if err != nil {
		return CoverageResult{}, err
	}
	tree := geo.NewKDTree(r.hospitals)
	out := CoverageResult{Region: name, RadiusM: radius}
	for i, p := range r.metric {
		_, d, _ := tree.Nearest(p)
		cc := CenterDistance{Center: r.centers[i], LonLat: r.lonlat[i], NearestM: d}
		if d <= radius {
			out.Covered = append(out.Covered, cc)
		} else {
			out.Isolated = append(out.Isolated, cc)
		}
	}
	out.Ratio = float64(len(out.Covered)) / float64(len(r.centers))
	return out, nil
}
