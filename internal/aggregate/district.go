// 包 aggregate：医院到区县的空间连接计数，以及区县到省级（departamento）的溶解汇总
package aggregate

import (
	"fmt"

	"hospital-access/internal/crs"
	"hospital-access/internal/domain"
	"hospital-access/internal/geo"

	"github.com/paulmach/orb"
)

// DistrictCounts：带计数的区县（保持源顺序），以及匹配/未匹配的医院数
type DistrictCounts struct {
	CRS       crs.Code
	Districts []domain.District
	Matched   int
	Unmatched int
}

// Total：所有区县计数之和，等于 Matched
func (dc DistrictCounts) Total() int {
	n := 0
	for _, d := range dc.Districts {
		n += d.HospitalCount
	}
	return n
}

// 文档注释：医院与区县的包含连接
// 背景：区县 CRS 为准，医院点重投影到区县 CRS；先按包围盒粗筛，再做点在面内判定（尊重内环洞）。
// 约束：边界上的点视为外部；落入多个重叠区县的医院只计入源顺序中的第一个；
// 未匹配医院不进入任何计数，但不从输入中删除。输入不被修改。
func CountByDistrict(hs domain.HospitalSet, ds domain.DistrictSet) (DistrictCounts, error) {
	locs := make([]orb.Point, len(hs.Hospitals))
	for i, h := range hs.Hospitals {
		locs[i] = h.Location
	}
	projected, err := crs.Points(locs, hs.CRS, ds.CRS)
	if err != nil {
		return DistrictCounts{}, fmt.Errorf("reproject hospitals to %s: %w", ds.CRS, err)
	}

	out := DistrictCounts{CRS: ds.CRS, Districts: make([]domain.District, len(ds.Districts))}
	copy(out.Districts, ds.Districts)
	for i := range out.Districts {
		out.Districts[i].HospitalCount = 0
		if out.Districts[i].Bound == (orb.Bound{}) {
			out.Districts[i].Bound = geo.BoundOf(out.Districts[i].Geometry)
		}
	}
	for _, p := range projected {
		if i := locate(p, out.Districts); i >= 0 {
			out.Districts[i].HospitalCount++
			out.Matched++
			continue
		}
		out.Unmatched++
	}
	return out, nil
}

func locate(p orb.Point, ds []domain.District) int {
	for i := range ds {
		if !ds[i].Bound.Contains(p) {
			continue
		}
		if geo.Within(p, ds[i].Geometry) {
			return i
		}
	}
	return -1
}
