package aggregate

import (
	"sort"

	"hospital-access/internal/domain"
	"hospital-access/internal/geo"
)

// 文档注释：按省级名称归并区县
// 背景：Geometry 是同名区县多边形的集合（MultiPolygon），不是拓扑并集；区县共享边保留，结果不满足 OGC 有效性，只用于展示与包围盒。计数相加。
// 约束：按计数降序，计数相同按名称升序；结果与输入区县的顺序无关。
func Dissolve(dc DistrictCounts) domain.DepartmentSet {
	idx := make(map[string]int)
	var deps []domain.Department
	for _, d := range dc.Districts {
		i, ok := idx[d.Department]
		if !ok {
			i = len(deps)
			idx[d.Department] = i
			deps = append(deps, domain.Department{Name: d.Department})
		}
		dep := &deps[i]
		dep.Geometry = append(dep.Geometry, d.Geometry...)
		dep.Districts++
		dep.HospitalCount += d.HospitalCount
	}
	for i := range deps {
		deps[i].Bound = geo.BoundOf(deps[i].Geometry)
	}
	sort.SliceStable(deps, func(a, b int) bool {
		if deps[a].HospitalCount != deps[b].HospitalCount {
			return deps[a].HospitalCount > deps[b].HospitalCount
		}
		return deps[a].Name < deps[b].Name
	})
	return domain.DepartmentSet{CRS: dc.CRS, Departments: deps}
}

// SummaryRow：省级汇总表的一行
type SummaryRow struct {
	Department string `json:"departamento"`
	Hospitals  int    `json:"n_hospitales"`
}

// Summary：省级 → 医院数，保持 Dissolve 的排序
func Summary(ds domain.DepartmentSet) []SummaryRow {
	rows := make([]SummaryRow, 0, len(ds.Departments))
	for _, d := range ds.Departments {
		rows = append(rows, SummaryRow{Department: d.Name, Hospitals: d.HospitalCount})
	}
	return rows
}

// TopDistricts：计数最多的前 n 个区县；计数相同保持源顺序
func TopDistricts(dc DistrictCounts, n int) []domain.District {
	ds := make([]domain.District, len(dc.Districts))
	copy(ds, dc.Districts)
	sort.SliceStable(ds, func(a, b int) bool { return ds[a].HospitalCount > ds[b].HospitalCount })
	if n >= 0 && n < len(ds) {
		ds = ds[:n]
	}
	return ds
}

// EmptyDistricts：没有任何医院的区县，保持源顺序
func EmptyDistricts(dc DistrictCounts) []domain.District {
	var out []domain.District
	for _, d := range dc.Districts {
		if d.HospitalCount == 0 {
			out = append(out, d)
		}
	}
	return out
}
