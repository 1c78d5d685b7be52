// 包 domain：医院覆盖分析的只读实体定义；各阶段之间只传递这些强类型结构
package domain

import (
	"hospital-access/internal/crs"

	"github.com/paulmach/orb"
)

// OperatingStatus 是 IPRESS 登记中"在运营"的原文取值，比较时区分大小写与重音
const OperatingStatus = "EN FUNCIONAMIENTO"

type Status int

const (
	StatusUnknown Status = iota
	StatusOperating
	StatusNotOperating
)

func (s Status) String() string {
	switch s {
	case StatusOperating:
		return "operating"
	case StatusNotOperating:
		return "not-operating"
	}
	return "unknown"
}

// ParseStatus：原文精确匹配，不做模糊归一
func ParseStatus(raw string) Status {
	switch raw {
	case OperatingStatus:
		return StatusOperating
	case "":
		return StatusUnknown
	}
	return StatusNotOperating
}

// HospitalRow：CSV 原始行，字段保持字符串形态直至校验
type HospitalRow struct {
	Name        string
	Category    string
	Institution string
	Department  string
	Status      string
	Easting     string // ESTE，语义为经度
	Northing    string // NORTE，语义为纬度
}

// Hospital：通过坐标校验的医院，Location 为 (lon, lat)
type Hospital struct {
	Name        string
	Category    string
	Institution string
	Department  string
	Status      Status
	Lat         float64
	Lon         float64
	Location    orb.Point
}

// HospitalSet：校验后的医院集合，CRS 固定为 EPSG:4326
type HospitalSet struct {
	CRS       crs.Code
	Hospitals []Hospital
}

type PopulationCenter struct {
	Name       string
	Department string
	Location   orb.Point
}

type CenterSet struct {
	CRS     crs.Code
	Centers []PopulationCenter
}

// District：Geometry 统一为 MultiPolygon；HospitalCount 由区县聚合填充
type District struct {
	ID            string
	Department    string
	Geometry      orb.MultiPolygon
	Bound         orb.Bound
	HospitalCount int
}

type DistrictSet struct {
	CRS       crs.Code
	Districts []District
}

// Department：由同名区县溶解而成
type Department struct {
	Name          string
	Geometry      orb.MultiPolygon // 成员区县多边形的集合，保留共享边，非拓扑并集
	Bound         orb.Bound
	Districts     int
	HospitalCount int
}

type DepartmentSet struct {
	CRS         crs.Code
	Departments []Department
}

// CenterCount：人口中心及其半径内医院数；LonLat 为 EPSG:4326 位置
type CenterCount struct {
	Center PopulationCenter
	LonLat orb.Point
	Count  int
}

// ProximityResult：某地区的最孤立/最集中人口中心
// Placeholder 为 true 表示地区无数据，两个中心均为空值
type ProximityResult struct {
	Region       string
	RadiusM      float64
	Evaluated    int
	Isolated     CenterCount
	Concentrated CenterCount
	Placeholder  bool
}
