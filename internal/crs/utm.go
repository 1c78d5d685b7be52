package crs

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

// 文档注释：WGS84 横轴墨卡托（UTM）正反算
// 背景：缓冲区与距离必须在米制平面坐标下计算；orb/project 仅提供球面墨卡托，UTM 换算交给 wroge/wgs84。
// 约束：zone 为 1..60；south 对应南半球 10000 km 假北距。
func utmSystem(zone int, south bool) wgs84.CoordinateReferenceSystem {
	return wgs84.UTM(float64(zone), !south)
}

func system(c Code) wgs84.CoordinateReferenceSystem {
	if z, s, ok := c.UTMZone(); ok {
		return utmSystem(z, s)
	}
	return wgs84.LonLat()
}

func pointFunc(f func(a, b, c float64) (float64, float64, float64)) orb.Projection {
	return func(p orb.Point) orb.Point {
		x, y, _ := f(p[0], p[1], 0)
		return orb.Point{x, y}
	}
}

// ToUTM：经纬度（度）→ 指定分带的东距/北距（米）
func ToUTM(p orb.Point, zone int, south bool) orb.Point {
	return pointFunc(wgs84.Transform(wgs84.LonLat(), utmSystem(zone, south)))(p)
}

// FromUTM：东距/北距（米）→ 经纬度（度）
func FromUTM(p orb.Point, zone int, south bool) orb.Point {
	return pointFunc(wgs84.Transform(utmSystem(zone, south), wgs84.LonLat()))(p)
}

// Projection：返回 from → to 的点投影函数
func Projection(from, to Code) (orb.Projection, error) {
	if from == to {
		return func(p orb.Point) orb.Point { return p }, nil
	}
	if !from.Supported() {
		return nil, fmt.Errorf("unsupported source crs %s", from)
	}
	if !to.Supported() {
		return nil, fmt.Errorf("unsupported target crs %s", to)
	}
	return pointFunc(wgs84.Transform(system(from), system(to))), nil
}

// Transform：重投影几何，返回新对象，不修改输入
// 约束：仅支持 Point/MultiPoint/Ring/Polygon/MultiPolygon，其它类型返回错误
func Transform(g orb.Geometry, from, to Code) (orb.Geometry, error) {
	proj, err := Projection(from, to)
	if err != nil {
		return nil, err
	}
	switch v := g.(type) {
	case orb.Point:
		return proj(v), nil
	case orb.MultiPoint:
		return orb.MultiPoint(projectPoints(v, proj)), nil
	case orb.Ring:
		return projectRing(v, proj), nil
	case orb.Polygon:
		return projectPolygon(v, proj), nil
	case orb.MultiPolygon:
		return projectMulti(v, proj), nil
	}
	return nil, fmt.Errorf("unsupported geometry %s", g.GeoJSONType())
}

// MultiPolygon：Transform 的类型化版本
func MultiPolygon(mp orb.MultiPolygon, from, to Code) (orb.MultiPolygon, error) {
	proj, err := Projection(from, to)
	if err != nil {
		return nil, err
	}
	return projectMulti(mp, proj), nil
}

// Points：批量投影点
func Points(pts []orb.Point, from, to Code) ([]orb.Point, error) {
	proj, err := Projection(from, to)
	if err != nil {
		return nil, err
	}
	return projectPoints(pts, proj), nil
}

func projectPoints(pts []orb.Point, proj orb.Projection) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = proj(p)
	}
	return out
}

func projectRing(r orb.Ring, proj orb.Projection) orb.Ring {
	return orb.Ring(projectPoints(r, proj))
}

func projectPolygon(poly orb.Polygon, proj orb.Projection) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, r := range poly {
		out[i] = projectRing(r, proj)
	}
	return out
}

func projectMulti(mp orb.MultiPolygon, proj orb.Projection) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(mp))
	for i, p := range mp {
		out[i] = projectPolygon(p, proj)
	}
	return out
}
