// 包 geo：平面几何判定与空间索引（点在多边形内、KD-Tree 半径计数、geohash）
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：点在多边形内（within，边界不计入）
// 背景：区县计数需要在行政边界处可复现；射线法在边界上结果取决于浮点误差，故先做显式边界判定。
// 约束：点落在任一环（外环或洞）的边或顶点上视为不在内；洞内视为不在内；多面任一部分命中即命中。
func Within(pt orb.Point, mp orb.MultiPolygon) bool {
	for _, poly := range mp {
		if polygonWithin(pt, poly) {
			return true
		}
	}
	return false
}

func polygonWithin(pt orb.Point, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	if !poly.Bound().Contains(pt) {
		return false
	}
	for _, ring := range poly {
		if OnRing(pt, ring) {
			return false
		}
	}
	return planar.PolygonContains(poly, pt)
}

// OnRing：点是否落在环的某条边上
func OnRing(pt orb.Point, ring orb.Ring) bool {
	n := len(ring)
	if n < 2 {
		return false
	}
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if onSegment(pt, a, b) {
			return true
		}
	}
	return false
}

// 共线（叉积在相对误差内为零）且位于线段包围盒内
func onSegment(p, a, b orb.Point) bool {
	cross := (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
	scale := math.Max(math.Abs(b.X()-a.X())+math.Abs(b.Y()-a.Y()), 1)
	if math.Abs(cross) > 1e-12*scale*scale {
		return false
	}
	return p.X() >= math.Min(a.X(), b.X()) && p.X() <= math.Max(a.X(), b.X()) &&
		p.Y() >= math.Min(a.Y(), b.Y()) && p.Y() <= math.Max(a.Y(), b.Y())
}

// BoundOf：多面包围盒，空几何返回零值
func BoundOf(mp orb.MultiPolygon) orb.Bound {
	if len(mp) == 0 {
		return orb.Bound{}
	}
	return mp.Bound()
}
