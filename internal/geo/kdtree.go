package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// 文档注释：二维 KD-Tree（平面米制坐标）
// 背景：人口中心逐个统计半径内医院数，线性扫描为 O(N·M)；以中位数分割构建后做半径范围计数。
// 约束：输入点须为投影坐标（米），不可用于经纬度；构建时复制输入，不修改调用方切片。
type kdNode struct {
	p  orb.Point
	ax int // 0:x,1:y
	l  *kdNode
	r  *kdNode
}

type KDTree struct {
	root *kdNode
	size int
}

func NewKDTree(pts []orb.Point) *KDTree {
	cp := append([]orb.Point(nil), pts...)
	return &KDTree{root: buildKD(cp, 0), size: len(cp)}
}

func (t *KDTree) Len() int { return t.size }

func buildKD(ps []orb.Point, depth int) *kdNode {
	if len(ps) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(ps) / 2
	selectNth(ps, mid, ax)
	node := &kdNode{p: ps[mid], ax: ax}
	node.l = buildKD(ps[:mid], depth+1)
	node.r = buildKD(ps[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []orb.Point, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []orb.Point, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j][ax] < pv[ax] {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// CountWithin：到 c 的欧氏距离 <= radius 的点数（闭圆盘）
func (t *KDTree) CountWithin(c orb.Point, radius float64) int {
	if t == nil || t.root == nil || radius < 0 {
		return 0
	}
	r2 := radius * radius
	n := 0
	var dfs func(nd *kdNode)
	dfs = func(nd *kdNode) {
		if nd == nil {
			return
		}
		dx := nd.p[0] - c[0]
		dy := nd.p[1] - c[1]
		if dx*dx+dy*dy <= r2 {
			n++
		}
		diff := c[nd.ax] - nd.p[nd.ax]
		// 分割平面与查询圆相交时才需要遍历另一侧
		if diff <= radius {
			dfs(nd.l)
		}
		if diff >= -radius {
			dfs(nd.r)
		}
	}
	dfs(t.root)
	return n
}

// Nearest：最近点及距离；空树返回 ok=false
func (t *KDTree) Nearest(c orb.Point) (orb.Point, float64, bool) {
	if t == nil || t.root == nil {
		return orb.Point{}, 0, false
	}
	var best orb.Point
	bestD2 := -1.0
	var dfs func(nd *kdNode)
	dfs = func(nd *kdNode) {
		if nd == nil {
			return
		}
		dx := nd.p[0] - c[0]
		dy := nd.p[1] - c[1]
		d2 := dx*dx + dy*dy
		if bestD2 < 0 || d2 < bestD2 {
			bestD2 = d2
			best = nd.p
		}
		diff := c[nd.ax] - nd.p[nd.ax]
		first, second := nd.l, nd.r
		if diff > 0 {
			first, second = nd.r, nd.l
		}
		dfs(first)
		if diff*diff < bestD2 {
			dfs(second)
		}
	}
	dfs(t.root)
	return best, math.Sqrt(bestD2), true
}
