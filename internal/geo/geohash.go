package geo

// 文档注释：轻量 geohash 编码（base32）
// 背景：全国医院点位按 geohash 前缀聚簇，替代前端 MarkerCluster 的首屏计算；也用作缓存键片段。
// 约束：精度 4 约 39km×19.5km，精度 5 约 4.9km；只编码不解码。
var base32 = []byte("0123456789bcdefghjkmnpqrstuvwxyz")

func EncodeGeohash(lat, lon float64, precision int) string {
	if precision <= 0 {
		return ""
	}
	latInt := [2]float64{-90, 90}
	lonInt := [2]float64{-180, 180}
	bits := [5]int{16, 8, 4, 2, 1}
	bit := 0
	ch := 0
	even := true
	out := make([]byte, 0, precision)
	for len(out) < precision {
		if even {
			mid := (lonInt[0] + lonInt[1]) / 2
			if lon >= mid {
				ch |= bits[bit]
				lonInt[0] = mid
			} else {
				lonInt[1] = mid
			}
		} else {
			mid := (latInt[0] + latInt[1]) / 2
			if lat >= mid {
				ch |= bits[bit]
				latInt[0] = mid
			} else {
				latInt[1] = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			out = append(out, base32[ch])
			bit = 0
			ch = 0
		}
	}
	return string(out)
}
