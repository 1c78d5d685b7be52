package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"hospital-access/internal/crs"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：读取 ESRI shapefile（.shp/.dbf/.prj）
// 背景：IGN/INEI 原始发布格式；坐标系只记录在同名 .prj 中，缺失即为 MissingCRSError。
// 约束：仅支持 Point 与 Polygon 类型；Polygon 的多部件按环方向拆分（顺时针为外环，逆时针为包含它的外环的洞）。
func readShapefile(path string) ([]feature, crs.Code, error) {
	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	wkt, err := os.ReadFile(prj)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, crs.Unknown, missingCRS(path, "no .prj sidecar")
		}
		return nil, crs.Unknown, &UnreadableSourceError{Path: prj, Err: err}
	}
	code, err := crs.FromWKT(string(wkt))
	if err != nil {
		return nil, crs.Unknown, missingCRS(path, "%v", err)
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, crs.Unknown, &UnreadableSourceError{Path: path, Err: err}
	}
	defer r.Close()

	fields := r.Fields()
	var feats []feature
	for r.Next() {
		n, s := r.Shape()
		props := make(map[string]string, len(fields))
		for k, f := range fields {
			props[strings.ToUpper(f.String())] = decodeAttr(r.ReadAttribute(n, k))
		}
		feats = append(feats, feature{props: props, geometry: shapeGeometry(s)})
	}
	if err := r.Err(); err != nil {
		return nil, crs.Unknown, &UnreadableSourceError{Path: path, Err: err}
	}
	return feats, code, nil
}

func shapeGeometry(s shp.Shape) orb.Geometry {
	switch v := s.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}
	case *shp.Polygon:
		return polygonParts(v.Parts, v.Points)
	case *shp.PolygonZ:
		return polygonParts(v.Parts, v.Points)
	}
	return nil
}

func polygonParts(parts []int32, pts []shp.Point) orb.Geometry {
	if len(pts) == 0 {
		return nil
	}
	var mp orb.MultiPolygon
	for i := range parts {
		start := int(parts[i])
		end := len(pts)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if start >= end || end > len(pts) {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range pts[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if ring.Orientation() == orb.CW {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		if j := enclosing(mp, ring[0]); j >= 0 {
			mp[j] = append(mp[j], ring)
			continue
		}
		// 不被任何外环包含的逆时针环按独立多边形处理（写出方未遵守 ESRI 环序）
		mp = append(mp, orb.Polygon{ring})
	}
	if len(mp) == 0 {
		return nil
	}
	return mp
}

// enclosing：自后向前查找外环包含 p 的多边形下标，没有返回 -1
func enclosing(mp orb.MultiPolygon, p orb.Point) int {
	for i := len(mp) - 1; i >= 0; i-- {
		if planar.RingContains(mp[i][0], p) {
			return i
		}
	}
	return -1
}
