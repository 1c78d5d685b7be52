// 包 crs：坐标参考系标识与识别，仅覆盖本项目需要的地理坐标（EPSG:4326）与南/北半球 UTM 分带
package crs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Code：EPSG 编码；0 表示未知
type Code int

const (
	Unknown Code = 0
	// WGS84 地理坐标（度）
	WGS84 Code = 4326
	// UTM18S 秘鲁境内距离/缓冲区计算使用的平面坐标系（米）
	UTM18S Code = 32718
)

func (c Code) String() string {
	if c == Unknown {
		return "unknown"
	}
	return "EPSG:" + strconv.Itoa(int(c))
}

// Geographic：是否为经纬度坐标系
func (c Code) Geographic() bool { return c == WGS84 }

// UTMZone：返回 UTM 分带号与是否南半球；非 UTM 编码返回 ok=false
func (c Code) UTMZone() (zone int, south bool, ok bool) {
	n := int(c)
	switch {
	case n > 32600 && n <= 32660:
		return n - 32600, false, true
	case n > 32700 && n <= 32760:
		return n - 32700, true, true
	}
	return 0, false, false
}

// Supported：能否参与重投影
func (c Code) Supported() bool {
	if c.Geographic() {
		return true
	}
	_, _, ok := c.UTMZone()
	return ok
}

var (
	reEPSG     = regexp.MustCompile(`(?i)EPSG:(?:[\d.]*:)?(\d{4,5})$`)
	reCRS84    = regexp.MustCompile(`(?i)CRS:?84$`)
	reUTMZone  = regexp.MustCompile(`(?i)UTM[_ ]zone[_ ](\d{1,2})([NS])`)
	reAuthLast = regexp.MustCompile(`AUTHORITY\["EPSG",\s*"?(\d{4,5})"?\]\s*\]\s*$`)
)

// Parse：解析 GeoJSON crs 成员中的名称
// 支持 "EPSG:4326"、"urn:ogc:def:crs:EPSG::32718"、"urn:ogc:def:crs:OGC:1.3:CRS84"
func Parse(name string) (Code, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return Unknown, fmt.Errorf("empty crs name")
	}
	if reCRS84.MatchString(s) {
		return WGS84, nil
	}
	m := reEPSG.FindStringSubmatch(s)
	if m == nil {
		return Unknown, fmt.Errorf("unrecognised crs name %q", name)
	}
	n, _ := strconv.Atoi(m[1])
	c := Code(n)
	if !c.Supported() {
		return Unknown, fmt.Errorf("unsupported crs %s", c)
	}
	return c, nil
}

// 文档注释：从 ESRI .prj（WKT1）识别坐标系
// 背景：IGN/INEI 发布的 shapefile 多以 ESRI WKT 描述坐标系，通常不带 AUTHORITY 节点，需按名称识别。
// 约束：仅识别 WGS84/SIRGAS 地理坐标与 WGS84 UTM 分带；其它基准返回错误而非猜测。
func FromWKT(wkt string) (Code, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return Unknown, fmt.Errorf("empty wkt")
	}
	if m := reAuthLast.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if c := Code(n); c.Supported() {
			return c, nil
		}
	}
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "PROJCS") {
		m := reUTMZone.FindStringSubmatch(s)
		if m == nil || !strings.Contains(upper, "WGS") {
			return Unknown, fmt.Errorf("unsupported projected crs")
		}
		zone, _ := strconv.Atoi(m[1])
		if zone < 1 || zone > 60 {
			return Unknown, fmt.Errorf("bad utm zone %d", zone)
		}
		if strings.EqualFold(m[2], "S") {
			return Code(32700 + zone), nil
		}
		return Code(32600 + zone), nil
	}
	if strings.HasPrefix(upper, "GEOGCS") {
		// SIRGAS 2000 与 WGS84 在本项目精度下视为一致
		if strings.Contains(upper, "WGS_1984") || strings.Contains(upper, "WGS 84") ||
			strings.Contains(upper, "WGS84") || strings.Contains(upper, "SIRGAS") {
			return WGS84, nil
		}
		return Unknown, fmt.Errorf("unsupported geographic datum")
	}
	return Unknown, fmt.Errorf("unrecognised wkt")
}
