// 包 validate：医院登记行的坐标校验与运营状态过滤
package validate

import (
	"math"
	"strconv"
	"strings"

	"hospital-access/internal/crs"
	"hospital-access/internal/domain"

	"github.com/paulmach/orb"
)

// 秘鲁国土包络（含边界）
const (
	MinLat = -18.5
	MaxLat = 0.0
	MinLon = -81.5
	MaxLon = -68.5
)

// Stats：各丢弃原因的汇总计数；Total = Kept + 三类丢弃之和
type Stats struct {
	Total             int
	Kept              int
	DroppedStatus     int
	DroppedUnparsable int
	DroppedEnvelope   int
}

// InEnvelope：闭区间判定
func InEnvelope(lat, lon float64) bool {
	return lat >= MinLat && lat <= MaxLat && lon >= MinLon && lon <= MaxLon
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// 文档注释：过滤并校验医院登记行
// 背景：状态须与 "EN FUNCIONAMIENTO" 原文完全一致；NORTE 为纬度，ESTE 为经度。
// 约束：不写逐行日志；不修改输入；对已校验结果再次校验得到相同集合。
func Validate(rows []domain.HospitalRow) (domain.HospitalSet, Stats) {
	out := domain.HospitalSet{CRS: crs.WGS84}
	st := Stats{Total: len(rows)}
	for _, r := range rows {
		status := domain.ParseStatus(r.Status)
		if status != domain.StatusOperating {
			st.DroppedStatus++
			continue
		}
		lat, okLat := parseCoord(r.Northing)
		lon, okLon := parseCoord(r.Easting)
		if !okLat || !okLon {
			st.DroppedUnparsable++
			continue
		}
		if !InEnvelope(lat, lon) {
			st.DroppedEnvelope++
			continue
		}
		out.Hospitals = append(out.Hospitals, domain.Hospital{
			Name:        r.Name,
			Category:    r.Category,
			Institution: r.Institution,
			Department:  r.Department,
			Status:      status,
			Lat:         lat,
			Lon:         lon,
			Location:    orb.Point{lon, lat},
		})
	}
	st.Kept = len(out.Hospitals)
	return out, st
}

// Rows：把已校验医院还原为登记行，用于幂等性检查与重新导出
func Rows(hs domain.HospitalSet) []domain.HospitalRow {
	rows := make([]domain.HospitalRow, 0, len(hs.Hospitals))
	for _, h := range hs.Hospitals {
		rows = append(rows, domain.HospitalRow{
			Name:        h.Name,
			Category:    h.Category,
			Institution: h.Institution,
			Department:  h.Department,
			Status:      domain.OperatingStatus,
			Easting:     strconv.FormatFloat(h.Lon, 'f', -1, 64),
			Northing:    strconv.FormatFloat(h.Lat, 'f', -1, 64),
		})
	}
	return rows
}
