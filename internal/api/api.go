// 包 api：只读产物服务，供展示层（地图、表格、图表）拉取；路由挂载在 API_BASE 前缀下
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/chart"
	"hospital-access/internal/domain"
	"hospital-access/internal/export"
	"hospital-access/internal/logger"
	"hospital-access/internal/metrics"
	"hospital-access/internal/pipeline"
	"hospital-access/internal/proximity"
	"hospital-access/internal/store"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const redisTTL = 24 * time.Hour

// Server：持有一次运行的结果与序列化产物；rc 与 st 可为 nil
type Server struct {
	res     *pipeline.Result
	art     *export.Artifacts
	p       *pipeline.Pipeline
	rc      *redis.Client
	st      *store.Store
	top     int
	version string
}

func NewServer(p *pipeline.Pipeline, res *pipeline.Result, art *export.Artifacts, top int, rc *redis.Client, st *store.Store) *Server {
	return &Server{res: res, art: art, p: p, rc: rc, st: st, top: top, version: artifactsVersion(art)}
}

// artifactsVersion：产物内容摘要，作为 Redis 键前缀，换数据后旧键自然失效
func artifactsVersion(a *export.Artifacts) string {
	d := xxhash.New()
	for _, n := range a.Names() {
		b, _ := a.Get(n)
		_, _ = d.WriteString(n)
		_, _ = d.Write(b)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

type districtRow struct {
	ID         string `json:"iddist"`
	Department string `json:"departamen"`
	Hospitals  int    `json:"n_hospitales"`
}

func districtRows(ds []domain.District) []districtRow {
	out := make([]districtRow, 0, len(ds))
	for _, d := range ds {
		out = append(out, districtRow{ID: d.ID, Department: d.Department, Hospitals: d.HospitalCount})
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// 文档注释：Redis 读穿缓存
// 背景：多实例部署时大体积 GeoJSON 由 Redis 统一出口；键带产物版本，不需要主动失效。
// 约束：Redis 不可用时退回进程内产物，不影响响应。
func (s *Server) cached(ctx context.Context, name string) ([]byte, bool) {
	key := "hospaccess:" + s.version + ":" + name
	if s.rc != nil {
		if b, err := s.rc.Get(ctx, key).Bytes(); err == nil {
			metrics.RedisHitsTotal.Inc()
			return b, true
		} else if !errors.Is(err, redis.Nil) {
			logger.L().Debug("redis_get_error", "key", key, "err", err)
		}
		metrics.RedisMissesTotal.Inc()
	}
	b, ok := s.art.Get(name)
	if !ok {
		return nil, false
	}
	if s.rc != nil {
		if err := s.rc.Set(ctx, key, b, redisTTL).Err(); err != nil {
			logger.L().Debug("redis_set_error", "key", key, "err", err)
		}
	}
	return b, true
}

func (s *Server) artifact(name, contentType string, viaRedis bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			b  []byte
			ok bool
		)
		if viaRedis {
			b, ok = s.cached(r.Context(), name)
		} else {
			b, ok = s.art.Get(name)
		}
		if !ok {
			writeError(w, http.StatusNotFound, "artifact not available")
			return
		}
		w.Header().Set("content-type", contentType)
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write(b)
	}
}

func (s *Server) radius(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("radius")
	if v == "" {
		return s.res.RadiusM, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !proximity.ValidRadius(f) {
		return 0, errors.New("radius must be a finite positive number")
	}
	return f, nil
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n := s.top
	if v := r.URL.Query().Get("n"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = k
	}
	writeJSON(w, http.StatusOK, districtRows(aggregate.TopDistricts(s.res.Districts, n)))
}

func (s *Server) handleEmpty(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, districtRows(aggregate.EmptyDistricts(s.res.Districts)))
}

// handleProximity：无 region 参数时返回本次运行的全部地区记录
func (s *Server) handleProximity(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.URL.Query().Get("region"))
	if region == "" {
		writeJSON(w, http.StatusOK, export.ProximityRecords(s.res.Proximity))
		return
	}
	radius, err := s.radius(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.p.Proximity(s.res.Centers, s.res.Hospitals, region, radius)
	var ere *proximity.EmptyRegionError
	switch {
	case errors.As(err, &ere):
		res = proximity.Placeholder(region, radius)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, export.ProximityRecords([]domain.ProximityResult{res})[0])
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.URL.Query().Get("region"))
	if region == "" {
		writeError(w, http.StatusBadRequest, "region is required")
		return
	}
	radius, err := s.radius(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cov, err := s.p.Coverage(s.res.Centers, s.res.Hospitals, region, radius)
	var ere *proximity.EmptyRegionError
	switch {
	case errors.As(err, &ere):
		writeError(w, http.StatusNotFound, ere.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, export.CoverageRecords([]proximity.CoverageResult{cov})[0])
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.st == nil {
		writeError(w, http.StatusNotFound, "database sink disabled")
		return
	}
	runs, err := s.st.RecentRuns(r.Context(), 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// instrument：按路由计数与计时
func instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		}()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "read-only")
			return
		}
		h(w, r)
	}
}

// 构建并返回 API 路由：独立 ServeMux，由主入口挂载到 API_BASE 前缀
func (s *Server) Routes() *http.ServeMux {
	const geo = "application/geo+json"
	mux := http.NewServeMux()
	mux.HandleFunc("/departments", instrument("departments", s.artifact(export.DepartmentsFile, "application/json; charset=utf-8", false)))
	mux.HandleFunc("/departments.csv", instrument("departments_csv", s.artifact(export.SummaryCSVFile, "text/csv; charset=utf-8", false)))
	mux.HandleFunc("/departments.xlsx", instrument("departments_xlsx", s.artifact(export.SummaryXLSXFile, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", false)))
	mux.HandleFunc("/districts", instrument("districts", s.artifact(export.DistrictsFile, geo, true)))
	mux.HandleFunc("/districts/top", instrument("districts_top", s.handleTop))
	mux.HandleFunc("/districts/empty", instrument("districts_empty", s.handleEmpty))
	mux.HandleFunc("/hospitals", instrument("hospitals", s.artifact(export.MarkersFile, geo, true)))
	mux.HandleFunc("/hospitals/clusters", instrument("hospitals_clusters", s.artifact(export.ClustersFile, "application/json; charset=utf-8", false)))
	mux.HandleFunc("/proximity", instrument("proximity", s.handleProximity))
	mux.HandleFunc("/coverage", instrument("coverage", s.handleCoverage))
	mux.HandleFunc("/chart", instrument("chart", s.artifact(chart.FileName, "image/png", false)))
	mux.HandleFunc("/runs", instrument("runs", s.handleRuns))
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
