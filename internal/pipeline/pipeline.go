// 包 pipeline：编排 加载 → 校验 → 区县计数 → 省级溶解 → 邻近分析；各计算步骤经 memo 缓存
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/dataset"
	"hospital-access/internal/domain"
	"hospital-access/internal/logger"
	"hospital-access/internal/memo"
	"hospital-access/internal/metrics"
	"hospital-access/internal/proximity"
	"hospital-access/internal/validate"

	"golang.org/x/sync/errgroup"
)

// 缓存中的函数名，同时作为指标标签
const (
	fnValidate  = "validate"
	fnDistricts = "districts"
	fnDepts     = "departments"
	fnProximity = "proximity"
	fnCoverage  = "coverage"
)

// Pipeline：持有进程级缓存；方法可并发调用
type Pipeline struct {
	cache *memo.Cache
	log   *slog.Logger
}

func New(c *memo.Cache) *Pipeline {
	if c == nil {
		c = memo.New()
	}
	return &Pipeline{cache: c, log: logger.Stage("pipeline")}
}

func (p *Pipeline) Cache() *memo.Cache { return p.cache }

type validated struct {
	set   domain.HospitalSet
	stats validate.Stats
}

// ValidateHospitals：validate.Validate 的缓存版本
func (p *Pipeline) ValidateHospitals(rows []domain.HospitalRow) (domain.HospitalSet, validate.Stats) {
	key := memo.NewKey().HospitalRows(rows).Sum()
	v, _ := memo.GetOrCompute(p.cache, fnValidate, key, func() (validated, error) {
		hs, st := validate.Validate(rows)
		return validated{hs, st}, nil
	})
	return v.set, v.stats
}

// CountDistricts：aggregate.CountByDistrict 的缓存版本
func (p *Pipeline) CountDistricts(hs domain.HospitalSet, ds domain.DistrictSet) (aggregate.DistrictCounts, error) {
	key := memo.NewKey().Hospitals(hs).Districts(ds.CRS, ds.Districts).Sum()
	return memo.GetOrCompute(p.cache, fnDistricts, key, func() (aggregate.DistrictCounts, error) {
		return aggregate.CountByDistrict(hs, ds)
	})
}

// Departments：aggregate.Dissolve 的缓存版本；键包含各区县计数
func (p *Pipeline) Departments(dc aggregate.DistrictCounts) domain.DepartmentSet {
	key := memo.NewKey().Districts(dc.CRS, dc.Districts).Sum()
	v, _ := memo.GetOrCompute(p.cache, fnDepts, key, func() (domain.DepartmentSet, error) {
		return aggregate.Dissolve(dc), nil
	})
	return v
}

func proximityKey(cs domain.CenterSet, hs domain.HospitalSet, region string, radius float64) string {
	return memo.NewKey().Centers(cs).Hospitals(hs).String(region).Float(radius).Sum()
}

// Proximity：proximity.Analyze 的缓存版本；EmptyRegionError 不缓存，原样返回
func (p *Pipeline) Proximity(cs domain.CenterSet, hs domain.HospitalSet, region string, radius float64) (domain.ProximityResult, error) {
	return memo.GetOrCompute(p.cache, fnProximity, proximityKey(cs, hs, region, radius), func() (domain.ProximityResult, error) {
		return proximity.Analyze(cs, hs, region, radius)
	})
}

// Coverage：proximity.Coverage 的缓存版本
func (p *Pipeline) Coverage(cs domain.CenterSet, hs domain.HospitalSet, region string, radius float64) (proximity.CoverageResult, error) {
	return memo.GetOrCompute(p.cache, fnCoverage, proximityKey(cs, hs, region, radius), func() (proximity.CoverageResult, error) {
		return proximity.Coverage(cs, hs, region, radius)
	})
}

// 文档注释：多地区邻近分析
// 背景：各地区只读共享数据集，互不依赖，使用 errgroup 并行；结果按 regions 顺序返回。
// 约束：空地区记 warn 日志并以占位记录替代；其它错误中止全部地区。
func (p *Pipeline) ProximityAll(ctx context.Context, cs domain.CenterSet, hs domain.HospitalSet, regions []string, radius float64) ([]domain.ProximityResult, error) {
	out := make([]domain.ProximityResult, len(regions))
	g, ctx := errgroup.WithContext(ctx)
	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.Proximity(cs, hs, region, radius)
			var ere *proximity.EmptyRegionError
			switch {
			case errors.As(err, &ere):
				p.log.Warn("proximity_empty_region", "region", region, "centers", ere.Centers, "hospitals", ere.Hospitals)
				metrics.EmptyRegionsTotal.WithLabelValues(region).Inc()
				res = proximity.Placeholder(region, radius)
			case err != nil:
				return fmt.Errorf("proximity %s: %w", region, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Inputs：一次运行的全部输入
type Inputs struct {
	HospitalsPath string
	DistrictsPath string
	CentersPath   string
	Regions       []string
	RadiusM       float64
}

// Result：一次运行的全部产物输入，供 export/store/api 使用
type Result struct {
	Hospitals   domain.HospitalSet
	Validation  validate.Stats
	Centers     domain.CenterSet
	Districts   aggregate.DistrictCounts
	Departments domain.DepartmentSet
	Proximity   []domain.ProximityResult
	Coverage    []proximity.CoverageResult
	RadiusM     float64
}

func observe(stage string, start time.Time) {
	metrics.StageDurationMs.WithLabelValues(stage).Observe(float64(time.Since(start).Milliseconds()))
}

// Run：完整流水线；任一数据集加载失败即中止
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	if in.RadiusM <= 0 {
		in.RadiusM = proximity.DefaultRadius
	}
	var (
		table     *dataset.HospitalTable
		districts domain.DistrictSet
		centers   domain.CenterSet
	)
	start := time.Now()
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		table, err = dataset.LoadHospitals(in.HospitalsPath)
		return err
	})
	g.Go(func() (err error) {
		districts, err = dataset.LoadDistricts(in.DistrictsPath)
		return err
	})
	g.Go(func() (err error) {
		centers, err = dataset.LoadPopulationCenters(in.CentersPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	observe("load", start)
	metrics.RecordsLoadedTotal.WithLabelValues("hospitals").Add(float64(len(table.Rows)))
	metrics.RecordsLoadedTotal.WithLabelValues("districts").Add(float64(len(districts.Districts)))
	metrics.RecordsLoadedTotal.WithLabelValues("population_centers").Add(float64(len(centers.Centers)))

	res := &Result{Centers: centers, RadiusM: in.RadiusM}

	start = time.Now()
	res.Hospitals, res.Validation = p.ValidateHospitals(table.Rows)
	observe("validate", start)
	st := res.Validation
	metrics.ValidatorDroppedTotal.WithLabelValues("status").Add(float64(st.DroppedStatus))
	metrics.ValidatorDroppedTotal.WithLabelValues("unparsable").Add(float64(st.DroppedUnparsable))
	metrics.ValidatorDroppedTotal.WithLabelValues("envelope").Add(float64(st.DroppedEnvelope))
	p.log.Info("validate_done", "total", st.Total, "kept", st.Kept,
		"dropped_status", st.DroppedStatus, "dropped_unparsable", st.DroppedUnparsable, "dropped_envelope", st.DroppedEnvelope)

	start = time.Now()
	dc, err := p.CountDistricts(res.Hospitals, districts)
	if err != nil {
		return nil, fmt.Errorf("count districts: %w", err)
	}
	observe("districts", start)
	res.Districts = dc
	metrics.HospitalsMatchedTotal.Add(float64(dc.Matched))
	metrics.HospitalsUnmatchedTotal.Add(float64(dc.Unmatched))
	p.log.Info("districts_done", "districts", len(dc.Districts), "matched", dc.Matched, "unmatched", dc.Unmatched)

	start = time.Now()
	res.Departments = p.Departments(dc)
	observe("departments", start)
	p.log.Info("departments_done", "departments", len(res.Departments.Departments))

	start = time.Now()
	if res.Proximity, err = p.ProximityAll(ctx, centers, res.Hospitals, in.Regions, in.RadiusM); err != nil {
		return nil, err
	}
	for _, r := range in.Regions {
		cov, err := p.Coverage(centers, res.Hospitals, r, in.RadiusM)
		var ere *proximity.EmptyRegionError
		if errors.As(err, &ere) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("coverage %s: %w", r, err)
		}
		res.Coverage = append(res.Coverage, cov)
	}
	observe("proximity", start)
	for _, pr := range res.Proximity {
		p.log.Info("proximity_done", "region", pr.Region, "placeholder", pr.Placeholder,
			"isolated", pr.Isolated.Center.Name, "isolated_count", pr.Isolated.Count,
			"concentrated", pr.Concentrated.Center.Name, "concentrated_count", pr.Concentrated.Count)
	}
	return res, nil
}
