package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/chart"
	"hospital-access/internal/logger"
	"hospital-access/internal/pipeline"
)

// 产物文件名
const (
	SummaryCSVFile   = "tabla_resumen_departamentos.csv"
	SummaryXLSXFile  = "tabla_resumen_departamentos.xlsx"
	DistrictsFile    = "distritos.geojson"
	TopDistrictsFile = "top_distritos.csv"
	EmptyFile        = "distritos_sin_hospital.csv"
	MarkersFile      = "hospitales.geojson"
	ClustersFile     = "hospitales_clusters.json"
	ProximityFile    = "proximidad.json"
	CoverageFile     = "cobertura.json"
	DepartmentsFile  = "departamentos.json"
)

// Artifacts：一次运行的全部序列化产物；名称 → 内容
// 约束：构建后只读；API 与文件写出共享同一份字节
type Artifacts struct {
	files map[string][]byte
	order []string
}

func (a *Artifacts) add(name string, b []byte) {
	if _, ok := a.files[name]; !ok {
		a.order = append(a.order, name)
	}
	a.files[name] = b
}

// Get：按文件名取产物
func (a *Artifacts) Get(name string) ([]byte, bool) {
	b, ok := a.files[name]
	return b, ok
}

// Names：按构建顺序的文件名
func (a *Artifacts) Names() []string { return append([]string(nil), a.order...) }

// 文档注释：由流水线结果构建全部产物
// 约束：top 为前 N 区县数量；图表仅在存在省级记录时生成。
func Build(res *pipeline.Result, top int) (*Artifacts, error) {
	a := &Artifacts{files: make(map[string][]byte)}
	summary := aggregate.Summary(res.Departments)

	b, err := SummaryCSV(summary)
	if err != nil {
		return nil, fmt.Errorf("summary csv: %w", err)
	}
	a.add(SummaryCSVFile, b)
	if b, err = SummaryXLSX(summary); err != nil {
		return nil, fmt.Errorf("summary xlsx: %w", err)
	}
	a.add(SummaryXLSXFile, b)
	if b, err = json.Marshal(summary); err != nil {
		return nil, err
	}
	a.add(DepartmentsFile, b)

	fc, err := DistrictsGeoJSON(res.Districts)
	if err != nil {
		return nil, fmt.Errorf("districts geojson: %w", err)
	}
	if b, err = fc.MarshalJSON(); err != nil {
		return nil, err
	}
	a.add(DistrictsFile, b)
	if b, err = DistrictsCSV(aggregate.TopDistricts(res.Districts, top)); err != nil {
		return nil, err
	}
	a.add(TopDistrictsFile, b)
	if b, err = DistrictsCSV(aggregate.EmptyDistricts(res.Districts)); err != nil {
		return nil, err
	}
	a.add(EmptyFile, b)

	if b, err = HospitalMarkers(res.Hospitals).MarshalJSON(); err != nil {
		return nil, err
	}
	a.add(MarkersFile, b)
	if b, err = json.Marshal(Clusters(res.Hospitals, MarkerClusterPrecision)); err != nil {
		return nil, err
	}
	a.add(ClustersFile, b)

	if b, err = json.MarshalIndent(ProximityRecords(res.Proximity), "", "  "); err != nil {
		return nil, err
	}
	a.add(ProximityFile, b)
	if b, err = json.Marshal(CoverageRecords(res.Coverage)); err != nil {
		return nil, err
	}
	a.add(CoverageFile, b)

	if len(summary) > 0 {
		if b, err = chart.PNG(summary); err != nil {
			return nil, fmt.Errorf("chart: %w", err)
		}
		a.add(chart.FileName, b)
	}
	return a, nil
}

// WriteDir：把全部产物写入目录（不存在时创建）
func (a *Artifacts) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range a.order {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, a.files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	logger.L().Info("export_ok", "dir", dir, "files", len(a.order))
	return nil
}
