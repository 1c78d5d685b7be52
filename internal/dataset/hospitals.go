// 包 dataset：读取医院登记表、区县边界与人口中心三类源数据，构建带 CRS 标记的内存表示
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"hospital-access/internal/domain"
	"hospital-access/internal/logger"
)

// HospitalTable：CSV 原始行与实际使用的编码
type HospitalTable struct {
	Path     string
	Encoding string
	Rows     []domain.HospitalRow
}

// IPRESS 表头（带别名）；key 为内部字段名
var hospitalColumns = map[string][]string{
	"status":      {"Situación", "SITUACION", "Situacion"},
	"easting":     {"ESTE", "Este", "LONGITUD"},
	"northing":    {"NORTE", "Norte", "LATITUD"},
	"name":        {"Nombre del establecimiento", "NOMBRE DEL ESTABLECIMIENTO", "Nombre"},
	"category":    {"Categoria", "Categoría", "CATEGORIA"},
	"institution": {"Institución", "Institucion", "INSTITUCION"},
	"department":  {"Departamento", "DEPARTAMENTO"},
}

var requiredHospitalColumns = []string{"status", "easting", "northing", "department"}

// 文档注释：读取医院登记 CSV
// 背景：先按 UTF-8 解码，失败回退 latin1；分隔符在逗号与分号之间按表头自动识别。
// 返回：原始字符串行（不做数值转换，交由坐标校验器处理）；无法解析或缺少必需列时返回 UnreadableSourceError。
func LoadHospitals(path string) (*HospitalTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnreadableSourceError{Path: path, Err: err}
	}
	text, enc, err := decodeText(b)
	if err != nil {
		return nil, &UnreadableSourceError{Path: path, Err: err}
	}
	rows, err := parseHospitalCSV(text)
	if err != nil {
		return nil, &UnreadableSourceError{Path: path, Err: fmt.Errorf("%s: %w", enc, err)}
	}
	logger.L().Info("dataset_load_ok", "kind", "hospitals", "path", path, "encoding", enc, "rows", len(rows))
	return &HospitalTable{Path: path, Encoding: enc, Rows: rows}, nil
}

func detectDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func parseHospitalCSV(text string) ([]domain.HospitalRow, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := indexColumns(header)
	for _, k := range requiredHospitalColumns {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("missing column %q", hospitalColumns[k][0])
		}
	}

	var rows []domain.HospitalRow
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		get := func(k string) string {
			i, ok := idx[k]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, domain.HospitalRow{
			Name:        get("name"),
			Category:    get("category"),
			Institution: get("institution"),
			Department:  get("department"),
			Status:      get("status"),
			Easting:     get("easting"),
			Northing:    get("northing"),
		})
	}
	return rows, nil
}

func indexColumns(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	idx := make(map[string]int, len(hospitalColumns))
	for k, aliases := range hospitalColumns {
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				idx[k] = i
				break
			}
		}
	}
	return idx
}
