// 包 export：把流水线结果序列化为展示层使用的产物（CSV/XLSX/GeoJSON/JSON）
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/domain"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Departamentos"

// SummaryCSV：DEPARTAMENTO,N_HOSPITALES，按计数降序
func SummaryCSV(rows []aggregate.SummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"DEPARTAMENTO", "N_HOSPITALES"})
	for _, r := range rows {
		_ = w.Write([]string{r.Department, strconv.Itoa(r.Hospitals)})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// SummaryXLSX：与 SummaryCSV 相同内容的工作簿
func SummaryXLSX(rows []aggregate.SummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for i, h := range []string{"DEPARTAMENTO", "N_HOSPITALES"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return nil, err
		}
	}
	for i, r := range rows {
		row := i + 2
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), r.Department); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r.Hospitals); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DistrictsCSV：IDDIST,DEPARTAMEN,N_HOSPITALES；用于前 N 名与无医院区县列表
func DistrictsCSV(ds []domain.District) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"IDDIST", "DEPARTAMEN", "N_HOSPITALES"})
	for _, d := range ds {
		_ = w.Write([]string{d.ID, d.Department, strconv.Itoa(d.HospitalCount)})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
