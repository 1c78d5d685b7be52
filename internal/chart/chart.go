// 包 chart：省级医院数量横向条形图
package chart

import (
	"bytes"
	"errors"
	"image/color"

	"hospital-access/internal/aggregate"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const FileName = "grafico_barras_departamentos.png"

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// DepartmentBars：数量最多的省级在最上方
func DepartmentBars(rows []aggregate.SummaryRow) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, errors.New("no departments to plot")
	}
	n := len(rows)
	values := make(plotter.Values, n)
	labels := make([]string, n)
	// NominalY 的第 0 项在底部，倒序填充
	for i, r := range rows {
		values[n-1-i] = float64(r.Hospitals)
		labels[n-1-i] = r.Department
	}

	p := plot.New()
	p.Title.Text = "Hospitales operativos por departamento"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "N° de hospitales"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(labels...)
	p.Add(plotter.NewGrid())
	return p, nil
}

func height(n int) vg.Length {
	return vg.Length(n)*vg.Points(18) + 2*vg.Inch
}

// PNG：渲染为 PNG 字节
func PNG(rows []aggregate.SummaryRow) ([]byte, error) {
	p, err := DepartmentBars(rows)
	if err != nil {
		return nil, err
	}
	wt, err := p.WriterTo(9*vg.Inch, height(len(rows)), "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
