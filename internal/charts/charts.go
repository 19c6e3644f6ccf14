package charts

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/service"
)

// ChartGenerator рисует графики отчета в PNG
type ChartGenerator struct {
	symbol string
}

// NewChartGenerator создает генератор, подписывающий суммы символом валюты
func NewChartGenerator(symbol string) *ChartGenerator {
	return &ChartGenerator{symbol: symbol}
}

// ReportCharts хранит изображения одного отчета. nil означает,
// что рисовать было нечего.
type ReportCharts struct {
	Categories []byte
	Totals     []byte
	Balance    []byte
}

// Count возвращает количество готовых изображений
func (c ReportCharts) Count() int {
	n := 0
	for _, img := range [][]byte{c.Categories, c.Totals, c.Balance} {
		if img != nil {
			n++
		}
	}
	return n
}

// RenderReport рисует все графики отчета параллельно
func (g *ChartGenerator) RenderReport(ctx context.Context, report service.Report) (ReportCharts, error) {
	var out ReportCharts
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		img, err := g.GenerateCategoryPieChart(report.Breakdown)
		out.Categories = img
		return err
	})
	eg.Go(func() error {
		img, err := g.GenerateTotalsChart(report.Totals)
		out.Totals = img
		return err
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := g.GenerateBalanceChart(report.Recent)
		out.Balance = img
		return err
	})

	if err := eg.Wait(); err != nil {
		return ReportCharts{}, err
	}
	return out, nil
}

// GenerateCategoryPieChart рисует расходы по категориям
// цветами палитры категорий.
func (g *ChartGenerator) GenerateCategoryPieChart(breakdown []service.CategoryAggregate) ([]byte, error) {
	if len(breakdown) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(breakdown))
	for _, cat := range breakdown {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", cat.Name, service.FormatAmount(g.symbol, cat.Total), cat.Share),
			Value: cat.Total.InexactFloat64(),
			Style: chart.Style{
				FillColor:   hexColor(cat.Color),
				StrokeColor: chart.ColorWhite,
				FontSize:    12,
				FontColor:   chart.ColorWhite,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Spending by Category",
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// GenerateTotalsChart сравнивает доходы, расходы и баланс
func (g *ChartGenerator) GenerateTotalsChart(totals service.Totals) ([]byte, error) {
	if totals.Income.IsZero() && totals.Expenses.IsZero() {
		return nil, nil
	}

	balanceColor := hexColor(service.Palette[1])
	if totals.Balance.IsNegative() {
		balanceColor = hexColor(service.Palette[3])
	}
	bar := func(label string, amount float64, color drawing.Color) chart.Value {
		return chart.Value{
			Label: label,
			Value: amount,
			Style: chart.Style{StrokeColor: color, FillColor: color},
		}
	}

	graph := chart.BarChart{
		Title:    "Totals",
		Width:    800,
		Height:   500,
		BarWidth: 120,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: g.amountFormatter,
			Style:          chart.Style{FontSize: 12, FontColor: chart.ColorBlack},
		},
		Bars: []chart.Value{
			bar("Income", totals.Income.InexactFloat64(), hexColor(service.Palette[1])),
			bar("Expenses", totals.Expenses.InexactFloat64(), hexColor(service.Palette[3])),
			bar("Balance", totals.Balance.Abs().InexactFloat64(), balanceColor),
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render totals chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// GenerateBalanceChart строит баланс по дням. Для линии нужны
// хотя бы две разные даты.
func (g *ChartGenerator) GenerateBalanceChart(txns []model.Transaction) ([]byte, error) {
	xValues, balances := RunningBalance(txns)
	if len(xValues) < 2 {
		return nil, nil
	}

	graph := chart.Chart{
		Title:  "Balance",
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02.01"),
			Style:          chart.Style{FontSize: 12, FontColor: chart.ColorBlack},
		},
		YAxis: chart.YAxis{
			ValueFormatter: g.amountFormatter,
			Style:          chart.Style{FontSize: 12, FontColor: chart.ColorBlack},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: xValues,
				YValues: balances,
				Style: chart.Style{
					StrokeColor: hexColor(service.Palette[0]),
					StrokeWidth: 3,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render balance chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// RunningBalance возвращает по точке на каждую дату по возрастанию,
// в каждой баланс после всех записей этого дня.
func RunningBalance(txns []model.Transaction) ([]time.Time, []float64) {
	sorted := service.SortByDateDesc(txns)
	var (
		dates    []time.Time
		balances []float64
		running  float64
	)
	for i := len(sorted) - 1; i >= 0; i-- {
		t := sorted[i]
		if t.Date.IsZero() {
			continue
		}
		switch t.Type {
		case model.Income:
			running += t.Amount.InexactFloat64()
		case model.Expense:
			running -= t.Amount.InexactFloat64()
		default:
			continue
		}
		if n := len(dates); n > 0 && dates[n-1].Equal(t.Date.Time) {
			balances[n-1] = running
			continue
		}
		dates = append(dates, t.Date.Time)
		balances = append(balances, running)
	}
	return dates, balances
}

func (g *ChartGenerator) amountFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%s%.0f", g.symbol, f)
	}
	return ""
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
