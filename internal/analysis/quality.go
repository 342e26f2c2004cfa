package analysis

// quality.go implements the data quality report: per-column completeness,
// uniqueness, and type consistency, duplicate row groups, and numeric
// outliers. Columns are independent, so they are scanned concurrently.

import (
	"context"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/celled/celled/internal/engine"
)

// outlierZThreshold flags values more than this many standard deviations
// from the column mean.
const outlierZThreshold = 3.0

// outlierIQRFactor widens the interquartile range for the fallback fence.
const outlierIQRFactor = 1.5

// minOutlierSamples is the smallest numeric column the outlier scan
// considers.
const minOutlierSamples = 3

// ColumnReport describes one column's health.
type ColumnReport struct {
	Name            string   `json:"name"`
	Type            DataType `json:"type"`
	Completeness    float64  `json:"completeness"`
	UniqueRatio     float64  `json:"uniqueRatio"`
	TypeConsistency float64  `json:"typeConsistency"`
}

// Outlier flags one numeric cell far outside its column's distribution.
type Outlier struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	Value  string  `json:"value"`
	ZScore float64 `json:"zScore"`
}

// Report is the full quality report for a grid.
type Report struct {
	RowCount        int            `json:"rowCount"`
	ColumnCount     int            `json:"columnCount"`
	Completeness    float64        `json:"completeness"`
	Columns         []ColumnReport `json:"columns"`
	DuplicateGroups [][]int        `json:"duplicateGroups"`
	Outliers        []Outlier      `json:"outliers"`
}

// Analyze builds the quality report. Column scans run concurrently; the
// duplicate pass is a single hash over joined rows.
func Analyze(ctx context.Context, grid engine.Grid) (*Report, error) {
	cols := grid.ColumnCount()
	report := &Report{
		RowCount:    grid.RowCount(),
		ColumnCount: cols,
		Columns:     make([]ColumnReport, cols),
	}

	columnOutliers := make([][]Outlier, cols)
	g, ctx := errgroup.WithContext(ctx)
	for c := 0; c < cols; c++ {
		c := c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values := columnValues(grid, c)
			report.Columns[c] = analyzeColumn(grid.Headers[c], values)
			columnOutliers[c] = findOutliers(values, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, outliers := range columnOutliers {
		report.Outliers = append(report.Outliers, outliers...)
	}
	sort.Slice(report.Outliers, func(i, j int) bool {
		return math.Abs(report.Outliers[i].ZScore) > math.Abs(report.Outliers[j].ZScore)
	})

	report.Completeness = overallCompleteness(report.Columns, grid.RowCount())
	report.DuplicateGroups = duplicateGroups(grid)
	return report, nil
}

func columnValues(grid engine.Grid, col int) []string {
	values := make([]string, grid.RowCount())
	for r, row := range grid.Rows {
		if col < len(row) {
			values[r] = row[col]
		}
	}
	return values
}

func analyzeColumn(name string, values []string) ColumnReport {
	report := ColumnReport{Name: name, Type: DetectColumnType(values)}
	if len(values) == 0 {
		return report
	}

	nonEmpty := 0
	distinct := make(map[string]struct{})
	consistent := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		nonEmpty++
		distinct[v] = struct{}{}
		if DetectValueType(v) == report.Type {
			consistent++
		}
	}

	report.Completeness = float64(nonEmpty) / float64(len(values))
	if nonEmpty > 0 {
		report.UniqueRatio = float64(len(distinct)) / float64(nonEmpty)
		report.TypeConsistency = float64(consistent) / float64(nonEmpty)
	}
	return report
}

func overallCompleteness(columns []ColumnReport, rows int) float64 {
	if len(columns) == 0 || rows == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range columns {
		sum += c.Completeness
	}
	return sum / float64(len(columns))
}

// duplicateGroups returns row index groups whose full row content matches.
// Only groups with two or more rows are reported.
func duplicateGroups(grid engine.Grid) [][]int {
	byKey := make(map[string][]int, grid.RowCount())
	order := make([]string, 0, grid.RowCount())
	for r, row := range grid.Rows {
		key := strings.Join(row, "\x1f")
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], r)
	}

	var groups [][]int
	for _, key := range order {
		if rows := byKey[key]; len(rows) > 1 {
			groups = append(groups, rows)
		}
	}
	return groups
}

// findOutliers flags numeric values by Z-score, with a Tukey fence fallback
// for distributions where a large outlier inflates the deviation.
func findOutliers(values []string, col int) []Outlier {
	type sample struct {
		row   int
		value float64
		raw   string
	}
	var samples []sample
	for r, v := range values {
		if f, ok := ParseNumber(v); ok {
			samples = append(samples, sample{row: r, value: f, raw: v})
		}
	}
	if len(samples) < minOutlierSamples {
		return nil
	}

	mean := 0.0
	for _, s := range samples {
		mean += s.value
	}
	mean /= float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		d := s.value - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return nil
	}

	vals := make([]float64, len(samples))
	for i, s := range samples {
		vals[i] = s.value
	}
	lowFence, highFence := tukeyFences(vals)

	var outliers []Outlier
	for _, s := range samples {
		z := (s.value - mean) / stddev
		if math.Abs(z) > outlierZThreshold || s.value < lowFence || s.value > highFence {
			outliers = append(outliers, Outlier{Row: s.row, Col: col, Value: s.raw, ZScore: z})
		}
	}
	return outliers
}

// tukeyFences computes the 1.5 IQR fences over the values.
func tukeyFences(values []float64) (float64, float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - outlierIQRFactor*iqr, q3 + outlierIQRFactor*iqr
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
