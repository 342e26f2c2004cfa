package export

// xlsx.go implements the XLSX renderer on excelize's stream writer, which
// keeps memory flat for large grids.

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/celled/celled/internal/engine"
)

const xlsxSheet = "Sheet1"

func init() {
	Register(Format{
		Info: FormatInfo{
			Key: "xlsx", Label: "Excel workbook", Extension: ".xlsx",
			MIME:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Group:  "spreadsheet",
			Binary: true,
		},
		Render: renderXLSX,
	})
}

// renderXLSX writes every cell as text so values like leading-zero IDs
// survive the trip into a spreadsheet.
func renderXLSX(w io.Writer, grid engine.Grid, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return err
	}

	rowIdx := 1
	if opts.IncludeHeaders && len(grid.Headers) > 0 {
		if err := writeXLSXRow(sw, rowIdx, grid.Headers); err != nil {
			return err
		}
		rowIdx++
	}
	for _, row := range grid.Rows {
		if err := writeXLSXRow(sw, rowIdx, row); err != nil {
			return err
		}
		rowIdx++
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func writeXLSXRow(sw *excelize.StreamWriter, rowIdx int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	anchor, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return sw.SetRow(anchor, cells)
}
