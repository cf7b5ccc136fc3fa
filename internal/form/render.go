package form

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

type Response = upload.Response

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five markup-significant characters with entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// RenderResults builds the results panel markup for a successful upload.
func RenderResults(resp *Response) string {
	var b strings.Builder

	b.WriteString(`<div class="result-item">`)
	b.WriteString(`<h4>✓ Analysis Complete</h4>`)
	fmt.Fprintf(&b, `<p><strong>Total Records Processed:</strong> %d</p>`, resp.TotalRows)
	fmt.Fprintf(&b, `<p><strong>Result File:</strong> %s</p>`, EscapeHTML(resp.ResultFile))
	fmt.Fprintf(&b, `<p><strong>Email Status:</strong> %s</p>`, EscapeHTML(resp.EmailStatus))
	fmt.Fprintf(&b, `<a href="%s" class="download-btn">📥 Download Results</a>`,
		EscapeHTML(upload.DownloadURL(resp.ResultFile)))
	b.WriteString(`</div>`)

	if len(resp.DataPreview) > 0 {
		b.WriteString(`<div class="result-item">`)
		b.WriteString(`<h4>📊 Data Preview (First 5 Records)</h4>`)
		b.WriteString(BuildTable(resp.DataPreview))
		b.WriteString(`</div>`)
	}
	return b.String()
}

// BuildTable renders preview records as a table. The first record's keys are
// the columns; later records are read in that order.
func BuildTable(records []upload.Record) string {
	if len(records) == 0 {
		return `<p>No data available</p>`
	}

	columns, rows := TableCells(records)

	var b strings.Builder
	b.WriteString(`<table class="data-table"><thead><tr>`)
	for _, col := range columns {
		b.WriteString("<th>")
		b.WriteString(EscapeHTML(col))
		b.WriteString("</th>")
	}
	b.WriteString(`</tr></thead><tbody>`)

	for _, cells := range rows {
		b.WriteString("<tr>")
		for _, cell := range cells {
			b.WriteString("<td>")
			b.WriteString(EscapeHTML(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}

	b.WriteString(`</tbody></table>`)
	return b.String()
}

// FormatCell renders a preview value. Numbers get four decimals; missing
// values render empty.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return fixed4(f)
		}
		return x.String()
	case float64:
		return fixed4(x)
	case float32:
		return fixed4(float64(x))
	case int:
		return fixed4(float64(x))
	case int64:
		return fixed4(float64(x))
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		out, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(out)
	}
}

// TableCells returns the header and body cells BuildTable would render,
// before escaping. Terminal hosts use it to print the preview.
func TableCells(records []upload.Record) (header []string, rows [][]string) {
	if len(records) == 0 {
		return nil, nil
	}
	header = records[0].Keys()
	for _, row := range records {
		cells := make([]string, len(header))
		for i, col := range header {
			v, _ := row.Get(col)
			cells[i] = FormatCell(v)
		}
		rows = append(rows, cells)
	}
	return header, rows
}

var tenThousand = big.NewFloat(1e4)

// fixed4 formats x with four decimals, rounding the exact binary value half
// away from zero: 0.03125 renders as 0.0313.
func fixed4(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}

	sign := ""
	if x < 0 {
		sign, x = "-", -x
	}
	if x >= 1e21 {
		return sign + strconv.FormatFloat(x, 'g', -1, 64)
	}

	scaled := new(big.Float).SetPrec(256).SetFloat64(x)
	scaled.Mul(scaled, tenThousand)
	scaled.Add(scaled, big.NewFloat(0.5))
	n, _ := scaled.Int(nil)

	digits := n.String()
	if len(digits) < 5 {
		digits = strings.Repeat("0", 5-len(digits)) + digits
	}
	return sign + digits[:len(digits)-4] + "." + digits[len(digits)-4:]
}
