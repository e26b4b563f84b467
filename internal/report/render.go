package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects an output encoding
type Format string

// Supported output formats
const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCSV     Format = "csv"
	FormatHTML    Format = "html"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatConsole, FormatJSON, FormatYAML, FormatCSV, FormatHTML:
		return f, nil
	case "text", "":
		return FormatConsole, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %q", name)
	}
}

// Write renders r to w in the requested format
func Write(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatConsole:
		_, err := io.WriteString(w, GenerateConsoleReport(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, r)
	case FormatHTML:
		return htmlReport.Execute(w, r)
	default:
		return fmt.Errorf("unsupported report format: %q", format)
	}
}

// WriteFile renders r into outputPath, creating parent directories
func WriteFile(outputPath string, r Report, format Format) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := Write(f, r, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GenerateConsoleReport formats a report for terminal output
func GenerateConsoleReport(r Report) string {
	var b strings.Builder
	b.WriteString("Portfolio Risk Report\n")
	b.WriteString("=====================\n")
	b.WriteString(fmt.Sprintf("Symbols: %s\n", strings.Join(r.Symbols, ", ")))
	b.WriteString(fmt.Sprintf("Period: %s to %s (%d observations)\n", r.StartDate, r.EndDate, r.Observations))

	b.WriteString("\nEqual-Weight Portfolio\n")
	b.WriteString("----------------------\n")
	b.WriteString(fmt.Sprintf("Annualized Return: %.2f%%\n", r.Summary.AnnualizedReturnPct))
	b.WriteString(fmt.Sprintf("Annualized Volatility: %.2f%%\n", r.Summary.AnnualizedVolatilityPct))
	b.WriteString(fmt.Sprintf("Sharpe Ratio: %s\n", optional(r.Summary.SharpeRatio, "%.4f")))
	b.WriteString(fmt.Sprintf("Beta (%s vs basket): %s\n", first(r.Symbols), optional(r.Summary.Beta, "%.4f")))
	b.WriteString(fmt.Sprintf("Value at Risk (%.0f%%): %s\n", r.Summary.ConfidenceLevel*100, optional(r.Summary.ValueAtRiskPct, "%.2f%%")))

	b.WriteString("\nMax-Sharpe Portfolio\n")
	b.WriteString("--------------------\n")
	if opt := r.Optimization; opt != nil {
		for _, w := range opt.Weights {
			b.WriteString(fmt.Sprintf("  %-10s %7.2f%%\n", w.Symbol, w.WeightPct))
		}
		b.WriteString(fmt.Sprintf("Expected Return: %.2f%%\n", opt.AnnualizedReturnPct))
		b.WriteString(fmt.Sprintf("Volatility: %.2f%%\n", opt.AnnualizedVolatilityPct))
		b.WriteString(fmt.Sprintf("Sharpe Ratio: %s\n", optional(opt.SharpeRatio, "%.4f")))
	} else {
		b.WriteString(fmt.Sprintf("Optimization failed: %s\n", r.OptimizationError))
	}

	b.WriteString("\nMonte Carlo Simulation (final prices)\n")
	b.WriteString("-------------------------------------\n")
	b.WriteString(fmt.Sprintf("  %-10s %6s %5s %12s %12s %12s %12s\n", "Symbol", "Paths", "Days", "P5", "Median", "Mean", "P95"))
	writeSimulationRow(&b, "BASKET", r.AggregateSimulation)
	for _, s := range r.IndividualSimulations {
		writeSimulationRow(&b, s.Symbol, s)
	}
	return b.String()
}

func writeSimulationRow(b *strings.Builder, label string, s SimulationSection) {
	b.WriteString(fmt.Sprintf("  %-10s %6d %5d %12.2f %12.2f %12.2f %12.2f\n",
		label, s.Simulations, s.Days, s.P5Final, s.MedianFinal, s.MeanFinal, s.P95Final))
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func first(symbols []string) string {
	if len(symbols) == 0 {
		return ""
	}
	return symbols[0]
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"metric", "symbol", "value"},
		{"annualized_return_pct", "", formatFloat(r.Summary.AnnualizedReturnPct)},
		{"annualized_volatility_pct", "", formatFloat(r.Summary.AnnualizedVolatilityPct)},
		{"sharpe_ratio", "", formatOptional(r.Summary.SharpeRatio)},
		{"beta", first(r.Symbols), formatOptional(r.Summary.Beta)},
		{"value_at_risk_pct", "", formatOptional(r.Summary.ValueAtRiskPct)},
	}
	if opt := r.Optimization; opt != nil {
		for _, w := range opt.Weights {
			records = append(records, []string{"optimal_weight_pct", w.Symbol, formatFloat(w.WeightPct)})
		}
		records = append(records, []string{"optimal_sharpe_ratio", "", formatOptional(opt.SharpeRatio)})
	}
	sims := append([]SimulationSection{r.AggregateSimulation}, r.IndividualSimulations...)
	for _, s := range sims {
		records = append(records,
			[]string{"simulated_p5_final", s.Symbol, formatFloat(s.P5Final)},
			[]string{"simulated_median_final", s.Symbol, formatFloat(s.MedianFinal)},
			[]string{"simulated_p95_final", s.Symbol, formatFloat(s.P95Final)},
		)
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"opt": func(v *float64) string { return optional(v, "%.4f") },
}).Parse(`<!DOCTYPE html>
<html>
<head><title>Portfolio Risk Report</title></head>
<body>
<h1>Portfolio Risk Report</h1>
<p><strong>Symbols:</strong> {{range $i, $s := .Symbols}}{{if $i}}, {{end}}{{$s}}{{end}}</p>
<p><strong>Period:</strong> {{.StartDate}} to {{.EndDate}} ({{.Observations}} observations)</p>
<h2>Equal-Weight Portfolio</h2>
<p><strong>Annualized Return:</strong> {{printf "%.2f" .Summary.AnnualizedReturnPct}}%</p>
<p><strong>Annualized Volatility:</strong> {{printf "%.2f" .Summary.AnnualizedVolatilityPct}}%</p>
<p><strong>Sharpe Ratio:</strong> {{opt .Summary.SharpeRatio}}</p>
<p><strong>Beta:</strong> {{opt .Summary.Beta}}</p>
<p><strong>Value at Risk:</strong> {{opt .Summary.ValueAtRiskPct}}%</p>
<h2>Max-Sharpe Portfolio</h2>
{{with .Optimization}}<table>
<tr><th>Symbol</th><th>Weight %</th></tr>
{{range .Weights}}<tr><td>{{.Symbol}}</td><td>{{printf "%.2f" .WeightPct}}</td></tr>
{{end}}</table>
<p><strong>Sharpe Ratio:</strong> {{opt .SharpeRatio}}</p>
{{else}}<p>Optimization failed: {{.OptimizationError}}</p>
{{end}}<h2>Monte Carlo Simulation</h2>
<table>
<tr><th>Symbol</th><th>Paths</th><th>Days</th><th>P5</th><th>Median</th><th>P95</th></tr>
<tr><td>Basket</td><td>{{.AggregateSimulation.Simulations}}</td><td>{{.AggregateSimulation.Days}}</td><td>{{printf "%.2f" .AggregateSimulation.P5Final}}</td><td>{{printf "%.2f" .AggregateSimulation.MedianFinal}}</td><td>{{printf "%.2f" .AggregateSimulation.P95Final}}</td></tr>
{{range .IndividualSimulations}}<tr><td>{{.Symbol}}</td><td>{{.Simulations}}</td><td>{{.Days}}</td><td>{{printf "%.2f" .P5Final}}</td><td>{{printf "%.2f" .MedianFinal}}</td><td>{{printf "%.2f" .P95Final}}</td></tr>
{{end}}</table>
</body>
</html>
`))
