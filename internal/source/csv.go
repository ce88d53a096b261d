// Package source loads query corpora from Yandex.Direct report exports and
// derives the per-word rollups consumed by the word-level filter.
package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// columnAliases maps the fields we need to the header names Yandex.Direct
// exports use, both the Russian report headers and the API English ones.
var columnAliases = map[string][]string{
	"query":       {"query", "search query", "поисковый запрос", "запрос"},
	"impressions": {"impressions", "shows", "показы"},
	"clicks":      {"clicks", "клики"},
	"cost":        {"cost", "расход", "расход (руб.)", "стоимость"},
	"conversions": {"conversions", "конверсии"},
	"ctr":         {"ctr", "ctr (%)"},
	"avgcpc":      {"avgcpc", "avg. cpc", "средняя цена клика"},
	"cpl":         {"cpl", "цена цели", "цена конверсии"},
}

// CSVLoader reads a query corpus from a Yandex.Direct CSV report. It
// implements service.QuerySource.
type CSVLoader struct {
	logger   *slog.Logger
	progress io.Writer
	path     string
}

// CSVOption configures a CSVLoader.
type CSVOption func(*CSVLoader)

// WithProgress renders an ingest progress bar to w while loading.
func WithProgress(w io.Writer) CSVOption {
	return func(l *CSVLoader) { l.progress = w }
}

// NewCSVLoader creates a loader for the report at path.
func NewCSVLoader(path string, logger *slog.Logger, opts ...CSVOption) *CSVLoader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &CSVLoader{path: path, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Queries loads and parses the full report. Rows with an empty query text
// are skipped; rows with unparsable numbers fail the load.
func (l *CSVLoader) Queries(ctx context.Context) ([]model.QueryMetricRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	var bar *progressbar.ProgressBar
	if l.progress != nil {
		if info, statErr := f.Stat(); statErr == nil {
			bar = progressbar.NewOptions64(info.Size(),
				progressbar.OptionSetWriter(l.progress),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Loading report..."),
			)
		}
	}

	var reader io.Reader = bufio.NewReader(f)
	if bar != nil {
		reader = io.TeeReader(reader, bar)
	}

	records, err := ParseReport(ctx, reader)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("loaded query corpus", "path", l.path, "records", len(records))
	return records, nil
}

// ParseReport parses a Yandex.Direct CSV report from r. The delimiter
// (comma or semicolon) is detected from the header line, and decimal commas
// in numeric cells are accepted.
func ParseReport(ctx context.Context, r io.Reader) ([]model.QueryMetricRecord, error) {
	buffered := bufio.NewReader(r)
	headerLine, err := buffered.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}
	if strings.TrimSpace(headerLine) == "" {
		return nil, errors.New("report is empty")
	}

	delimiter := ','
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		delimiter = ';'
	}

	headerReader := csv.NewReader(strings.NewReader(headerLine))
	headerReader.Comma = delimiter
	header, err := headerReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse report header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(buffered)
	cr.Comma = delimiter
	cr.FieldsPerRecord = len(header)

	var records []model.QueryMetricRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read report line %d: %w", line, readErr)
		}

		record, parseErr := parseRow(columns, row)
		if parseErr != nil {
			return nil, fmt.Errorf("report line %d: %w", line, parseErr)
		}
		if record.Query == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// mapColumns resolves header names to field indexes. Only the query column
// is mandatory; missing metric columns read as zero.
func mapColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		columns[field] = -1
		for _, alias := range aliases {
			if i, ok := byName[alias]; ok {
				columns[field] = i
				break
			}
		}
	}
	if columns["query"] < 0 {
		return nil, fmt.Errorf("report header has no query column (got: %s)", strings.Join(header, ", "))
	}
	return columns, nil
}

func parseRow(columns map[string]int, row []string) (model.QueryMetricRecord, error) {
	cell := func(field string) string {
		i := columns[field]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	record := model.QueryMetricRecord{Query: cell("query")}

	var err error
	if record.Impressions, err = parseIntCell(cell("impressions")); err != nil {
		return record, fmt.Errorf("impressions: %w", err)
	}
	if record.Clicks, err = parseIntCell(cell("clicks")); err != nil {
		return record, fmt.Errorf("clicks: %w", err)
	}
	if record.Conversions, err = parseIntCell(cell("conversions")); err != nil {
		return record, fmt.Errorf("conversions: %w", err)
	}
	if record.Cost, err = parseFloatCell(cell("cost")); err != nil {
		return record, fmt.Errorf("cost: %w", err)
	}
	if record.AvgCpc, err = parseFloatCell(cell("avgcpc")); err != nil {
		return record, fmt.Errorf("avgCpc: %w", err)
	}

	ctr, err := parseFloatCell(strings.TrimSuffix(cell("ctr"), "%"))
	if err != nil {
		return record, fmt.Errorf("ctr: %w", err)
	}
	// Report CTR is a percentage; the model carries a fraction.
	record.CTR = ctr / 100

	if raw := cell("cpl"); raw != "" && raw != "-" {
		cpl, cplErr := parseFloatCell(raw)
		if cplErr != nil {
			return record, fmt.Errorf("cpl: %w", cplErr)
		}
		record.Cpl = &cpl
	}
	return record, nil
}

func parseIntCell(s string) (int, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.Atoi(strings.ReplaceAll(s, " ", ""))
}

func parseFloatCell(s string) (float64, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
