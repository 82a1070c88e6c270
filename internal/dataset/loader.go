package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RawTable holds the dataset exactly as fetched: a header row and string
// cells. Type coercion happens downstream, not here.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// FailureKind classifies a load failure
type FailureKind string

const (
	// KindTransport covers network failures and non-2xx responses
	KindTransport FailureKind = "transport"
	// KindParse covers bodies that cannot be decoded as a CSV table
	KindParse FailureKind = "parse"
)

// LoadError is the typed failure result of a load attempt. The caller can
// inspect Kind instead of receiving a bare nil table.
type LoadError struct {
	Kind FailureKind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset load failed (%s): %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches the remote CSV dataset over HTTP
type Loader struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewLoader creates a loader for the given dataset URL with a fixed
// request timeout. A single attempt is made per Load call, no retries.
func NewLoader(url string, timeout time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Load fetches and decodes the dataset. On failure it returns a *LoadError
// classifying the cause; it never panics for transport or parse problems.
func (l *Loader) Load(ctx context.Context) (*RawTable, error) {
	l.logger.InfoContext(ctx, "downloading dataset", slog.String("url", l.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Err: fmt.Errorf("fetch dataset: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &LoadError{Kind: KindTransport, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	table, err := decodeCSV(resp.Body)
	if err != nil {
		return nil, &LoadError{Kind: KindParse, Err: err}
	}

	l.logger.InfoContext(ctx, "dataset downloaded",
		slog.Int("record_count", table.Len()),
		slog.Int("column_count", len(table.Headers)))

	return table, nil
}

// decodeCSV reads a header row plus data rows. The first header cell is
// repaired if the source encoding left a BOM or stray quotes on it.
func decodeCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// A BOM glued to a quoted first header would otherwise trip the
	// bare-quote check before the repair below can run.
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv body: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv body has no header row")
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = repairFirstHeader(headers[0])
	}

	return &RawTable{Headers: headers, Rows: records[1:]}, nil
}

// repairFirstHeader renames a first column mangled by a UTF-8 BOM or
// spreadsheet-style quoting to its intended name, "statistic". The CSO
// endpoint serves utf-8-sig, so the artifact shows up as ï»¿"statistic".
func repairFirstHeader(name string) string {
	cleaned := strings.TrimPrefix(name, "\ufeff")
	cleaned = strings.Trim(cleaned, `"`)
	if cleaned != name {
		return "statistic"
	}
	return name
}
