// Package tsv writes warehouse batches as tab-separated files to a blob store.
package tsv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

const contentType = "text/tab-separated-values; charset=utf-8"

// Sink implements warehouse.Sink. Each Append writes one new object named
// "{prefix}/{table}/{flow_id}_{seq}.tsv" so earlier batches are never
// overwritten.
type Sink struct {
	store  baseball.BlobStore
	prefix string
	logger *zap.Logger

	mu  sync.Mutex
	seq map[string]int
}

// NewSink creates a Sink writing under prefix.
func NewSink(store baseball.BlobStore, prefix string, logger *zap.Logger) (*Sink, error) {
	if store == nil {
		return nil, errors.New("tsv: blob store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.Named("tsv_sink"),
		seq:    make(map[string]int),
	}, nil
}

// Append writes the header and rows of one batch.
func (s *Sink) Append(ctx context.Context, schema warehouse.TableSchema, rows [][]any) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("tsv: %w", err)
	}
	names := schema.ColumnNames()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.Write(names); err != nil {
		return fmt.Errorf("tsv: write header: %w", err)
	}
	record := make([]string, len(names))
	for i, row := range rows {
		if len(row) != len(names) {
			return fmt.Errorf("tsv: %s row %d has %d values, want %d", schema.Name, i, len(row), len(names))
		}
		for j, v := range row {
			record[j] = FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("tsv: write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("tsv: flush: %w", err)
	}

	objectPath := s.nextPath(schema, flowIDOf(names, rows))
	uri, err := s.store.PutObject(ctx, objectPath, contentType, &buf)
	if err != nil {
		return fmt.Errorf("tsv: put %s: %w", objectPath, err)
	}
	s.logger.Debug("wrote batch", zap.String("uri", uri), zap.Int("rows", len(rows)))
	return nil
}

func (s *Sink) nextPath(schema warehouse.TableSchema, flowID string) string {
	s.mu.Lock()
	s.seq[schema.Table]++
	n := s.seq[schema.Table]
	s.mu.Unlock()

	name := fmt.Sprintf("%s_%03d.tsv", flowID, n)
	if s.prefix == "" {
		return path.Join(schema.Table, name)
	}
	return path.Join(s.prefix, schema.Table, name)
}

func flowIDOf(names []string, rows [][]any) string {
	idx := slices.Index(names, warehouse.ColumnFlowID)
	if idx < 0 || len(rows) == 0 {
		return "batch"
	}
	if id, ok := rows[0][idx].(string); ok && id != "" {
		return id
	}
	return "batch"
}

// FormatValue renders one cell. Nil becomes an empty cell and times use RFC 3339.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
