package warehouse

import (
	"fmt"
	"time"
)

// Rower is a record that can be projected onto table columns.
type Rower interface {
	Row() map[string]any
}

// Stamp identifies the run that produced a batch.
type Stamp struct {
	FlowID       string
	ExecDatetime time.Time
}

// Assemble projects records onto the schema's column order and stamps each row
// with the run identifier and execution time. A schema column that a record
// does not provide is reported as an error so drift is caught before upload.
func Assemble[R Rower](schema TableSchema, records []R, stamp Stamp) ([][]any, error) {
	names := schema.ColumnNames()
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		values := rec.Row()
		row := make([]any, len(names))
		for j, name := range names {
			switch name {
			case ColumnFlowID:
				row[j] = stamp.FlowID
			case ColumnExecDatetime:
				row[j] = stamp.ExecDatetime
			default:
				v, ok := values[name]
				if !ok {
					return nil, fmt.Errorf("assemble %s row %d: no value for column %q", schema.Name, i, name)
				}
				row[j] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
