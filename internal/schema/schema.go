// Package schema provides the request-time view of the database layout that
// is handed to the SQL generator. Snapshots are rebuilt on every request and
// never cached.
package schema

import (
	"context"
	"strings"
)

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

type Snapshot struct {
	Tables []Table `json:"tables"`
}

// Render produces the textual form interpolated into the generation prompt.
func (s Snapshot) Render() string {
	var b strings.Builder
	for _, table := range s.Tables {
		b.WriteString("Table: ")
		b.WriteString(table.Name)
		b.WriteString("\n")
		for _, column := range table.Columns {
			b.WriteString("  - ")
			b.WriteString(column.Name)
			b.WriteString(" (")
			b.WriteString(column.Type)
			b.WriteString(")\n")
		}
	}
	return b.String()
}

type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}
