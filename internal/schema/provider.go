package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// InformationSchemaProvider introspects any database exposing the standard
// information_schema catalog views. Both supported drivers (pgx and duckdb)
// do.
type InformationSchemaProvider struct {
	db         *sql.DB
	schemaName string
}

func NewInformationSchemaProvider(db *sql.DB, schemaName string) *InformationSchemaProvider {
	if schemaName == "" {
		schemaName = "public"
	}
	return &InformationSchemaProvider{db: db, schemaName: schemaName}
}

const columnListingQuery = `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

func (p *InformationSchemaProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, columnListingQuery, p.schemaName)
	if err != nil {
		return Snapshot{}, fmt.Errorf("introspect schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot Snapshot
	var current *Table
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return Snapshot{}, fmt.Errorf("scan schema row: %w", err)
		}
		if current == nil || current.Name != tableName {
			snapshot.Tables = append(snapshot.Tables, Table{Name: tableName})
			current = &snapshot.Tables[len(snapshot.Tables)-1]
		}
		current.Columns = append(current.Columns, Column{Name: columnName, Type: dataType})
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate schema rows: %w", err)
	}
	return snapshot, nil
}
