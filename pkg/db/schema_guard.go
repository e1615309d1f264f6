package db

import (
	"database/sql"
	"fmt"
)

// ColumnType represents expected column schema
type ColumnType struct {
	Name     string
	DataType string
	Nullable bool
}

// TableSchema represents expected table structure
type TableSchema struct {
	Name    string
	Columns []ColumnType
}

// SchemaGuard validates database schema matches expectations
type SchemaGuard struct {
	db *sql.DB
}

// NewSchemaGuard creates a new schema guard
func NewSchemaGuard(db *sql.DB) *SchemaGuard {
	return &SchemaGuard{db: db}
}

// ValidateTable validates a table's schema
func (sg *SchemaGuard) ValidateTable(schema TableSchema) error {
	// Query actual schema
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := sg.db.Query(query, schema.Name)
	if err != nil {
		return fmt.Errorf("failed to query table schema for %s: %w", schema.Name, err)
	}
	defer rows.Close()

	actualColumns := make(map[string]ColumnType)
	for rows.Next() {
		var colName, dataType, isNullable string
		if err := rows.Scan(&colName, &dataType, &isNullable); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		actualColumns[colName] = ColumnType{
			Name:     colName,
			DataType: dataType,
			Nullable: isNullable == "YES",
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating schema rows: %w", err)
	}

	if len(actualColumns) == 0 {
		return fmt.Errorf("table %s does not exist", schema.Name)
	}

	// Compare expected columns against actual
	for _, expected := range schema.Columns {
		actual, ok := actualColumns[expected.Name]
		if !ok {
			return fmt.Errorf("table %s is missing column %s", schema.Name, expected.Name)
		}
		if expected.DataType != "" && actual.DataType != expected.DataType {
			return fmt.Errorf("table %s column %s has type %s, expected %s",
				schema.Name, expected.Name, actual.DataType, expected.DataType)
		}
	}

	return nil
}

// ValidateUniqueKey verifies a unique index exists on the given columns.
// Uniqueness constraints are the final backstop against natural-key insert races,
// so startup fails loudly if one is missing.
func (sg *SchemaGuard) ValidateUniqueKey(table, indexName string) error {
	query := `
		SELECT COUNT(*)
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
		AND INDEX_NAME = ?
		AND NON_UNIQUE = 0
	`

	var count int
	if err := sg.db.QueryRow(query, table, indexName).Scan(&count); err != nil {
		return fmt.Errorf("failed to query index %s on %s: %w", indexName, table, err)
	}
	if count == 0 {
		return fmt.Errorf("table %s is missing unique index %s", table, indexName)
	}
	return nil
}
