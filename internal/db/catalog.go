package db

import "context"

// Fixed-text catalog queries. Positional @pN parameters only; none of this
// text is caller-controlled, so these bypass the read-only validator.
const (
	listDatabasesSQL = `SELECT name, database_id, state_desc, recovery_model_desc ` +
		`FROM sys.databases ORDER BY name`

	listTablesSQL = `SELECT s.name AS schema_name, t.name AS table_name, ` +
		`t.create_date, t.modify_date, t.is_ms_shipped, t.temporal_type_desc ` +
		`FROM sys.tables t ` +
		`JOIN sys.schemas s ON t.schema_id = s.schema_id ` +
		`ORDER BY s.name, t.name`

	listViewsSQL = `SELECT s.name AS schema_name, v.name AS view_name, ` +
		`v.create_date, v.modify_date, v.is_ms_shipped ` +
		`FROM sys.views v ` +
		`JOIN sys.schemas s ON v.schema_id = s.schema_id ` +
		`ORDER BY s.name, v.name`

	listProceduresSQL = `SELECT s.name AS schema_name, p.name AS procedure_name, ` +
		`p.create_date, p.modify_date, p.is_ms_shipped, p.type_desc ` +
		`FROM sys.procedures p ` +
		`JOIN sys.schemas s ON p.schema_id = s.schema_id ` +
		`ORDER BY s.name, p.name`

	listIndexesSQL = `SELECT s.name AS schema_name, t.name AS table_name, i.name AS index_name, ` +
		`i.type_desc, i.is_unique, i.is_primary_key, i.is_disabled, i.fill_factor ` +
		`FROM sys.indexes i ` +
		`JOIN sys.tables t ON i.object_id = t.object_id ` +
		`JOIN sys.schemas s ON t.schema_id = s.schema_id ` +
		`WHERE i.name IS NOT NULL ` +
		`ORDER BY s.name, t.name, i.name`

	listColumnsSQL = `SELECT s.name AS schema_name, t.name AS table_name, c.name AS column_name, ` +
		`ty.name AS data_type, c.max_length, c.precision, c.scale, ` +
		`c.is_nullable, c.is_identity, c.is_computed ` +
		`FROM sys.columns c ` +
		`JOIN sys.tables t ON c.object_id = t.object_id ` +
		`JOIN sys.schemas s ON t.schema_id = s.schema_id ` +
		`JOIN sys.types ty ON c.user_type_id = ty.user_type_id ` +
		`WHERE t.name = @p1 ` +
		`ORDER BY s.name, t.name, c.column_id`

	listConstraintsSQL = `SELECT tc.TABLE_SCHEMA AS schema_name, tc.TABLE_NAME AS table_name, ` +
		`tc.CONSTRAINT_NAME AS constraint_name, tc.CONSTRAINT_TYPE AS constraint_type ` +
		`FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc ` +
		`WHERE tc.TABLE_NAME = @p1 ` +
		`ORDER BY tc.TABLE_SCHEMA, tc.TABLE_NAME, tc.CONSTRAINT_NAME`

	listForeignKeysSQL = `SELECT s.name AS schema_name, t.name AS table_name, fk.name AS foreign_key_name, ` +
		`pc.name AS column_name, rs.name AS referenced_schema, rt.name AS referenced_table, ` +
		`rc.name AS referenced_column, ` +
		`fk.delete_referential_action_desc, fk.update_referential_action_desc ` +
		`FROM sys.foreign_keys fk ` +
		`JOIN sys.tables t ON fk.parent_object_id = t.object_id ` +
		`JOIN sys.schemas s ON t.schema_id = s.schema_id ` +
		`JOIN sys.tables rt ON fk.referenced_object_id = rt.object_id ` +
		`JOIN sys.schemas rs ON rt.schema_id = rs.schema_id ` +
		`JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id ` +
		`JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id AND fkc.parent_column_id = pc.column_id ` +
		`JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id ` +
		`WHERE t.name = @p1 ` +
		`ORDER BY s.name, t.name, fk.name, fkc.constraint_column_id`

	listDependenciesSQL = `SELECT OBJECT_SCHEMA_NAME(d.referencing_id) AS referencing_schema, ` +
		`OBJECT_NAME(d.referencing_id) AS referencing_object, ` +
		`d.referenced_schema_name, d.referenced_entity_name ` +
		`FROM sys.sql_expression_dependencies d ` +
		`WHERE d.referenced_entity_name = @p1 OR OBJECT_NAME(d.referencing_id) = @p1 ` +
		`ORDER BY referencing_schema, referencing_object`
)

// ListDatabases lists every database visible to the configured login.
// Runs against the default catalog.
func (c *Client) ListDatabases(ctx context.Context) ([]map[string]any, error) {
	return c.fetchRows(ctx, "", listDatabasesSQL)
}

// ListTables lists tables in the given database with creation metadata.
func (c *Client) ListTables(ctx context.Context, database string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listTablesSQL)
}

// ListViews lists views in the given database.
func (c *Client) ListViews(ctx context.Context, database string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listViewsSQL)
}

// ListStoredProcedures lists stored procedures in the given database.
func (c *Client) ListStoredProcedures(ctx context.Context, database string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listProceduresSQL)
}

// ListIndexes lists named indexes on tables in the given database.
func (c *Client) ListIndexes(ctx context.Context, database string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listIndexesSQL)
}

// ListColumns lists columns of the named table.
func (c *Client) ListColumns(ctx context.Context, database, table string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listColumnsSQL, table)
}

// ListConstraints lists constraints on the named table.
func (c *Client) ListConstraints(ctx context.Context, database, table string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listConstraintsSQL, table)
}

// ListForeignKeys lists foreign keys declared on the named table.
func (c *Client) ListForeignKeys(ctx context.Context, database, table string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listForeignKeysSQL, table)
}

// ListDependencies lists objects referencing or referenced by the named object.
func (c *Client) ListDependencies(ctx context.Context, database, object string) ([]map[string]any, error) {
	return c.fetchRows(ctx, database, listDependenciesSQL, object)
}
