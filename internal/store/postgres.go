package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/pdcal/internal/contracts"
)

// Postgres persists tables as a header row plus one JSONB payload per row.
// ⭐ SSOT: 결과 테이블 저장 (replace = 헤더 upsert + 행 삭제 + batch insert, 스테이지당 단일 트랜잭션)
type Postgres struct {
	pool   *pgxpool.Pool
	tables string
	rows   string
}

// NewPostgres creates a store using the given schema
func NewPostgres(pool *pgxpool.Pool, schema string) *Postgres {
	if schema == "" {
		schema = "public"
	}
	return &Postgres{
		pool:   pool,
		tables: pgx.Identifier{schema, "result_tables"}.Sanitize(),
		rows:   pgx.Identifier{schema, "result_rows"}.Sanitize(),
	}
}

// EnsureSchema creates the schema and both tables if missing
func (p *Postgres) EnsureSchema(ctx context.Context, schema string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pgx.Identifier{schema}.Sanitize()),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name       TEXT PRIMARY KEY,
			columns    JSONB NOT NULL,
			row_count  INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, p.tables),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			table_name TEXT NOT NULL REFERENCES %s(name) ON DELETE CASCADE,
			row_no     INTEGER NOT NULL,
			payload    JSONB NOT NULL,
			PRIMARY KEY (table_name, row_no)
		)`, p.rows, p.tables),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Write replaces a table in one transaction
func (p *Postgres) Write(ctx context.Context, t *contracts.Table) error {
	return p.WriteAll(ctx, t)
}

// WriteAll replaces every table in one transaction
func (p *Postgres) WriteAll(ctx context.Context, tables ...*contracts.Table) error {
	for i, t := range tables {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%w: table %d has no name", contracts.ErrInvalidTable, i)
		}
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range tables {
		if err := p.replace(ctx, tx, t); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// replace upserts the header, deletes the old rows and batch-inserts the new ones
func (p *Postgres) replace(ctx context.Context, tx pgx.Tx, t *contracts.Table) error {
	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	headerQuery := fmt.Sprintf(`
		INSERT INTO %s (name, columns, row_count, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET
			columns = EXCLUDED.columns,
			row_count = EXCLUDED.row_count,
			updated_at = NOW()`, p.tables)
	if _, err := tx.Exec(ctx, headerQuery, t.Name, string(columns), t.Len()); err != nil {
		return fmt.Errorf("failed to upsert table header: %w", err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE table_name = $1`, p.rows), t.Name); err != nil {
		return fmt.Errorf("failed to delete old rows: %w", err)
	}

	if t.Len() == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := fmt.Sprintf(`INSERT INTO %s (table_name, row_no, payload) VALUES ($1, $2, $3)`, p.rows)
	for i, r := range t.Rows {
		payload, err := json.Marshal(contracts.EncodeRow(r))
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		batch.Queue(query, t.Name, i, string(payload))
	}

	br := tx.SendBatch(ctx, batch)
	for range t.Rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert rows: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}
	return nil
}

// Read loads a table. A missing header returns ErrTableNotFound.
func (p *Postgres) Read(ctx context.Context, name string) (*contracts.Table, error) {
	var rawColumns []byte
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT columns FROM %s WHERE name = $1`, p.tables), name).Scan(&rawColumns)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", contracts.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table header: %w", err)
	}

	var cols []contracts.Column
	if err := json.Unmarshal(rawColumns, &cols); err != nil {
		return nil, fmt.Errorf("failed to decode columns of %s: %w", name, err)
	}
	t := contracts.NewTable(name, cols...)

	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE table_name = $1 ORDER BY row_no`, p.rows), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode row of %s: %w", name, err)
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return t, nil
}

// List describes every stored table
func (p *Postgres) List(ctx context.Context) ([]contracts.TableInfo, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT name, columns, row_count, updated_at FROM %s ORDER BY name`, p.tables))
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var out []contracts.TableInfo
	for rows.Next() {
		var info contracts.TableInfo
		var rawColumns []byte
		if err := rows.Scan(&info.Name, &rawColumns, &info.Rows, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		if err := json.Unmarshal(rawColumns, &info.Columns); err != nil {
			return nil, fmt.Errorf("failed to decode columns of %s: %w", info.Name, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// decodePayload keeps numbers as json.Number so int and float cells survive exactly
func decodePayload(payload []byte) ([]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var values []interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}
