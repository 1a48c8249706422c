package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a pgx-backed driver storing documents as JSONB rows. Filters
// compile to SQL predicates on JSONB paths, so matching happens server-side.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) FindOne(ctx context.Context, collection string, filter Filter) ([]byte, error) {
	where, args := compileFilter(collection, filter)
	query := fmt.Sprintf(`SELECT body FROM documents WHERE %s ORDER BY id LIMIT 1`, where)

	var doc []byte
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return doc, nil
}

func (p *Postgres) Find(ctx context.Context, collection string, filter Filter) ([][]byte, error) {
	where, args := compileFilter(collection, filter)
	query := fmt.Sprintf(`SELECT body FROM documents WHERE %s ORDER BY id`, where)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (p *Postgres) Insert(ctx context.Context, collection, id string, doc []byte) error {
	const query = `
	INSERT INTO documents (collection, id, body)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection, id) DO NOTHING
	`
	tag, err := p.pool.Exec(ctx, query, collection, id, doc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (p *Postgres) Replace(ctx context.Context, collection string, filter Filter, doc []byte) error {
	where, args := compileFilter(collection, filter)
	query := fmt.Sprintf(`UPDATE documents SET body = $%d WHERE %s`, len(args)+1, where)

	tag, err := p.pool.Exec(ctx, query, append(args, doc)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoDocument
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection string, filter Filter) error {
	where, args := compileFilter(collection, filter)
	query := fmt.Sprintf(`DELETE FROM documents WHERE %s`, where)

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoDocument
	}
	return nil
}

// Ping checks pool health.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// compileFilter builds the WHERE clause. Filter keys are code-owned field
// names, never caller input. The document id column is matched directly;
// every other key becomes a JSONB text-path predicate compared against the
// canonical string rendering of the filter value.
func compileFilter(collection string, filter Filter) (string, []any) {
	clauses := []string{"collection = $1"}
	args := []any{collection}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, fmt.Sprint(filter[k]))
		if k == "id" {
			clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
			continue
		}
		clauses = append(clauses, fmt.Sprintf("body->>'%s' = $%d", k, len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
