package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/ursais/web-api/pkg/endpoint"
)

const endpointColumns = `id, name, route, exec_mode, code_snippet, exec_as_user,
	auth_type, request_method, request_content_type, COALESCE(company_id,''),
	created_at, updated_at`

// SQLRepository stores endpoint records in Postgres under the given schema.
// Only [a-z_][a-z0-9_]* schema names are accepted to prevent SQL injection.
type SQLRepository struct {
	db     *sql.DB
	schema string
}

func NewSQLRepository(db *sql.DB, schema string) *SQLRepository {
	valid := regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	if schema == "" || !valid.MatchString(schema) {
		schema = "public"
	}
	return &SQLRepository{db: db, schema: schema}
}

func (r *SQLRepository) table() string { return fmt.Sprintf("%s.endpoints", r.schema) }

func (r *SQLRepository) Init() error {
	if _, err := r.db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", r.schema)); err != nil {
		return err
	}
	_, err := r.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
	  id UUID PRIMARY KEY,
	  name TEXT NOT NULL,
	  route TEXT NOT NULL UNIQUE,
	  exec_mode TEXT NOT NULL,
	  code_snippet TEXT NOT NULL DEFAULT '',
	  exec_as_user TEXT NOT NULL DEFAULT '',
	  auth_type TEXT NOT NULL DEFAULT 'user',
	  request_method TEXT NOT NULL DEFAULT '',
	  request_content_type TEXT NOT NULL DEFAULT '',
	  company_id TEXT,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`, r.table()))
	return err
}

func (r *SQLRepository) List(ctx context.Context) ([]*endpoint.Endpoint, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at ASC`, endpointColumns, r.table())
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*endpoint.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*endpoint.Endpoint, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, endpointColumns, r.table())
	e, err := scanEndpoint(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *SQLRepository) FindByRoute(ctx context.Context, route string) (*endpoint.Endpoint, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE route = $1 ORDER BY created_at ASC LIMIT 1`,
		endpointColumns, r.table())
	e, err := scanEndpoint(r.db.QueryRowContext(ctx, q, route))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *SQLRepository) Create(ctx context.Context, e *endpoint.Endpoint) error {
	if err := prepare(e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	q := fmt.Sprintf(`INSERT INTO %s
	(id, name, route, exec_mode, code_snippet, exec_as_user, auth_type,
	 request_method, request_content_type, company_id)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''))`, r.table())
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Name, e.Route, string(e.ExecMode), e.CodeSnippet, e.ExecAsUser,
		string(e.AuthType), e.RequestMethod, e.RequestContentType, e.CompanyID)
	return err
}

func (r *SQLRepository) Update(ctx context.Context, e *endpoint.Endpoint) error {
	if err := prepare(e); err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET
	name=$2, route=$3, exec_mode=$4, code_snippet=$5, exec_as_user=$6,
	auth_type=$7, request_method=$8, request_content_type=$9,
	company_id=NULLIF($10,''), updated_at=now()
	WHERE id=$1`, r.table())
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Name, e.Route, string(e.ExecMode), e.CodeSnippet, e.ExecAsUser,
		string(e.AuthType), e.RequestMethod, e.RequestContentType, e.CompanyID)
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table())
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *SQLRepository) Duplicate(ctx context.Context, id string) (*endpoint.Endpoint, error) {
	src, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := copyRecord(src)
	if err := r.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// copyRecord clones a record for duplication. The route gets the fixed
// suffix because routes are unique.
func copyRecord(src *endpoint.Endpoint) *endpoint.Endpoint {
	dup := *src
	dup.ID = uuid.NewString()
	dup.Route = src.Route + endpoint.CopySuffix
	return &dup
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEndpoint(row rowScanner) (*endpoint.Endpoint, error) {
	var e endpoint.Endpoint
	var mode, auth string
	err := row.Scan(&e.ID, &e.Name, &e.Route, &mode, &e.CodeSnippet,
		&e.ExecAsUser, &auth, &e.RequestMethod, &e.RequestContentType,
		&e.CompanyID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.ExecMode = endpoint.ExecMode(mode)
	e.AuthType = endpoint.AuthType(auth)
	return &e, nil
}
