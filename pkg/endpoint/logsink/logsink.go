// Package logsink persists snippet `log()` calls into the server log table.
package logsink

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/ursais/web-api/pkg/endpoint"
)

const moduleName = "web-api/endpoint"

// SQLSink writes one row per log call. Each insert runs in its own
// short-lived transaction, committed before Log returns, so a snippet log
// line survives even when the surrounding request fails afterwards.
type SQLSink struct {
	db     *sql.DB
	schema string
	dbname string
}

func NewSQLSink(db *sql.DB, schema, dbname string) *SQLSink {
	valid := regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	if schema == "" || !valid.MatchString(schema) {
		schema = "public"
	}
	return &SQLSink{db: db, schema: schema, dbname: dbname}
}

func (s *SQLSink) table() string { return fmt.Sprintf("%s.server_logs", s.schema) }

func (s *SQLSink) Init() error {
	_, err := s.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
	  id BIGSERIAL PRIMARY KEY,
	  create_date TIMESTAMPTZ NOT NULL,
	  create_uid TEXT NOT NULL DEFAULT '',
	  type TEXT NOT NULL,
	  dbname TEXT NOT NULL DEFAULT '',
	  name TEXT NOT NULL,
	  level TEXT NOT NULL,
	  message TEXT NOT NULL,
	  path TEXT NOT NULL,
	  line TEXT NOT NULL DEFAULT '',
	  func TEXT NOT NULL DEFAULT ''
	);`, s.table()))
	return err
}

func (s *SQLSink) Log(ctx context.Context, entry endpoint.LogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s
	(create_date, create_uid, type, dbname, name, level, message, path, line, func)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`, s.table())
	if _, err := tx.ExecContext(ctx, q,
		time.Now().UTC(),
		entry.UserID,
		"server",
		s.dbname,
		moduleName,
		entry.Level,
		entry.Message,
		"endpoint",
		entry.RecordID,
		entry.RecordName,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
