package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSink appends events to a sqlite database.
type SQLiteSink struct {
	db *sql.DB
}

var _ custody.EventSink = (*SQLiteSink)(nil)

// OpenSQLiteSink opens or creates the database at given path. Use
// ":memory:" for a throw away database.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path+
		"?_pragma=journal_mode(WAL)"+
		"&_pragma=busy_timeout(5000)"+
		"&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	// a single connection serializes writers, and keeps an in memory
	// database alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.ErrDatabase, "initialize schema: %s", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Close releases the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Publish inserts all events in a single transaction.
func (s *SQLiteSink) Publish(ctx custody.Context, events []custody.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	for _, e := range events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (kind, actor, group_key, request, asset, amount, class, expire_at, status, time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(e.Kind),
			addrString(e.Actor),
			hexString(e.Group),
			hexString(e.Request),
			e.Asset,
			strconv.FormatUint(e.Amount, 10),
			e.Class,
			int64(e.ExpireAt),
			e.Status,
			int64(e.Time))
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(errors.ErrDatabase, "insert %s event: %s", e.Kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Filter narrows down Events. Empty fields match everything.
type Filter struct {
	Kind    custody.EventKind
	Group   []byte
	Request []byte
}

// Events returns stored events matching the filter, oldest first.
func (s *SQLiteSink) Events(ctx context.Context, f Filter) ([]custody.Event, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Group != nil {
		where = append(where, "group_key = ?")
		args = append(args, hexString(f.Group))
	}
	if f.Request != nil {
		where = append(where, "request = ?")
		args = append(args, hexString(f.Request))
	}
	query := `SELECT kind, actor, group_key, request, asset, amount, class, expire_at, status, time FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer rows.Close()

	var events []custody.Event
	for rows.Next() {
		var (
			e                     custody.Event
			kind, actor, grp, req string
			amount                string
			expireAt, ts          int64
		)
		if err := rows.Scan(&kind, &actor, &grp, &req, &e.Asset, &amount, &e.Class, &expireAt, &e.Status, &ts); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		e.Kind = custody.EventKind(kind)
		if actor != "" {
			if e.Actor, err = custody.ParseAddress(actor); err != nil {
				return nil, errors.Wrap(err, "actor")
			}
		}
		if e.Group, err = parseHex(grp); err != nil {
			return nil, errors.Wrap(err, "group")
		}
		if e.Request, err = parseHex(req); err != nil {
			return nil, errors.Wrap(err, "request")
		}
		if e.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, errors.Wrap(errors.ErrModel, err.Error())
		}
		e.ExpireAt = custody.UnixTime(expireAt)
		e.Time = custody.UnixTime(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return events, nil
}

func addrString(a custody.Address) string {
	if a == nil {
		return ""
	}
	return a.String()
}

func hexString(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

func parseHex(s string) (custody.HexBytes, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return b, nil
}
