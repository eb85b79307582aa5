package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/db"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite is the single-file store used for local development, the admin CLI and tests.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens (and migrates) the database at path. ":memory:" gives a private in-memory db.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path
	}
	sqlDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection: sqlite serializes writers anyway and pragmas are per connection
	sqlDB.SetMaxOpenConns(1)

	s := &SQLite{db: sqlDB}
	if err := s.init(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlite %q: %w", pragma, err)
		}
	}

	migrations, err := db.Migrations(db.DialectSQLite)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int
		if err := s.db.GetContext(ctx, &applied, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.Version); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}
		if err := s.withTx(ctx, func(tx *sqlx.Tx) error {
			for _, stmt := range m.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
				}
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name)
			return err
		}); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLite) ListRecordsForClient(ctx context.Context, clientID string) (_ []day.DayRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var rows []dayRow
	if err := s.db.SelectContext(
		ctx,
		&rows,
		`SELECT client_id, date, record, planned, protein_g, carbs_g, fat_g,
				calories_kcal, body_weight_kg, steps, training
		FROM daily_logs
		WHERE client_id = ?
		ORDER BY date`,
		clientID,
	); err != nil {
		return nil, wrap("list records", err)
	}

	records := make([]day.DayRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeDayRow(row))
	}

	return records, nil
}

func (s *SQLite) UpsertDay(ctx context.Context, clientID string, date day.Date, record day.DayRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.records.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row, err := encodeDayRow(clientID, date, record)
	if err != nil {
		return wrap("upsert day", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO daily_logs (
			client_id, date, record, planned, protein_g, carbs_g, fat_g,
			calories_kcal, body_weight_kg, steps, training, updated_at_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, date) DO UPDATE SET
			record = excluded.record,
			planned = excluded.planned,
			protein_g = excluded.protein_g,
			carbs_g = excluded.carbs_g,
			fat_g = excluded.fat_g,
			calories_kcal = excluded.calories_kcal,
			body_weight_kg = excluded.body_weight_kg,
			steps = excluded.steps,
			training = excluded.training,
			updated_at_ms = excluded.updated_at_ms`,
		row.ClientID, row.Date, string(row.Record), string(row.Planned), row.ProteinG, row.CarbsG, row.FatG,
		row.CaloriesKcal, row.BodyWeightKg, row.Steps, string(row.Training), time.Now().UnixMilli(),
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return wrap("upsert day", fmt.Errorf("%w: %s", ErrClientNotFound, clientID))
		}
		return wrap("upsert day", err)
	}

	return nil
}

type sqliteClientRow struct {
	UserID             string `db:"user_id"`
	Email              string `db:"email"`
	Name               string `db:"name"`
	Role               string `db:"role"`
	Targets            []byte `db:"targets"`
	IsActive           bool   `db:"is_active"`
	LicenseExpiresAtMs *int64 `db:"license_expires_at_ms"`
	HasUnreadCoachMsg  bool   `db:"has_unread_coach_msg"`
	HasUnreadClientMsg bool   `db:"has_unread_client_msg"`
	CreatedAtMs        int64  `db:"created_at_ms"`
}

func (r sqliteClientRow) profile() roster.ClientProfile {
	p := roster.ClientProfile{
		ID:                    r.UserID,
		Email:                 r.Email,
		Name:                  r.Name,
		Role:                  r.Role,
		Targets:               day.InitialTargets,
		IsActive:              r.IsActive,
		SubscriptionExpiresAt: fromUnixMilli(r.LicenseExpiresAtMs),
		HasUnreadCoachMsg:     r.HasUnreadCoachMsg,
		HasUnreadClientMsg:    r.HasUnreadClientMsg,
		CreatedAt:             time.UnixMilli(r.CreatedAtMs).UTC(),
	}
	if t, ok := decodeTargets(r.Targets); ok {
		p.Targets = t
	}
	return p
}

const sqliteClientColumns = `user_id, email, name, role, targets, is_active, license_expires_at_ms,
	has_unread_coach_msg, has_unread_client_msg, created_at_ms`

func (s *SQLite) ListClients(ctx context.Context) (_ []roster.ClientProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var rows []sqliteClientRow
	if err := s.db.SelectContext(
		ctx,
		&rows,
		`SELECT `+sqliteClientColumns+` FROM app_clients WHERE role = ? ORDER BY created_at_ms, user_id`,
		roster.RoleClient,
	); err != nil {
		return nil, wrap("list clients", err)
	}

	clients := make([]roster.ClientProfile, 0, len(rows))
	for _, r := range rows {
		clients = append(clients, r.profile())
	}

	return clients, nil
}

func (s *SQLite) GetClient(ctx context.Context, clientID string) (_ *roster.ClientProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var row sqliteClientRow
	if err := s.db.GetContext(
		ctx,
		&row,
		`SELECT `+sqliteClientColumns+` FROM app_clients WHERE user_id = ?`,
		clientID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, wrap("get client", err)
	}

	p := row.profile()
	return &p, nil
}

func (s *SQLite) UpsertClientRole(ctx context.Context, userID, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.upsertRole")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO app_clients (user_id, email, name, role, created_at_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET email = excluded.email, role = excluded.role`,
		userID, email, email, roster.RoleClient, time.Now().UnixMilli(),
	)
	return wrap("upsert client role", err)
}

func (s *SQLite) CreateClient(ctx context.Context, p roster.ClientProfile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	targets, err := p.Targets.MarshalJSON()
	if err != nil {
		return wrap("create client", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO app_clients (user_id, email, name, role, targets, is_active, license_expires_at_ms, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Name, roster.RoleClient, string(targets), p.IsActive,
		unixMilli(p.SubscriptionExpiresAt), p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return wrap("create client", fmt.Errorf("%w: %s", ErrUserExists, p.Email))
		}
		return wrap("create client", err)
	}

	return nil
}

func (s *SQLite) UpdateClientStatus(ctx context.Context, clientID string, isActive bool, expiresAt *time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.updateStatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE app_clients SET is_active = ?, license_expires_at_ms = COALESCE(?, license_expires_at_ms)
		WHERE user_id = ?`,
		isActive, unixMilli(expiresAt), clientID,
	)
	return s.checkAffected("update client status", res, err)
}

func (s *SQLite) UpdateTargets(ctx context.Context, clientID string, targets day.Targets) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.updateTargets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	targetsJSON, err := targets.MarshalJSON()
	if err != nil {
		return wrap("update targets", err)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE app_clients SET targets = ? WHERE user_id = ?`,
		string(targetsJSON), clientID,
	)
	return s.checkAffected("update targets", res, err)
}

func (s *SQLite) DeleteClient(ctx context.Context, clientID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.clients.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	res, err := s.db.ExecContext(ctx, `DELETE FROM app_clients WHERE user_id = ?`, clientID)
	return s.checkAffected("delete client", res, err)
}

func (s *SQLite) checkAffected(op string, res sql.Result, err error) error {
	if err != nil {
		return wrap(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (s *SQLite) AppendMessage(ctx context.Context, msg roster.Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.messages.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	flagColumn := "has_unread_client_msg"
	if msg.FromCoach() {
		flagColumn = "has_unread_coach_msg"
	}

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO client_messages (id, client_id, sender_id, text, created_at_ms) VALUES (?, ?, ?, ?, ?)`,
			msg.ID, msg.ClientID, msg.SenderID, msg.Text, msg.Timestamp.UnixMilli(),
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return fmt.Errorf("%w: %s", ErrClientNotFound, msg.ClientID)
			}
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE app_clients SET `+flagColumn+` = 1 WHERE user_id = ?`, msg.ClientID)
		return err
	})
	return wrap("append message", err)
}

func (s *SQLite) ListMessages(ctx context.Context, clientID string) (_ []roster.Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.messages.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var rows []struct {
		ID          string `db:"id"`
		ClientID    string `db:"client_id"`
		SenderID    string `db:"sender_id"`
		Text        string `db:"text"`
		CreatedAtMs int64  `db:"created_at_ms"`
	}
	if err := s.db.SelectContext(
		ctx,
		&rows,
		`SELECT id, client_id, sender_id, text, created_at_ms FROM client_messages WHERE client_id = ? ORDER BY seq`,
		clientID,
	); err != nil {
		return nil, wrap("list messages", err)
	}

	messages := make([]roster.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, roster.Message{
			ID:        r.ID,
			ClientID:  r.ClientID,
			SenderID:  r.SenderID,
			Text:      r.Text,
			Timestamp: time.UnixMilli(r.CreatedAtMs).UTC(),
		})
	}

	return messages, nil
}

func (s *SQLite) MarkMessagesRead(ctx context.Context, clientID string, readerIsCoach bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.messages.markRead")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	flagColumn := "has_unread_coach_msg"
	if readerIsCoach {
		flagColumn = "has_unread_client_msg"
	}
	_, err = s.db.ExecContext(ctx, `UPDATE app_clients SET `+flagColumn+` = 0 WHERE user_id = ?`, clientID)
	return wrap("mark messages read", err)
}

func (s *SQLite) AddUser(ctx context.Context, user User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO app_users (id, email, password_hash, created_at_ms) VALUES (?, ?, ?, ?)`,
		user.ID, normalizeEmail(user.Email), user.PasswordHash, user.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return wrap("add user", fmt.Errorf("%w: %s", ErrUserExists, user.Email))
		}
		return wrap("add user", err)
	}

	return nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.sqlite.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var row struct {
		ID           string `db:"id"`
		Email        string `db:"email"`
		PasswordHash string `db:"password_hash"`
		CreatedAtMs  int64  `db:"created_at_ms"`
	}
	if err := s.db.GetContext(
		ctx,
		&row,
		`SELECT id, email, password_hash, created_at_ms FROM app_users WHERE email = ?`,
		normalizeEmail(email),
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, wrap("get user", err)
	}

	return &User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    time.UnixMilli(row.CreatedAtMs).UTC(),
	}, nil
}
