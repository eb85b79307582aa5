package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{
		db: db,
	}
}

// Close is a no-op: the pool is owned by whoever created it.
func (s *Postgres) Close() error {
	return nil
}

func (s *Postgres) ListRecordsForClient(ctx context.Context, clientID string) (_ []day.DayRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := s.db.Query(
		ctx,
		`SELECT client_id, date::text, record, planned, protein_g, carbs_g, fat_g,
				calories_kcal, body_weight_kg, steps, training
		FROM daily_logs
		WHERE client_id = $1
		ORDER BY date;`,
		clientID,
	)
	if err != nil {
		return nil, wrap("list records", err)
	}
	defer rows.Close()

	var records []day.DayRecord
	for rows.Next() {
		var row dayRow
		if err := rows.Scan(
			&row.ClientID, &row.Date, &row.Record, &row.Planned,
			&row.ProteinG, &row.CarbsG, &row.FatG,
			&row.CaloriesKcal, &row.BodyWeightKg, &row.Steps, &row.Training,
		); err != nil {
			return nil, wrap("list records", fmt.Errorf("rows scan: %w", err))
		}
		records = append(records, decodeDayRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list records", err)
	}

	return records, nil
}

func (s *Postgres) UpsertDay(ctx context.Context, clientID string, date day.Date, record day.DayRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.records.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row, err := encodeDayRow(clientID, date, record)
	if err != nil {
		return wrap("upsert day", err)
	}

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO daily_logs (
			client_id, date, record, planned, protein_g, carbs_g, fat_g,
			calories_kcal, body_weight_kg, steps, training, updated_at
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (client_id, date) DO UPDATE SET
			record = EXCLUDED.record,
			planned = EXCLUDED.planned,
			protein_g = EXCLUDED.protein_g,
			carbs_g = EXCLUDED.carbs_g,
			fat_g = EXCLUDED.fat_g,
			calories_kcal = EXCLUDED.calories_kcal,
			body_weight_kg = EXCLUDED.body_weight_kg,
			steps = EXCLUDED.steps,
			training = EXCLUDED.training,
			updated_at = EXCLUDED.updated_at;`,
		row.ClientID, row.Date, row.Record, row.Planned, row.ProteinG, row.CarbsG, row.FatG,
		row.CaloriesKcal, row.BodyWeightKg, row.Steps, row.Training, time.Now().UTC(),
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return wrap("upsert day", fmt.Errorf("%w: %s", ErrClientNotFound, clientID))
		}
		return wrap("upsert day", err)
	}

	return nil
}

const pgClientColumns = `user_id, email, name, role, targets, is_active, license_expires_at,
	has_unread_coach_msg, has_unread_client_msg, created_at`

func scanPgClient(row pgx.Row) (roster.ClientProfile, error) {
	var (
		p         roster.ClientProfile
		targets   []byte
		expiresAt *time.Time
	)
	if err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Role, &targets, &p.IsActive, &expiresAt,
		&p.HasUnreadCoachMsg, &p.HasUnreadClientMsg, &p.CreatedAt,
	); err != nil {
		return roster.ClientProfile{}, err
	}

	p.Targets = day.InitialTargets
	if t, ok := decodeTargets(targets); ok {
		p.Targets = t
	}
	p.SubscriptionExpiresAt = expiresAt

	return p, nil
}

func (s *Postgres) ListClients(ctx context.Context) (_ []roster.ClientProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := s.db.Query(
		ctx,
		`SELECT `+pgClientColumns+` FROM app_clients WHERE role = $1 ORDER BY created_at;`,
		roster.RoleClient,
	)
	if err != nil {
		return nil, wrap("list clients", err)
	}
	defer rows.Close()

	var clients []roster.ClientProfile
	for rows.Next() {
		p, err := scanPgClient(rows)
		if err != nil {
			return nil, wrap("list clients", fmt.Errorf("rows scan: %w", err))
		}
		clients = append(clients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list clients", err)
	}

	return clients, nil
}

func (s *Postgres) GetClient(ctx context.Context, clientID string) (_ *roster.ClientProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	p, err := scanPgClient(s.db.QueryRow(
		ctx,
		`SELECT `+pgClientColumns+` FROM app_clients WHERE user_id = $1;`,
		clientID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, wrap("get client", err)
	}

	return &p, nil
}

func (s *Postgres) UpsertClientRole(ctx context.Context, userID, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.upsertRole")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO app_clients (user_id, email, name, role, created_at)
		VALUES ($1, $2, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, role = EXCLUDED.role;`,
		userID, email, roster.RoleClient, time.Now().UTC(),
	)
	return wrap("upsert client role", err)
}

func (s *Postgres) CreateClient(ctx context.Context, p roster.ClientProfile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	targets, err := p.Targets.MarshalJSON()
	if err != nil {
		return wrap("create client", err)
	}

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO app_clients (user_id, email, name, role, targets, is_active, license_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		p.ID, p.Email, p.Name, roster.RoleClient, targets, p.IsActive, p.SubscriptionExpiresAt, p.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return wrap("create client", fmt.Errorf("%w: %s", ErrUserExists, p.Email))
		}
		return wrap("create client", err)
	}

	return nil
}

func (s *Postgres) UpdateClientStatus(ctx context.Context, clientID string, isActive bool, expiresAt *time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.updateStatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := s.db.Exec(
		ctx,
		`UPDATE app_clients SET is_active = $1, license_expires_at = COALESCE($2, license_expires_at)
		WHERE user_id = $3;`,
		isActive, expiresAt, clientID,
	)
	if err != nil {
		return wrap("update client status", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}

func (s *Postgres) UpdateTargets(ctx context.Context, clientID string, targets day.Targets) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.updateTargets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	targetsJSON, err := targets.MarshalJSON()
	if err != nil {
		return wrap("update targets", err)
	}

	tag, err := s.db.Exec(
		ctx,
		`UPDATE app_clients SET targets = $1 WHERE user_id = $2;`,
		targetsJSON, clientID,
	)
	if err != nil {
		return wrap("update targets", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}

// DeleteClient removes the profile; daily logs and messages go with it (ON DELETE CASCADE).
// The sign-in account is kept.
func (s *Postgres) DeleteClient(ctx context.Context, clientID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.clients.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := s.db.Exec(ctx, `DELETE FROM app_clients WHERE user_id = $1;`, clientID)
	if err != nil {
		return wrap("delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}

func (s *Postgres) AppendMessage(ctx context.Context, msg roster.Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.messages.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return wrap("append message", fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(
		ctx,
		`INSERT INTO client_messages (id, client_id, sender_id, text, created_at) VALUES ($1, $2, $3, $4, $5);`,
		msg.ID, msg.ClientID, msg.SenderID, msg.Text, msg.Timestamp,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return wrap("append message", fmt.Errorf("%w: %s", ErrClientNotFound, msg.ClientID))
		}
		return wrap("append message", err)
	}

	flagColumn := "has_unread_client_msg"
	if msg.FromCoach() {
		flagColumn = "has_unread_coach_msg"
	}
	if _, err = tx.Exec(
		ctx,
		`UPDATE app_clients SET `+flagColumn+` = TRUE WHERE user_id = $1;`,
		msg.ClientID,
	); err != nil {
		return wrap("append message", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return wrap("append message", fmt.Errorf("commit tx: %w", err))
	}

	return nil
}

func (s *Postgres) ListMessages(ctx context.Context, clientID string) (_ []roster.Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.messages.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := s.db.Query(
		ctx,
		`SELECT id::text, client_id, sender_id, text, created_at FROM client_messages
		WHERE client_id = $1
		ORDER BY seq;`,
		clientID,
	)
	if err != nil {
		return nil, wrap("list messages", err)
	}
	defer rows.Close()

	var messages []roster.Message
	for rows.Next() {
		var m roster.Message
		if err := rows.Scan(&m.ID, &m.ClientID, &m.SenderID, &m.Text, &m.Timestamp); err != nil {
			return nil, wrap("list messages", fmt.Errorf("rows scan: %w", err))
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list messages", err)
	}

	return messages, nil
}

func (s *Postgres) MarkMessagesRead(ctx context.Context, clientID string, readerIsCoach bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.messages.markRead")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	flagColumn := "has_unread_coach_msg"
	if readerIsCoach {
		flagColumn = "has_unread_client_msg"
	}
	_, err = s.db.Exec(
		ctx,
		`UPDATE app_clients SET `+flagColumn+` = FALSE WHERE user_id = $1;`,
		clientID,
	)
	return wrap("mark messages read", err)
}

func (s *Postgres) AddUser(ctx context.Context, user User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO app_users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4);`,
		user.ID, normalizeEmail(user.Email), user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return wrap("add user", fmt.Errorf("%w: %s", ErrUserExists, user.Email))
		}
		return wrap("add user", err)
	}

	return nil
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.pg.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var u User
	if err := s.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, created_at FROM app_users WHERE email = $1;`,
		normalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, wrap("get user", err)
	}

	return &u, nil
}
