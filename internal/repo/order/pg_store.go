package order_repo

import (
	"context"
	"errors"
	"fmt"

	"paypalplus/internal/controller/apperror"
	"paypalplus/internal/domain/order"
	"paypalplus/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// PgStore is the Postgres order store.
type PgStore struct {
	pg *postgres.Postgres
	store
}

var _ order.Store = (*PgStore)(nil)

// NewPgStore creates the store on top of a connection pool.
func NewPgStore(pg *postgres.Postgres) *PgStore {
	return &PgStore{
		pg:    pg,
		store: store{db: pg.Pool, builder: pg.Builder},
	}
}

// InTransaction runs fn against a transaction-scoped store. Inside the
// transaction, order reads take a row lock (FOR UPDATE), which serializes
// concurrent reconciliations of the same order.
func (s *PgStore) InTransaction(ctx context.Context, fn func(tx order.TxStore) error) error {
	return s.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		txStore := &store{db: tx, builder: s.pg.Builder, forUpdate: true}
		return fn(txStore)
	})
}

type store struct {
	db        postgres.Executor
	builder   squirrel.StatementBuilderType
	forUpdate bool
}

var orderColumns = []string{
	"id", "order_key", "status", "currency", "total", "total_refunded",
	"transaction_id", "created_at", "updated_at",
}

func (s *store) FindByID(ctx context.Context, id int64) (order.Order, error) {
	query := s.builder.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"id": id})
	if s.forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("build find query: %w", err)
	}

	o, err := scanOrder(s.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, apperror.ErrOrderNotFound
	}
	return o, err
}

func (s *store) FindIDByKey(ctx context.Context, key string) (int64, error) {
	sql, args, err := s.builder.Select("id").
		From("orders").
		Where(squirrel.Eq{"order_key": key}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build find-by-key query: %w", err)
	}

	var id int64
	err = s.db.QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.ErrOrderNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find order id by key: %w", err)
	}
	return id, nil
}

func (s *store) SetStatus(ctx context.Context, id int64, status order.Status, note string) error {
	sql, args, err := s.builder.Update("orders").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrOrderNotFound
	}

	if note != "" {
		return s.AddNote(ctx, id, note)
	}
	return nil
}

func (s *store) MarkPaid(ctx context.Context, id int64, transactionID, note string) error {
	if note != "" {
		if err := s.AddNote(ctx, id, note); err != nil {
			return err
		}
	}

	sql, args, err := s.builder.Update("orders").
		Set("status", order.StatusProcessing).
		Set("transaction_id", transactionID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark-paid update: %w", err)
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrOrderNotFound
	}
	return nil
}

func (s *store) AddNote(ctx context.Context, id int64, note string) error {
	sql, args, err := s.builder.Insert("order_notes").
		Columns("order_id", "note").
		Values(id, note).
		ToSql()
	if err != nil {
		return fmt.Errorf("build note insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("add order note: %w", err)
	}
	return nil
}

func (s *store) SetMeta(ctx context.Context, id int64, key, value string) error {
	sql, args, err := s.builder.Insert("order_meta").
		Columns("order_id", "meta_key", "meta_value").
		Values(id, key, value).
		Suffix("ON CONFLICT (order_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build meta upsert: %w", err)
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set order meta: %w", err)
	}
	return nil
}

func (s *store) RecordRefund(ctx context.Context, id int64, amount float64) error {
	sql, args, err := s.builder.Update("orders").
		Set("total_refunded", squirrel.Expr("total_refunded + ?", amount)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build refund update: %w", err)
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("record refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrOrderNotFound
	}
	return nil
}

func (s *store) GetNotes(ctx context.Context, id int64) ([]order.Note, error) {
	sql, args, err := s.builder.Select("id", "order_id", "note", "created_at").
		From("order_notes").
		Where(squirrel.Eq{"order_id": id}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notes query: %w", err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []order.Note
	for rows.Next() {
		var n order.Note
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note rows: %w", err)
	}
	return notes, nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	var rawStatus string
	err := row.Scan(
		&o.ID, &o.Key, &rawStatus, &o.Currency, &o.Total, &o.TotalRefunded,
		&o.TransactionID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	status, err := order.NewStatus(rawStatus)
	if err != nil {
		return order.Order{}, fmt.Errorf("invalid status in database: %w", err)
	}
	o.Status = status

	return o, nil
}
