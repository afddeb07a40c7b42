package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

// Ensure SQLiteRepository implements Store.
var _ Store = (*SQLiteRepository)(nil)

// SQLiteRepository implements Store on a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *core.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = core.NowMillis()
	}
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg any) (*core.User, error) {
	user := &core.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE `+where, arg,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp == 0 {
		e.Timestamp = core.NowMillis()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, timestamp, amount_cents, description, destination)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.AccountID, e.Timestamp, e.Amount.Cents, e.Description, e.Destination,
	)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// UpdateExpense replaces amount, description, timestamp and destination
// wholesale. Rows outside the expense's account are invisible.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET timestamp = ?, amount_cents = ?, description = ?, destination = ?
		 WHERE id = ? AND user_id = ?`,
		e.Timestamp, e.Amount.Cents, e.Description, e.Destination, e.ID, e.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", id, accountID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, accountID string, tr *TimeRange) ([]core.Expense, error) {
	query := `SELECT id, user_id, timestamp, amount_cents, description, destination
		 FROM expenses WHERE user_id = ?`
	args := []any{accountID}
	if tr != nil {
		query += " AND timestamp >= ? AND timestamp <= ?"
		args = append(args, tr.Start, tr.End)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Timestamp, &e.Amount.Cents, &e.Description, &e.Destination); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// --- deposits ---

func (r *SQLiteRepository) CreateDeposit(ctx context.Context, d *core.Deposit) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Timestamp == 0 {
		d.Timestamp = core.NowMillis()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deposits (id, user_id, timestamp, amount_cents, description, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.AccountID, d.Timestamp, d.Amount.Cents, d.Description, d.Source,
	)
	if err != nil {
		return fmt.Errorf("create deposit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateDeposit(ctx context.Context, d core.Deposit) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deposits SET timestamp = ?, amount_cents = ?, description = ?, source = ?
		 WHERE id = ? AND user_id = ?`,
		d.Timestamp, d.Amount.Cents, d.Description, d.Source, d.ID, d.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteDeposit(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM deposits WHERE id = ? AND user_id = ?", id, accountID)
	if err != nil {
		return fmt.Errorf("delete deposit: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListDeposits(ctx context.Context, accountID string, tr *TimeRange) ([]core.Deposit, error) {
	query := `SELECT id, user_id, timestamp, amount_cents, description, source
		 FROM deposits WHERE user_id = ?`
	args := []any{accountID}
	if tr != nil {
		query += " AND timestamp >= ? AND timestamp <= ?"
		args = append(args, tr.Start, tr.End)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []core.Deposit
	for rows.Next() {
		var d core.Deposit
		if err := rows.Scan(&d.ID, &d.AccountID, &d.Timestamp, &d.Amount.Cents, &d.Description, &d.Source); err != nil {
			return nil, fmt.Errorf("scan deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deposits: %w", err)
	}
	return deposits, nil
}

// --- owners ---

func (r *SQLiteRepository) CreateOwner(ctx context.Context, o *core.Owner) error {
	var existing int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM owners WHERE user_id = ? AND name = ?",
		o.AccountID, o.Name,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("check owner name: %w", err)
	}
	if existing > 0 {
		return ErrOwnerExists
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO owners (id, user_id, name) VALUES (?, ?, ?)",
		o.ID, o.AccountID, o.Name,
	)
	if err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListOwners(ctx context.Context, accountID string) ([]core.Owner, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name FROM owners WHERE user_id = ? ORDER BY name", accountID)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []core.Owner
	for rows.Next() {
		var o core.Owner
		if err := rows.Scan(&o.ID, &o.AccountID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

// DeleteOwner removes the owner only; transactions referencing the name keep
// their stale reference.
func (r *SQLiteRepository) DeleteOwner(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM owners WHERE id = ? AND user_id = ?", id, accountID)
	if err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
