package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Order selects ascending or descending date order for range queries.
type Order int

const (
	Ascending Order = iota
	Descending
)

// DateRange bounds a query over the ISO date column. Start is inclusive; End
// is exclusive unless IncludeEnd is set. Empty bounds are open.
type DateRange struct {
	Start      string
	End        string
	IncludeEnd bool
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, dedup_key, date, amount, direction, category_id, account, source,
	description_enc, raw_balance, reference_id, created_at`

// Insert stores t and returns its assigned id. A dedup key that is already
// present yields *DuplicateKeyError and nothing is written.
func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 dedup_key, date, amount, direction, category_id, account, source,
	 description_enc, raw_balance, reference_id, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		t.DedupKey, t.Date, t.Amount, t.Direction, t.CategoryID, t.Account, t.Source,
		t.DescriptionEnc, t.RawBalance, t.ReferenceID, t.CreatedAt)
	if err != nil {
		return 0, duplicateOr(err, "transactions", t.DedupKey)
	}
	return res.LastInsertId()
}

func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListByDateRange returns transactions whose date falls in dr, ordered by
// date then id in the requested direction.
func (r *TransactionRepo) ListByDateRange(ctx context.Context, dr DateRange, order Order) ([]Transaction, error) {
	where, args := dr.clause()
	query := "SELECT " + transactionColumns + " FROM transactions"
	if where != "" {
		query += " WHERE " + where
	}
	if order == Descending {
		query += " ORDER BY date DESC, id DESC"
	} else {
		query += " ORDER BY date ASC, id ASC"
	}
	return r.query(ctx, query, args...)
}

// ListAll scans the whole table in id order.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]Transaction, error) {
	return r.query(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY id")
}

// UpdateCategory sets or clears (nil) the category and reports whether the
// row exists.
func (r *TransactionRepo) UpdateCategory(ctx context.Context, id int64, categoryID *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountUncategorized counts rows in dr without a category.
func (r *TransactionRepo) CountUncategorized(ctx context.Context, dr DateRange) (int, error) {
	where, args := dr.clause()
	query := "SELECT COUNT(*) FROM transactions WHERE category_id IS NULL"
	if where != "" {
		query += " AND " + where
	}
	var n int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// clause renders dr as a WHERE fragment over the date column. Open bounds
// contribute nothing.
func (dr DateRange) clause() (string, []interface{}) {
	var where []string
	var args []interface{}
	if dr.Start != "" {
		where = append(where, "date >= ?")
		args = append(args, dr.Start)
	}
	if dr.End != "" {
		if dr.IncludeEnd {
			where = append(where, "date <= ?")
		} else {
			where = append(where, "date < ?")
		}
		args = append(args, dr.End)
	}
	return strings.Join(where, " AND "), args
}

func (r *TransactionRepo) query(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// scanTransaction handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var category, reference sql.NullString
	if err := row.Scan(&t.ID, &t.DedupKey, &t.Date, &t.Amount, &t.Direction, &category, &t.Account,
		&t.Source, &t.DescriptionEnc, &t.RawBalance, &reference, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	if category.Valid {
		t.CategoryID = &category.String
	}
	if reference.Valid {
		t.ReferenceID = &reference.String
	}
	return t, nil
}
