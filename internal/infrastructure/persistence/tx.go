package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

const defaultBatchSize = 100

// withTransaction выполняет fn в транзакции. Ошибки fn возвращаются как есть.
func withTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// batchInserter копит строки и вставляет их одним INSERT ... VALUES (...), (...).
type batchInserter struct {
	tx          *sqlx.Tx
	query       string
	fieldsCount int
	batchSize   int
	values      []interface{}
	rowCount    int
}

func newBatchInserter(tx *sqlx.Tx, baseQuery string, fieldsCount, batchSize int) *batchInserter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &batchInserter{
		tx:          tx,
		query:       baseQuery,
		fieldsCount: fieldsCount,
		batchSize:   batchSize,
		values:      make([]interface{}, 0, batchSize*fieldsCount),
	}
}

func (bi *batchInserter) Add(ctx context.Context, rowValues ...interface{}) error {
	if len(rowValues) != bi.fieldsCount {
		return fmt.Errorf("batch insert: ожидалось %d полей, получено %d", bi.fieldsCount, len(rowValues))
	}

	bi.values = append(bi.values, rowValues...)
	bi.rowCount++

	if bi.rowCount >= bi.batchSize {
		return bi.Flush(ctx)
	}
	return nil
}

func (bi *batchInserter) Flush(ctx context.Context) error {
	if bi.rowCount == 0 {
		return nil
	}

	query := bi.query + " VALUES " + valuesPlaceholders(bi.rowCount, bi.fieldsCount)
	if _, err := bi.tx.ExecContext(ctx, query, bi.values...); err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}

	bi.values = bi.values[:0]
	bi.rowCount = 0
	return nil
}

// valuesPlaceholders строит ($1, $2), ($3, $4), ...
func valuesPlaceholders(rows, fields int) string {
	var b strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := 0; j < fields; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*fields+j+1)
		}
		b.WriteByte(')')
	}
	return b.String()
}
