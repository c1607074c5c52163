package postgres

import (
	"database/sql"
	"errors"
	"time"
)

const defaultBatchSize = 500

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time
	return &out
}

func emptyIfNull(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// batches splits items into consecutive slices of at most size elements.
func batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = defaultBatchSize
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
