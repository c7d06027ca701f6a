package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskboard/domain"
)

// marshalList encodes a slice as a JSON array, never null.
func marshalList[T any](items []T) ([]byte, error) {
	if len(items) == 0 {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", items, err)
	}
	return b, nil
}

func unmarshalList[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %T: %w", out, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// mapDuplicateError turns a primary key collision into ErrDuplicateID.
func mapDuplicateError(err error, kind, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationSQL {
		return domain.Wrapf(domain.ErrDuplicateID, "%s %s", kind, id)
	}
	return err
}

func nullTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

type scanner interface {
	Scan(dest ...interface{}) error
}
