package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func TestMarshalList_EmptyIsArray(t *testing.T) {
	b, err := marshalList[domain.Subtask](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	b, err = marshalList([]domain.Subtask{{ID: "s1", Title: "one"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"s1"`)
}

func TestMarshalList_ReturnsEncodeError(t *testing.T) {
	b, err := marshalList([]chan int{make(chan int)})
	require.Error(t, err)
	assert.Nil(t, b)
}

func TestUnmarshalList_RejectsCorruptColumn(t *testing.T) {
	out, err := unmarshalList[domain.Comment]([]byte(`[{"id":"c1","body":"hi"}]`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c1", out[0].ID)

	out, err = unmarshalList[domain.Comment]([]byte(`[]`))
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = unmarshalList[domain.Comment]([]byte(`{not json`))
	assert.Error(t, err)
}

func TestMapDuplicateError_UniqueViolation(t *testing.T) {
	err := mapDuplicateError(fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationSQL}), "task", "t1")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
	assert.Contains(t, err.Error(), "task t1")

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, mapDuplicateError(other, "task", "t1"))

	boom := errors.New("boom")
	assert.Equal(t, boom, mapDuplicateError(boom, "project", "p1"))
	assert.NoError(t, mapDuplicateError(nil, "task", "t1"))
}
