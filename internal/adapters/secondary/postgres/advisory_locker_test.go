package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

type fakeRow struct {
	unlocked bool
	err      error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.unlocked
	return nil
}

type fakeConn struct {
	row      fakeRow
	args     []any
	released bool
	closed   bool
}

func (c *fakeConn) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	c.args = args
	return c.row
}

func (c *fakeConn) Release() { c.released = true }

func (c *fakeConn) Close(context.Context) error {
	c.closed = true
	return nil
}

func TestUnlock_ReleasesConnection(t *testing.T) {
	conn := &fakeConn{row: fakeRow{unlocked: true}}

	err := unlock(context.Background(), conn, "churn")

	assert.NoError(t, err)
	assert.Equal(t, []any{"sagemaker-deployer/churn"}, conn.args)
	assert.True(t, conn.released)
	assert.False(t, conn.closed)
}

func TestUnlock_NotHeldStillReleases(t *testing.T) {
	conn := &fakeConn{row: fakeRow{unlocked: false}}

	assert.NoError(t, unlock(context.Background(), conn, "churn"))
	assert.True(t, conn.released)
}

func TestUnlock_FailureClosesConnection(t *testing.T) {
	boom := errors.New("conn reset by peer")
	conn := &fakeConn{row: fakeRow{err: boom}}

	err := unlock(context.Background(), conn, "churn")

	assert.ErrorIs(t, err, boom)
	assert.True(t, conn.closed)
	assert.False(t, conn.released)
}
