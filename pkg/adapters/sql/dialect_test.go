package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	q := `SELECT data FROM t WHERE a = ? AND b = ?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `SELECT data FROM t WHERE a = $1 AND b = $2`, Postgres.rebind(q))
}
