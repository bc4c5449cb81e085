package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsMalformedURL(t *testing.T) {
	db, err := New(context.Background(), "postgres://tree@localhost:notaport/tree", PoolOptions{MaxConns: 2})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "parse tree database URL")
}

func TestHealth_UninitializedPool(t *testing.T) {
	var db *DB
	require.Error(t, db.Health(context.Background()))

	require.Error(t, (&DB{}).Health(context.Background()))
}
