package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewAdRepository(t *testing.T) {
	db := &Connection{}
	repo := NewAdRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewPaymentRepository(t *testing.T) {
	db := &Connection{}
	repo := NewPaymentRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestConnection_PingNilPool(t *testing.T) {
	conn := &Connection{}

	assert.Error(t, conn.Ping(testContext(t)))
	assert.NoError(t, conn.Close())
}
