package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := SetupTestDB(t)
	t.Cleanup(db.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.HealthCheck(ctx))

	db.Close()
	err := db.HealthCheck(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check failed")
}
