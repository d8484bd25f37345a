package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "dashboard:u1", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "dashboard:u1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "dashboard:u1:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
