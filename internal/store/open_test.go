package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devabdallah1411/arabFilmsServer/internal/config"
	"github.com/devabdallah1411/arabFilmsServer/internal/logging"
)

func TestOpen_Memory(t *testing.T) {
	stores, closeFn, err := Open(context.Background(), &config.Config{StoreDriver: "memory"}, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.Contacts)
	assert.NoError(t, closeFn(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"}, logging.Discard())
	assert.Error(t, err)
}
