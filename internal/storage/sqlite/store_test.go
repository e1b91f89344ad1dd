package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/storage"
	"github.com/mcoot/sessiongate/internal/storage/storagetest"
)

type StoreSuite struct {
	storagetest.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	s := new(StoreSuite)
	s.NewStorage = func() storage.Storage {
		store, err := Open(filepath.Join(s.T().TempDir(), "sessiongate.db"))
		s.Require().NoError(err)
		s.store = store
		return store
	}
	suite.Run(t, s)
}

func (s *StoreSuite) TearDownTest() {
	_ = s.store.Close()
}

func (s *StoreSuite) TestRejectsInvalidStoredSessionID() {
	_, err := s.store.sqlDB.Exec(`INSERT INTO sessions (id, created, active, settings) VALUES ('bad', 0, 1, '')`)
	s.Require().NoError(err)

	_, err = s.Storage.ListSessions(s.Ctx)
	s.ErrorIs(err, model.ErrInvalidSessionID)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessiongate.db")
	ctx := context.Background()
	sid := model.MustParseSessionID("ABCDEFGH")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateSession(ctx, &model.Session{ID: sid, Active: true}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetSession(ctx, sid)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestCloseNilStore(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Close())
}
