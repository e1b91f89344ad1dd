package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sessiongate/internal/storage"
	"github.com/mcoot/sessiongate/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage { return New() }
	suite.Run(t, s)
}

func (s *StorageSuite) TestReturnedSessionsAreCopies() {
	sid := s.MustCreateSession("ABCDEFGH", true, 0)
	got, err := s.Storage.GetSession(s.Ctx, sid)
	s.Require().NoError(err)
	got.Active = false

	again, err := s.Storage.GetSession(s.Ctx, sid)
	s.Require().NoError(err)
	s.True(again.Active)
}
