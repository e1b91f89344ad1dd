package realtime

import (
	"errors"
	"sync"

	"github.com/mcoot/sessiongate/internal/model"
)

var errFakeWrite = errors.New("fake write failure")

type fakeSocket struct {
	mu         sync.Mutex
	messages   []string
	dead       bool
	failWrites bool
	closeCalls int
}

func (s *fakeSocket) WriteText(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites || s.dead || s.closeCalls > 0 {
		return errFakeWrite
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeSocket) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.dead && s.closeCalls == 0
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return nil
}

func (s *fakeSocket) kill() {
	s.mu.Lock()
	s.dead = true
	s.mu.Unlock()
}

func (s *fakeSocket) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func (s *fakeSocket) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls > 0
}

func playerAdmission(sid string, uid model.UserID) Admission {
	return Admission{
		Kind:      KindPlayer,
		SessionID: model.MustParseSessionID(sid),
		UserID:    &uid,
	}
}

func adminAdmission() Admission {
	return Admission{Kind: KindAdmin}
}
