package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/negative-web/internal/database"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/sirupsen/logrus"
)

type sessionService struct {
	dispatcher
	sessions  *store.Sessions
	snapshots database.SnapshotRepository
	idleTTL   time.Duration
	now       func() time.Time
}

func NewSessionService(sessions *store.Sessions, snapshots database.SnapshotRepository, artifacts ArtifactService, idleTTL time.Duration) SessionService {
	if snapshots == nil {
		snapshots = database.NopSnapshotRepository{}
	}
	return &sessionService{
		dispatcher: dispatcher{artifacts: artifacts},
		sessions:   sessions,
		snapshots:  snapshots,
		idleTTL:    idleTTL,
		now:        time.Now,
	}
}

// Resolve returns the live session for id, restoring its mirrored
// snapshot or starting a fresh one when it is not in memory.
func (s *sessionService) Resolve(ctx context.Context, id string) *store.Session {
	if id != "" {
		if sess, ok := s.sessions.Get(id); ok {
			return sess
		}
	}

	initial := store.State{}
	if id != "" {
		snap, err := s.snapshots.LoadSnapshot(ctx, id)
		if err != nil {
			logrus.Warnf("Could not load snapshot for session %s: %v", id, err)
		} else if snap != nil {
			initial = store.Restore(*snap)
			logrus.Debugf("Restored session %s from snapshot", id)
		}
	}

	sess, created := s.sessions.Create(id, initial)
	if created {
		sess.Store.Subscribe(s.mirror(sess.ID))
	}
	return sess
}

func (s *sessionService) mirror(sessionID string) store.Observer {
	return func(state store.State) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.snapshots.SaveSnapshot(ctx, sessionID, state.UIState); err != nil {
			logrus.Warnf("Could not mirror snapshot for session %s: %v", sessionID, err)
		}
	}
}

func (s *sessionService) Reset(ctx context.Context, sess *store.Session) store.State {
	return s.dispatch(ctx, sess, store.Reset{}).Next
}

// Teardown drops the session, invalidates its in-flight requests and
// releases its download.
func (s *sessionService) Teardown(ctx context.Context, id string) bool {
	sess, ok := s.sessions.Remove(id)
	if !ok {
		return false
	}

	s.dispatch(ctx, sess, store.Reset{})
	if err := s.snapshots.DeleteSnapshot(ctx, id); err != nil {
		logrus.Warnf("Could not delete snapshot for session %s: %v", id, err)
	}
	return true
}

func (s *sessionService) TeardownIdle(ctx context.Context) int {
	if s.idleTTL <= 0 {
		return 0
	}

	count := 0
	for _, sess := range s.sessions.IdleSince(s.now().Add(-s.idleTTL)) {
		if s.Teardown(ctx, sess.ID) {
			count++
		}
	}
	return count
}

// TeardownAll releases every session's download. Snapshots are kept so
// sessions survive a restart.
func (s *sessionService) TeardownAll(ctx context.Context) {
	for _, sess := range s.sessions.All() {
		if _, ok := s.sessions.Remove(sess.ID); ok {
			s.artifacts.Revoke(ctx, sess.Store.Snapshot().Download, "shutdown")
		}
	}
}
