package service

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/sirupsen/logrus"
)

type negativeService struct {
	dispatcher
	client NegativeClient
}

func NewNegativeService(client NegativeClient, artifacts ArtifactService) NegativeService {
	return &negativeService{
		dispatcher: dispatcher{artifacts: artifacts},
		client:     client,
	}
}

func (s *negativeService) SelectFile(ctx context.Context, sess *store.Session, file *entity.SelectedFile) store.State {
	return s.dispatch(ctx, sess, store.SelectFile{File: file}).Next
}

// Create uploads the selected file and exposes the proxy's reply as the
// session's download. The processing flag is cleared on every path,
// panics included.
func (s *negativeService) Create(ctx context.Context, sess *store.Session) (state store.State) {
	if sess.Store.Snapshot().SelectedFile == nil {
		return s.dispatch(ctx, sess, store.NegativeRejected{Message: entity.NoFileSelectedMessage}).Next
	}

	// started requests run to completion even if the page goes away
	ctx = context.WithoutCancel(ctx)

	started := s.dispatch(ctx, sess, store.NegativeStarted{})
	gen := started.Next.Generation(store.SlotNegative)
	log := logrus.WithFields(logrus.Fields{"session": sess.ID, "generation": gen})

	var outcome store.Action
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Negative image request panicked: %v", r)
			outcome = store.NegativeFailed{Generation: gen, Message: fmt.Sprint(r)}
		}
		s.settle(ctx, sess, outcome)
		state = sess.Store.Snapshot()
	}()

	artifact, err := s.run(ctx, sess.ID, started.Next.SelectedFile)
	if err != nil {
		log.Errorf("Negative image request failed: %v", err)
		outcome = store.NegativeFailed{Generation: gen, Message: err.Error()}
		return
	}

	log.WithField("artifact", artifact.ID).Info("Negative image ready")
	outcome = store.NegativeSucceeded{Generation: gen, Artifact: artifact}
	return
}

func (s *negativeService) run(ctx context.Context, sessionID string, file *entity.SelectedFile) (*entity.Artifact, error) {
	blob, err := s.client.Negate(ctx, file)
	if err != nil {
		return nil, err
	}
	return s.artifacts.Store(ctx, sessionID, blob)
}

func (s *negativeService) settle(ctx context.Context, sess *store.Session, outcome store.Action) {
	tr := s.dispatch(ctx, sess, outcome)
	if tr.Applied {
		return
	}
	// a newer attempt or a reset owns the state now
	if done, ok := outcome.(store.NegativeSucceeded); ok {
		s.artifacts.Revoke(ctx, done.Artifact, "stale")
	}
}
