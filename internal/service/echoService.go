package service

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/sirupsen/logrus"
)

type echoService struct {
	client EchoClient
}

func NewEchoService(client EchoClient) EchoService {
	return &echoService{client: client}
}

func (s *echoService) SetInput(_ context.Context, sess *store.Session, text string) store.State {
	return sess.Store.Dispatch(store.SetInput{Text: text}).Next
}

// Call sends the current input to endpoint and stores the reply, or the
// fixed failure text. Client errors never reach the caller; only an
// unknown endpoint does.
func (s *echoService) Call(ctx context.Context, sess *store.Session, endpoint entity.Endpoint) (store.State, error) {
	if !endpoint.Valid() {
		return sess.Store.Snapshot(), fmt.Errorf("%w: %q", entity.ErrUnknownEndpoint, endpoint)
	}

	started := sess.Store.Dispatch(store.EchoStarted{Endpoint: endpoint})
	gen := started.Next.Generation(store.SlotFor(endpoint))

	// started requests run to completion even if the page goes away
	message, err := s.client.Echo(context.WithoutCancel(ctx), endpoint, started.Next.InputText)

	var tr store.Transition
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"session":  sess.ID,
			"endpoint": endpoint,
		}).Errorf("Error calling %s: %v", endpoint, err)
		tr = sess.Store.Dispatch(store.EchoFailed{Endpoint: endpoint, Generation: gen})
	} else {
		tr = sess.Store.Dispatch(store.EchoSucceeded{Endpoint: endpoint, Generation: gen, Message: message})
	}

	if !tr.Applied {
		logrus.WithField("session", sess.ID).Debugf("Dropped stale %s response (generation %d)", endpoint, gen)
	}
	return sess.Store.Snapshot(), nil
}
