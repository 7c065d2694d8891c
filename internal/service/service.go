package service

import (
	"context"
	"io"

	"github.com/ds124wfegd/negative-web/internal/database"
	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/backend"
	"github.com/ds124wfegd/negative-web/internal/store"
)

type EchoClient interface {
	Echo(ctx context.Context, endpoint entity.Endpoint, input string) (string, error)
}

type NegativeClient interface {
	Negate(ctx context.Context, file *entity.SelectedFile) (*entity.Blob, error)
}

type Prober interface {
	Probe(ctx context.Context, endpoint entity.Endpoint) backend.ProbeResult
}

type EchoService interface {
	SetInput(ctx context.Context, sess *store.Session, text string) store.State
	Call(ctx context.Context, sess *store.Session, endpoint entity.Endpoint) (store.State, error)
}

type NegativeService interface {
	SelectFile(ctx context.Context, sess *store.Session, file *entity.SelectedFile) store.State
	Create(ctx context.Context, sess *store.Session) store.State
}

type ArtifactService interface {
	Store(ctx context.Context, sessionID string, blob *entity.Blob) (*entity.Artifact, error)
	Revoke(ctx context.Context, artifact *entity.Artifact, reason string)
	Open(id string, kind database.FileKind) (io.ReadCloser, *entity.Artifact, error)
}

type SessionService interface {
	Resolve(ctx context.Context, id string) *store.Session
	Reset(ctx context.Context, sess *store.Session) store.State
	Teardown(ctx context.Context, id string) bool
	TeardownIdle(ctx context.Context) int
	TeardownAll(ctx context.Context)
}

type HealthService interface {
	Backends(ctx context.Context) ([]backend.ProbeResult, error)
}

// Services bundles everything the transport layer needs.
type Services struct {
	Echo      EchoService
	Negative  NegativeService
	Artifacts ArtifactService
	Sessions  SessionService
	Health    HealthService
}

// dispatcher applies actions and releases any download a transition drops.
type dispatcher struct {
	artifacts ArtifactService
}

func (d dispatcher) dispatch(ctx context.Context, sess *store.Session, a store.Action) store.Transition {
	tr := sess.Store.Dispatch(a)
	if tr.Applied && tr.Superseded() {
		d.artifacts.Revoke(ctx, tr.Prev.Download, "superseded")
	}
	return tr
}
