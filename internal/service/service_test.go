package service

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/negative-web/internal/database"
	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/processor"
	"github.com/ds124wfegd/negative-web/internal/pkg/storage"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEchoClient struct {
	mu     sync.Mutex
	inputs []string
	reply  func(endpoint entity.Endpoint, input string) (string, error)
}

func (f *fakeEchoClient) Echo(_ context.Context, endpoint entity.Endpoint, input string) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	return f.reply(endpoint, input)
}

type fakeNegativeClient struct {
	mu    sync.Mutex
	files []*entity.SelectedFile
	reply func(file *entity.SelectedFile) (*entity.Blob, error)
}

func (f *fakeNegativeClient) Negate(_ context.Context, file *entity.SelectedFile) (*entity.Blob, error) {
	f.mu.Lock()
	f.files = append(f.files, file)
	f.mu.Unlock()
	return f.reply(file)
}

func (f *fakeNegativeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

type recordingProducer struct {
	mu     sync.Mutex
	events []entity.ArtifactEvent
}

func (p *recordingProducer) Publish(_ context.Context, event entity.ArtifactEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func (p *recordingProducer) types() []entity.ArtifactEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entity.ArtifactEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repo      database.ArtifactRepository
	producer  *recordingProducer
	artifacts ArtifactService
	sessions  SessionService
	negative  *fakeNegativeClient
	neg       NegativeService
}

func newFixture(t *testing.T, reply func(*entity.SelectedFile) (*entity.Blob, error)) *fixture {
	t.Helper()
	f := &fixture{
		repo:     database.NewArtifactRepository(storage.NewFileStorage(t.TempDir())),
		producer: &recordingProducer{},
		negative: &fakeNegativeClient{reply: reply},
	}
	f.artifacts = NewArtifactService(f.repo, f.producer, processor.NewImageProcessor(32))
	f.sessions = NewSessionService(store.NewSessions(), nil, f.artifacts, 0)
	f.neg = NewNegativeService(f.negative, f.artifacts)
	return f
}

func (f *fixture) exists(id string) bool {
	_, err := f.repo.FindByID(id)
	return err == nil
}

func pngBlob(t *testing.T) *entity.Blob {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(40, 20, color.NRGBA{R: 255, A: 255}), imaging.PNG))
	return &entity.Blob{Data: buf.Bytes(), ContentType: "image/png", Filename: "negative.png"}
}

var picked = &entity.SelectedFile{Filename: "cat.png", ContentType: "image/png", Size: 3, Data: []byte{1, 2, 3}}

func TestEchoScenario(t *testing.T) {
	client := &fakeEchoClient{reply: func(_ entity.Endpoint, input string) (string, error) {
		return "Hello " + input, nil
	}}
	svc := NewEchoService(client)
	sess, _ := store.NewSessions().Create("", store.State{})

	svc.SetInput(context.Background(), sess, "Ada")
	state, err := svc.Call(context.Background(), sess, entity.Service1)
	require.NoError(t, err)

	assert.Equal(t, "Hello Ada", state.Service1Response)
	assert.Empty(t, state.Service2Response)
	assert.Equal(t, []string{"Ada"}, client.inputs)
}

func TestEchoFailureShowsSentinel(t *testing.T) {
	client := &fakeEchoClient{reply: func(entity.Endpoint, string) (string, error) {
		return "", errors.New("dial tcp 127.0.0.1:8000: connection refused")
	}}
	svc := NewEchoService(client)
	sess, _ := store.NewSessions().Create("", store.State{})

	state, err := svc.Call(context.Background(), sess, entity.Service2)
	require.NoError(t, err)
	assert.Equal(t, entity.EchoFailureMessage, state.Service2Response)
}

func TestEchoUnknownEndpoint(t *testing.T) {
	client := &fakeEchoClient{reply: func(entity.Endpoint, string) (string, error) { return "x", nil }}
	svc := NewEchoService(client)
	sess, _ := store.NewSessions().Create("", store.State{})

	_, err := svc.Call(context.Background(), sess, entity.Endpoint("nope"))
	assert.ErrorIs(t, err, entity.ErrUnknownEndpoint)
	assert.Empty(t, client.inputs)
}

func TestEchoLatestRequestWins(t *testing.T) {
	release := make(chan struct{})
	firstEntered := make(chan struct{})
	client := &fakeEchoClient{reply: func(_ entity.Endpoint, input string) (string, error) {
		if input == "slow" {
			close(firstEntered)
			<-release
		}
		return "reply to " + input, nil
	}}
	svc := NewEchoService(client)
	sess, _ := store.NewSessions().Create("", store.State{})

	svc.SetInput(context.Background(), sess, "slow")
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Call(context.Background(), sess, entity.Service1)
	}()
	<-firstEntered

	svc.SetInput(context.Background(), sess, "fast")
	state, _ := svc.Call(context.Background(), sess, entity.Service1)
	assert.Equal(t, "reply to fast", state.Service1Response)

	close(release)
	<-done
	assert.Equal(t, "reply to fast", sess.Store.Snapshot().Service1Response)
}

func TestNegativeWithoutFile(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	sess := f.sessions.Resolve(context.Background(), "")

	state := f.neg.Create(context.Background(), sess)
	assert.Equal(t, "Please select an image file.", state.ErrorMessage)
	assert.Nil(t, state.Download)
	assert.False(t, state.Processing)
	assert.Zero(t, f.negative.calls())
}

func TestNegativeSuccess(t *testing.T) {
	var f *fixture
	var sess *store.Session
	f = newFixture(t, func(file *entity.SelectedFile) (*entity.Blob, error) {
		assert.True(t, sess.Store.Snapshot().Processing)
		return pngBlob(t), nil
	})
	sess = f.sessions.Resolve(context.Background(), "")

	f.neg.SelectFile(context.Background(), sess, picked)
	state := f.neg.Create(context.Background(), sess)

	assert.False(t, state.Processing)
	assert.Empty(t, state.ErrorMessage)
	require.NotNil(t, state.Download)
	assert.Equal(t, "/artifacts/"+state.Download.ID, state.Download.URL)
	assert.Equal(t, "/artifacts/"+state.Download.ID+"/preview", state.Download.PreviewURL)
	assert.Equal(t, 40, state.Download.Width)
	assert.Equal(t, 20, state.Download.Height)
	assert.True(t, f.exists(state.Download.ID))

	require.Equal(t, 1, f.negative.calls())
	assert.Same(t, picked, f.negative.files[0])
	assert.Equal(t, []entity.ArtifactEventType{entity.ArtifactCreated}, f.producer.types())
}

func TestNegativeNonImageBlobIsStillDownloadable(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) {
		return &entity.Blob{Data: []byte("plain bytes"), ContentType: "application/octet-stream", Filename: "negative.png"}, nil
	})
	sess := f.sessions.Resolve(context.Background(), "")
	f.neg.SelectFile(context.Background(), sess, picked)

	state := f.neg.Create(context.Background(), sess)
	require.NotNil(t, state.Download)
	assert.Empty(t, state.Download.PreviewURL)
	assert.Equal(t, int64(11), state.Download.Size)
}

func TestNegativeProxyFailure(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) {
		return nil, &entity.ProxyError{StatusCode: 500, Body: "bad image"}
	})
	sess := f.sessions.Resolve(context.Background(), "")
	f.neg.SelectFile(context.Background(), sess, picked)

	state := f.neg.Create(context.Background(), sess)
	assert.Equal(t, "Backend proxy error: bad image", state.ErrorMessage)
	assert.Nil(t, state.Download)
	assert.False(t, state.Processing)
}

func TestNegativePanicClearsProcessing(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) {
		panic("blob reader exploded")
	})
	sess := f.sessions.Resolve(context.Background(), "")
	f.neg.SelectFile(context.Background(), sess, picked)

	state := f.neg.Create(context.Background(), sess)
	assert.False(t, state.Processing)
	assert.Equal(t, "blob reader exploded", state.ErrorMessage)
	assert.Nil(t, state.Download)
}

func TestNegativeSupersededDownloadIsRevoked(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) { return pngBlob(t), nil })
	sess := f.sessions.Resolve(context.Background(), "")
	f.neg.SelectFile(context.Background(), sess, picked)

	first := f.neg.Create(context.Background(), sess).Download
	require.NotNil(t, first)

	second := f.neg.Create(context.Background(), sess).Download
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, f.exists(first.ID))
	assert.True(t, f.exists(second.ID))

	state := f.neg.SelectFile(context.Background(), sess, picked)
	assert.Nil(t, state.Download)
	assert.False(t, f.exists(second.ID))

	assert.Equal(t, []entity.ArtifactEventType{
		entity.ArtifactCreated,
		entity.ArtifactRevoked,
		entity.ArtifactCreated,
		entity.ArtifactRevoked,
	}, f.producer.types())
}

func TestTeardownReleasesArtifacts(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) { return pngBlob(t), nil })
	sess := f.sessions.Resolve(context.Background(), "")
	f.neg.SelectFile(context.Background(), sess, picked)
	download := f.neg.Create(context.Background(), sess).Download
	require.NotNil(t, download)

	assert.True(t, f.sessions.Teardown(context.Background(), sess.ID))
	assert.False(t, f.exists(download.ID))
	assert.False(t, f.sessions.Teardown(context.Background(), sess.ID))

	fresh := f.sessions.Resolve(context.Background(), sess.ID)
	assert.NotSame(t, sess, fresh)
	assert.Nil(t, fresh.Store.Snapshot().Download)
}

func TestLateResultAfterTeardownIsRevoked(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	blob := pngBlob(t)
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) {
		close(entered)
		<-release
		return blob, nil
	})
	sess := f.sessions.Resolve(context.Background(), "")
	f.neg.SelectFile(context.Background(), sess, picked)

	done := make(chan store.State)
	go func() { done <- f.neg.Create(context.Background(), sess) }()
	<-entered

	f.sessions.Teardown(context.Background(), sess.ID)
	close(release)
	state := <-done

	assert.Nil(t, state.Download)
	assert.Equal(t, []entity.ArtifactEventType{entity.ArtifactCreated, entity.ArtifactRevoked}, f.producer.types())
}

func TestTeardownAllRevokesDownloads(t *testing.T) {
	f := newFixture(t, func(*entity.SelectedFile) (*entity.Blob, error) { return pngBlob(t), nil })

	var ids []string
	for i := 0; i < 3; i++ {
		sess := f.sessions.Resolve(context.Background(), "")
		f.neg.SelectFile(context.Background(), sess, picked)
		ids = append(ids, f.neg.Create(context.Background(), sess).Download.ID)
	}

	f.sessions.TeardownAll(context.Background())
	for _, id := range ids {
		assert.False(t, f.exists(id))
	}
}

type memorySnapshots struct {
	mu    sync.Mutex
	items map[string]entity.UIState
	saves int
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, id string, state entity.UIState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.items[id] = state
	return nil
}

func (m *memorySnapshots) LoadSnapshot(_ context.Context, id string) (*entity.UIState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (m *memorySnapshots) DeleteSnapshot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func TestSessionRestoredFromSnapshot(t *testing.T) {
	snaps := &memorySnapshots{items: map[string]entity.UIState{}}
	f := newFixture(t, nil)
	echo := NewEchoService(&fakeEchoClient{reply: func(_ entity.Endpoint, in string) (string, error) {
		return "Hello World, " + in, nil
	}})

	before := NewSessionService(store.NewSessions(), snaps, f.artifacts, 0)
	sess := before.Resolve(context.Background(), "")
	echo.SetInput(context.Background(), sess, "Ada")
	echo.Call(context.Background(), sess, entity.Service1)

	// a new process with empty memory
	after := NewSessionService(store.NewSessions(), snaps, f.artifacts, 0)
	restored := after.Resolve(context.Background(), sess.ID)

	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, "Ada", restored.Store.Snapshot().InputText)
	assert.Equal(t, "Hello World, Ada", restored.Store.Snapshot().Service1Response)

	after.Teardown(context.Background(), restored.ID)
	snap, _ := snaps.LoadSnapshot(context.Background(), sess.ID)
	assert.Nil(t, snap)
}

func TestConcurrentResolveMirrorsOnce(t *testing.T) {
	snaps := &memorySnapshots{items: map[string]entity.UIState{}}
	f := newFixture(t, nil)
	svc := NewSessionService(store.NewSessions(), snaps, f.artifacts, 0)
	echo := NewEchoService(&fakeEchoClient{reply: func(entity.Endpoint, string) (string, error) {
		return "", nil
	}})

	id := "0b6c3a7e-2f41-4d7c-9e55-3c1d2a8b9f00"
	resolved := make([]*store.Session, 8)

	var wg sync.WaitGroup
	for i := range resolved {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolved[i] = svc.Resolve(context.Background(), id)
		}()
	}
	wg.Wait()

	for _, sess := range resolved {
		require.Same(t, resolved[0], sess)
	}

	echo.SetInput(context.Background(), resolved[0], "Ada")

	snaps.mu.Lock()
	defer snaps.mu.Unlock()
	assert.Equal(t, 1, snaps.saves)
}

func TestTeardownIdle(t *testing.T) {
	f := newFixture(t, nil)
	sessions := store.NewSessions()
	svc := NewSessionService(sessions, nil, f.artifacts, 20*time.Millisecond)

	svc.Resolve(context.Background(), "")
	svc.Resolve(context.Background(), "")
	time.Sleep(40 * time.Millisecond)
	active := svc.Resolve(context.Background(), "")

	assert.Equal(t, 2, svc.TeardownIdle(context.Background()))
	assert.Equal(t, 1, sessions.Len())
	_, ok := sessions.Get(active.ID)
	assert.True(t, ok)
}
