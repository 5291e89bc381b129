package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/dbx"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
	"github.com/graviox/roundcube-carddav/internal/server/models"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/contacts"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/servers"
)

// -------- registry storage --------

type memServers struct {
	servers.Repository

	mu        sync.Mutex
	rows      []models.ServerConfig
	createErr error
	listErr   error
	creates   int
}

func (m *memServers) List(ctx context.Context, ownerID string) ([]models.ServerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.ServerConfig{}
	for _, r := range m.rows {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memServers) Get(ctx context.Context, ownerID, id string) (*models.ServerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OwnerID == ownerID && r.ID == id {
			c := r
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memServers) Create(ctx context.Context, s *models.ServerConfig) (*models.ServerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return nil, m.createErr
	}
	s.CreatedAt = time.Unix(int64(len(m.rows)), 0)
	m.rows = append(m.rows, *s)
	return s, nil
}

func (m *memServers) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.OwnerID == ownerID && r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memServers) Exists(ctx context.Context, ownerID string) (bool, error) {
	rows, err := m.List(ctx, ownerID)
	return len(rows) > 0, err
}

func (m *memServers) count(ownerID string) int {
	rows, _ := m.List(context.Background(), ownerID)
	return len(rows)
}

type fakeRepoManager struct {
	servers *memServers
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Servers(dbx.DBTX) servers.Repository         { return f.servers }
func (f *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository       { return nil }

// -------- cipher --------

type prefixCipher struct {
	decryptErr error
}

func (prefixCipher) Encrypt(p []byte) ([]byte, error) {
	return append([]byte("sealed:"), p...), nil
}

func (c prefixCipher) Decrypt(s []byte) ([]byte, error) {
	if c.decryptErr != nil {
		return nil, c.decryptErr
	}
	rest, ok := strings.CutPrefix(string(s), "sealed:")
	if !ok {
		return nil, errors.New("not sealed")
	}
	return []byte(rest), nil
}

// -------- protocol client --------

type fakeClient struct {
	checkErr error
	syncErr  error
	objects  []directory.Object
	block    bool

	mu    sync.Mutex
	syncs int
}

func (c *fakeClient) CheckConnection(ctx context.Context) error { return c.checkErr }

func (c *fakeClient) Synchronize(ctx context.Context, sink directory.Sink) error {
	c.mu.Lock()
	c.syncs++
	c.mu.Unlock()

	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if c.syncErr != nil {
		return c.syncErr
	}

	known, err := sink.Known(ctx)
	if err != nil {
		return err
	}
	for _, o := range c.objects {
		if known[o.Href] == o.ETag {
			continue
		}
		if err := sink.Put(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeClient) syncCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncs
}

type fakeFactory struct {
	mu        sync.Mutex
	byURL     map[string]*fakeClient
	calls     int
	passwords []string
	usernames []string
	urls      []string
	err       error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{byURL: map[string]*fakeClient{}}
}

func (f *fakeFactory) NewClient(creds directory.Credentials) (directory.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.passwords = append(f.passwords, string(creds.Password))
	f.usernames = append(f.usernames, creds.Username)
	f.urls = append(f.urls, creds.URL)
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byURL[creds.URL]
	if !ok {
		c = &fakeClient{}
		f.byURL[creds.URL] = c
	}
	return c, nil
}

func (f *fakeFactory) client(url string) *fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byURL[url]
	if !ok {
		c = &fakeClient{}
		f.byURL[url] = c
	}
	return c
}

func (f *fakeFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// -------- local store --------

type memStore struct {
	mu      sync.Mutex
	data    map[string]map[string]directory.Object // owner|source → href → object
	writes  int
	dropped []string
	dropErr error
	caps    directory.Capabilities
}

func newMemStore() *memStore {
	return &memStore{data: map[string]map[string]directory.Object{}, caps: directory.Capabilities{ReadOnly: true}}
}

func (s *memStore) Sink(ownerID, sourceID string) directory.Sink {
	return &memSink{store: s, key: ownerID + "|" + sourceID}
}

func (s *memStore) Capabilities(string) directory.Capabilities { return s.caps }

func (s *memStore) DropSource(ctx context.Context, ownerID, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped = append(s.dropped, sourceID)
	if s.dropErr != nil {
		return s.dropErr
	}
	delete(s.data, ownerID+"|"+sourceID)
	return nil
}

func (s *memStore) objects(ownerID, sourceID string) map[string]directory.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]directory.Object{}
	for k, v := range s.data[ownerID+"|"+sourceID] {
		out[k] = v
	}
	return out
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type memSink struct {
	store *memStore
	key   string
}

func (k *memSink) Known(context.Context) (map[string]string, error) {
	k.store.mu.Lock()
	defer k.store.mu.Unlock()
	out := map[string]string{}
	for href, o := range k.store.data[k.key] {
		out[href] = o.ETag
	}
	return out, nil
}

func (k *memSink) Put(_ context.Context, o directory.Object) error {
	k.store.mu.Lock()
	defer k.store.mu.Unlock()
	if k.store.data[k.key] == nil {
		k.store.data[k.key] = map[string]directory.Object{}
	}
	k.store.data[k.key][o.Href] = o
	k.store.writes++
	return nil
}

func (k *memSink) Remove(_ context.Context, href string) error {
	k.store.mu.Lock()
	defer k.store.mu.Unlock()
	delete(k.store.data[k.key], href)
	k.store.writes++
	return nil
}

// -------- wiring --------

type fixture struct {
	servers  *memServers
	factory  *fakeFactory
	store    *memStore
	registry *RegistryService
	sync     *SyncService
	sources  *SourceService
	settings *SettingsService
}

func newFixture(workers int, timeout time.Duration) *fixture {
	f := &fixture{servers: &memServers{}, factory: newFakeFactory(), store: newMemStore()}
	log := logging.Nop{}
	f.registry = NewRegistryService(nil, &fakeRepoManager{servers: f.servers}, prefixCipher{}, log)
	f.sync = NewSyncService(f.registry, f.factory, f.store, workers, timeout, log)
	f.sources = NewSourceService(f.registry, f.store)
	f.settings = NewSettingsService(f.registry, f.sync, f.factory, f.store, time.Second, log)
	return f
}

func (f *fixture) mustCreate(owner, label, url string) *models.ServerConfig {
	s, err := f.registry.Create(context.Background(), owner, label, url, "user", "pw")
	if err != nil {
		panic(err)
	}
	return s
}
