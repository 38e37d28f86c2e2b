package session

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"harcama/internal/core"
	"harcama/internal/storage"
)

type failingStorage struct {
	getErr error
	setErr error
}

func (f failingStorage) GetItem(context.Context, string) (string, bool, error) {
	return "", false, f.getErr
}

func (f failingStorage) SetItem(context.Context, string, string) error { return f.setErr }

func (f failingStorage) RemoveItem(context.Context, string) error { return nil }

type StoreSuite struct {
	suite.Suite
	ctx     context.Context
	storage *MemoryStorage
	store   *Store
	user    core.User
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = NewMemoryStorage()
	s.store = New(s.storage, "", nil)
	s.user = core.User{ID: uuid.New(), Email: "a@b.com", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *StoreSuite) storeRaw(v string) {
	s.Require().NoError(s.storage.SetItem(s.ctx, DefaultKey, v))
}

func (s *StoreSuite) TestLoadingUntilInit() {
	s.True(s.store.Loading())
	s.store.Init(s.ctx)
	s.False(s.store.Loading())

	_, ok := s.store.User()
	s.False(ok)
}

func (s *StoreSuite) TestHydratesStoredUser() {
	raw, err := json.Marshal(s.user)
	s.Require().NoError(err)
	s.storeRaw(string(raw))

	s.store.Init(s.ctx)

	got, ok := s.store.User()
	s.Require().True(ok)
	s.Equal(s.user.ID, got.ID)
	s.Equal(s.user.Email, got.Email)
}

func (s *StoreSuite) TestCorruptValueIsDiscarded() {
	for _, raw := range []string{"not json", `{"email":"no-id@x.com"}`, `[]`} {
		s.SetupTest()
		s.storeRaw(raw)

		s.store.Init(s.ctx)

		_, ok := s.store.User()
		s.False(ok, raw)
		_, present, err := s.storage.GetItem(s.ctx, DefaultKey)
		s.NoError(err)
		s.False(present, "corrupt value %q should be removed", raw)
	}
}

func (s *StoreSuite) TestStorageReadErrorMeansLoggedOut() {
	store := New(failingStorage{getErr: errors.New("disk gone")}, DefaultKey, nil)
	store.Init(s.ctx)
	s.False(store.Loading())
	_, ok := store.User()
	s.False(ok)
}

func (s *StoreSuite) TestInitRunsOnce() {
	s.store.Init(s.ctx)
	s.Require().NoError(s.store.SetUser(s.ctx, &s.user))
	s.storeRaw("garbage")

	s.store.Init(s.ctx)

	_, ok := s.store.User()
	s.True(ok)
}

func (s *StoreSuite) TestSetUserPersistsAndLogoutClears() {
	s.store.Init(s.ctx)
	s.Require().NoError(s.store.SetUser(s.ctx, &s.user))

	raw, ok, err := s.storage.GetItem(s.ctx, DefaultKey)
	s.Require().NoError(err)
	s.Require().True(ok)
	var persisted core.User
	s.Require().NoError(json.Unmarshal([]byte(raw), &persisted))
	s.Equal(s.user.ID, persisted.ID)

	s.Require().NoError(s.store.SetUser(s.ctx, nil))
	_, ok = s.store.User()
	s.False(ok)
	_, ok, err = s.storage.GetItem(s.ctx, DefaultKey)
	s.NoError(err)
	s.False(ok)
}

func (s *StoreSuite) TestCallerCannotMutateStoredUser() {
	s.store.Init(s.ctx)
	u := s.user
	s.Require().NoError(s.store.SetUser(s.ctx, &u))
	u.Email = "changed@x.com"

	got, _ := s.store.User()
	s.Equal("a@b.com", got.Email)
}

func (s *StoreSuite) TestPersistFailureStillUpdatesMemory() {
	store := New(failingStorage{setErr: errors.New("read-only")}, DefaultKey, nil)
	store.Init(s.ctx)

	err := store.SetUser(s.ctx, &s.user)
	s.Error(err)
	got, ok := store.User()
	s.True(ok)
	s.Equal(s.user.ID, got.ID)
}

func (s *StoreSuite) TestSubscribe() {
	s.store.Init(s.ctx)

	var seen []*core.User
	unsubscribe := s.store.Subscribe(func(u *core.User) { seen = append(seen, u) })

	s.Require().NoError(s.store.SetUser(s.ctx, &s.user))
	s.Require().NoError(s.store.SetUser(s.ctx, nil))
	unsubscribe()
	unsubscribe()
	s.Require().NoError(s.store.SetUser(s.ctx, &s.user))

	s.Require().Len(seen, 2)
	s.Equal(s.user.ID, seen[0].ID)
	s.Nil(seen[1])
}

func (s *StoreSuite) TestReloadPicksUpExternalChanges() {
	s.store.Init(s.ctx)

	var notified int
	s.store.Subscribe(func(*core.User) { notified++ })

	raw, err := json.Marshal(s.user)
	s.Require().NoError(err)
	s.storeRaw(string(raw))

	got, ok := s.store.Reload(s.ctx)
	s.Require().True(ok)
	s.Equal(s.user.ID, got.ID)
	s.Equal(1, notified)

	_, ok = s.store.Reload(s.ctx)
	s.True(ok)
	s.Equal(1, notified, "unchanged session does not notify")

	s.Require().NoError(s.storage.RemoveItem(s.ctx, DefaultKey))
	_, ok = s.store.Reload(s.ctx)
	s.False(ok)
	s.Equal(2, notified)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func TestStoreWithSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	user := core.User{ID: uuid.New(), Email: "persist@x.com"}

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	first := New(repo, DefaultKey, nil)
	first.Init(ctx)
	require.NoError(t, first.SetUser(ctx, &user))
	require.NoError(t, repo.Close())

	repo, err = storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	second := New(repo, DefaultKey, nil)
	second.Init(ctx)
	got, ok := second.User()
	require.True(t, ok)
	require.Equal(t, user.ID, got.ID)
}
