package service

import (
	"context"
	"encoding/base64"
	"testing"

	"Accord_Chat/internal/model"
	"Accord_Chat/internal/pkg"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Server{},
		&model.ServerMember{},
		&model.ServerOutbox{},
		&model.Message{},
		&model.Reaction{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, email string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Password: "x", Email: email}
	require.NoError(t, db.Create(u).Error)
	return u
}

type stubStore struct {
	objects  map[string][]byte
	err      error
	calls    int
	lastKeys []string
}

func (s *stubStore) FetchMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	s.calls++
	s.lastKeys = keys
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if b, ok := s.objects[k]; ok {
			out[k] = b
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func TestAddServerCreatesFullRoster(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	a := seedUser(t, db, "alice", "a@x.com")
	b := seedUser(t, db, "bob", "b@x.com")

	err := svc.AddServer(context.Background(), AddServerReq{
		Name:         "Engineering",
		Description:  "Eng team",
		InviteEmails: []string{"a@x.com", "b@x.com"},
	})
	require.NoError(t, err)

	var servers []model.Server
	require.NoError(t, db.Find(&servers).Error)
	require.Len(t, servers, 1)
	assert.Equal(t, "Engineering", servers[0].Name)
	assert.Equal(t, "Eng team", servers[0].Description)
	assert.Nil(t, servers[0].ProfileImage)
	assert.Equal(t, int64(2), servers[0].MemberCount)

	var members []model.ServerMember
	require.NoError(t, db.Order("id").Find(&members).Error)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, servers[0].ID, m.ServerID)
		assert.Equal(t, model.StatusOffline, m.Status)
	}
	assert.Equal(t, a.ID, members[0].UserID)
	assert.Equal(t, b.ID, members[1].UserID)

	var events []model.ServerOutbox
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 3)
	assert.Equal(t, "server_created", events[0].EventType)
	assert.Equal(t, "member_joined", events[1].EventType)
	assert.Equal(t, "member_joined", events[2].EventType)
}

func TestAddServerUnknownEmailRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	seedUser(t, db, "alice", "a@x.com")

	err := svc.AddServer(context.Background(), AddServerReq{
		Name:         "Engineering",
		InviteEmails: []string{"a@x.com", "b@x.com"},
	})
	require.ErrorIs(t, err, pkg.ErrEmailNotFound)

	var serverCount, memberCount, outboxCount int64
	require.NoError(t, db.Model(&model.Server{}).Count(&serverCount).Error)
	require.NoError(t, db.Model(&model.ServerMember{}).Count(&memberCount).Error)
	require.NoError(t, db.Model(&model.ServerOutbox{}).Count(&outboxCount).Error)
	assert.Zero(t, serverCount)
	assert.Zero(t, memberCount)
	assert.Zero(t, outboxCount)
}

func TestAddServerEmptyInviteListIsValid(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{Name: "Lonely"}))

	var serverCount, memberCount int64
	require.NoError(t, db.Model(&model.Server{}).Count(&serverCount).Error)
	require.NoError(t, db.Model(&model.ServerMember{}).Count(&memberCount).Error)
	assert.Equal(t, int64(1), serverCount)
	assert.Zero(t, memberCount)
}

func TestAddServerDeduplicatesInvites(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	seedUser(t, db, "alice", "a@x.com")

	err := svc.AddServer(context.Background(), AddServerReq{
		Name:         "Engineering",
		InviteEmails: []string{"a@x.com", "a@x.com", "a@x.com"},
	})
	require.NoError(t, err)

	var memberCount int64
	require.NoError(t, db.Model(&model.ServerMember{}).Count(&memberCount).Error)
	assert.Equal(t, int64(1), memberCount)

	var server model.Server
	require.NoError(t, db.First(&server).Error)
	assert.Equal(t, int64(1), server.MemberCount)
}

func TestAddServerRequiresName(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	err := svc.AddServer(context.Background(), AddServerReq{Name: ""})
	require.ErrorIs(t, err, pkg.ErrInvalidRequest)
}

func TestAddServerForCreatorEnrollsCreator(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	creator := seedUser(t, db, "alice", "a@x.com")
	seedUser(t, db, "bob", "b@x.com")

	err := svc.AddServerForCreator(context.Background(), creator.ID, AddServerReq{
		Name:         "Engineering",
		InviteEmails: []string{"b@x.com"},
	})
	require.NoError(t, err)

	var members []model.ServerMember
	require.NoError(t, db.Find(&members).Error)
	require.Len(t, members, 2)

	ids := []uint64{members[0].UserID, members[1].UserID}
	assert.Contains(t, ids, creator.ID)
}

func TestGetServerListEmptyMembership(t *testing.T) {
	db := newTestDB(t)
	store := &stubStore{}
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")

	list, err := svc.GetServerList(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, store.calls, "no image keys, no fetch")
}

func TestGetServerListEncodesImagesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	imgA := []byte{0x89, 0x50, 0x4e, 0x47, 0x01}
	imgB := []byte("totally-a-png")
	store := &stubStore{objects: map[string][]byte{"img-a": imgA, "img-b": imgB}}
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")
	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name: "First", ProfileImage: strPtr("img-a"), InviteEmails: []string{"a@x.com"},
	}))
	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name: "Second", ProfileImage: strPtr("img-b"), InviteEmails: []string{"a@x.com"},
	}))

	list, err := svc.GetServerList(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// 顺序跟随加入顺序
	assert.Equal(t, "First", list[0].Name)
	assert.Equal(t, "Second", list[1].Name)

	gotA, err := base64.StdEncoding.DecodeString(list[0].ProfileImage)
	require.NoError(t, err)
	assert.Equal(t, imgA, gotA)
	gotB, err := base64.StdEncoding.DecodeString(list[1].ProfileImage)
	require.NoError(t, err)
	assert.Equal(t, imgB, gotB)

	// 批量取：对象存储只打一次
	assert.Equal(t, 1, store.calls)
	assert.ElementsMatch(t, []string{"img-a", "img-b"}, store.lastKeys)
}

func TestGetServerListSharedImageFetchedOnce(t *testing.T) {
	db := newTestDB(t)
	store := &stubStore{objects: map[string][]byte{"shared": []byte("x")}}
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")
	for _, name := range []string{"One", "Two"} {
		require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
			Name: name, ProfileImage: strPtr("shared"), InviteEmails: []string{"a@x.com"},
		}))
	}

	list, err := svc.GetServerList(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, []string{"shared"}, store.lastKeys)
}

func TestGetServerListNoImageServer(t *testing.T) {
	db := newTestDB(t)
	store := &stubStore{}
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")
	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name: "Plain", InviteEmails: []string{"a@x.com"},
	}))

	list, err := svc.GetServerList(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ProfileImage)
	assert.Zero(t, store.calls)
}

func TestGetServerListMissingObjectFailsWhole(t *testing.T) {
	db := newTestDB(t)
	store := &stubStore{objects: map[string][]byte{}} // key 不在存储里
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")
	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name: "Broken", ProfileImage: strPtr("gone"), InviteEmails: []string{"a@x.com"},
	}))

	_, err := svc.GetServerList(context.Background(), u.ID)
	require.ErrorIs(t, err, pkg.ErrFileProcessingFail)
}

func TestGetServerListStoreErrorFailsWhole(t *testing.T) {
	db := newTestDB(t)
	store := &stubStore{err: context.DeadlineExceeded}
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")
	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name: "Slow", ProfileImage: strPtr("img"), InviteEmails: []string{"a@x.com"},
	}))

	_, err := svc.GetServerList(context.Background(), u.ID)
	require.ErrorIs(t, err, pkg.ErrFileProcessingFail)
}

func TestGetServerListIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := &stubStore{objects: map[string][]byte{"img": []byte("bytes")}}
	svc := NewServerService(db, store, nil)

	u := seedUser(t, db, "alice", "a@x.com")
	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name: "Stable", ProfileImage: strPtr("img"), InviteEmails: []string{"a@x.com"},
	}))

	first, err := svc.GetServerList(context.Background(), u.ID)
	require.NoError(t, err)
	second, err := svc.GetServerList(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCreateThenListScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	a := seedUser(t, db, "alice", "a@x.com")
	b := seedUser(t, db, "bob", "b@x.com")

	require.NoError(t, svc.AddServer(context.Background(), AddServerReq{
		Name:         "Engineering",
		Description:  "Eng team",
		InviteEmails: []string{"a@x.com", "b@x.com"},
	}))

	for _, u := range []*model.User{a, b} {
		list, err := svc.GetServerList(context.Background(), u.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Engineering", list[0].Name)
	}
}

func TestFailedCreateLeavesNoTraceInListing(t *testing.T) {
	db := newTestDB(t)
	svc := NewServerService(db, &stubStore{}, nil)

	a := seedUser(t, db, "alice", "a@x.com")
	// b@x.com 未注册

	err := svc.AddServer(context.Background(), AddServerReq{
		Name:         "Engineering",
		InviteEmails: []string{"a@x.com", "b@x.com"},
	})
	require.ErrorIs(t, err, pkg.ErrEmailNotFound)

	list, err := svc.GetServerList(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
