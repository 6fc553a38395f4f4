package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Accord_Chat/internal/model"
	"Accord_Chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mapStore struct {
	objects map[string][]byte
}

func (s *mapStore) FetchMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if b, ok := s.objects[k]; ok {
			out[k] = b
		}
	}
	return out, nil
}

// newTestRouter 认证用桩中间件替代，直接注入 user_id
func newTestRouter(t *testing.T, store *mapStore) (*gin.Engine, *gorm.DB, *model.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Server{}, &model.ServerMember{}, &model.ServerOutbox{},
	))

	user := &model.User{Username: "alice", Password: "x", Email: "a@x.com"}
	require.NoError(t, db.Create(user).Error)

	auth := func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Next()
	}

	h := NewServerHandler(service.NewServerService(db, store, nil))
	r := gin.New()
	r.POST("/api/server/create", auth, h.Create)
	r.GET("/api/server/list", auth, h.List)
	return r, db, user
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateServerEndpoint(t *testing.T) {
	r, db, user := newTestRouter(t, &mapStore{})

	w := doJSON(r, http.MethodPost, "/api/server/create", gin.H{
		"name":        "Engineering",
		"description": "Eng team",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 创建者自动入会
	var member model.ServerMember
	require.NoError(t, db.First(&member).Error)
	assert.Equal(t, user.ID, member.UserID)
}

func TestCreateServerUnknownInviteMapsToTaxonomy(t *testing.T) {
	r, db, _ := newTestRouter(t, &mapStore{})

	w := doJSON(r, http.MethodPost, "/api/server/create", gin.H{
		"name":   "Engineering",
		"emails": []string{"ghost@x.com"},
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "4040", resp.Code)
	assert.Equal(t, "EMAIL NOT FOUND", resp.Msg)

	// 全量回滚
	var count int64
	require.NoError(t, db.Model(&model.Server{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateServerMissingName(t *testing.T) {
	r, _, _ := newTestRouter(t, &mapStore{})

	w := doJSON(r, http.MethodPost, "/api/server/create", gin.H{"description": "no name"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListServersEndpoint(t *testing.T) {
	img := []byte("fake-png-bytes")
	store := &mapStore{objects: map[string][]byte{"img-1": img}}
	r, _, _ := newTestRouter(t, store)

	w := doJSON(r, http.MethodPost, "/api/server/create", gin.H{
		"name":          "Engineering",
		"description":   "Eng team",
		"profile_image": "img-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/server/list", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		List []struct {
			ID           uint64 `json:"id"`
			Name         string `json:"name"`
			Description  string `json:"description"`
			ProfileImage string `json:"profile_image"`
		} `json:"list"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.List, 1)
	assert.Equal(t, "Engineering", resp.List[0].Name)
	assert.Equal(t, "Eng team", resp.List[0].Description)

	decoded, err := base64.StdEncoding.DecodeString(resp.List[0].ProfileImage)
	require.NoError(t, err)
	assert.Equal(t, img, decoded)
}
