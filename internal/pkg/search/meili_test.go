package search

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeili 模拟 health 与 multi-search 接口，其余写操作统一返回入队任务
type fakeMeili struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/health":
		io.WriteString(w, `{"status":"available"}`)
	case r.URL.Path == "/multi-search":
		var body struct {
			Queries []struct {
				Q string `json:"q"`
			} `json:"queries"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		for _, q := range body.Queries {
			f.queries = append(f.queries, q.Q)
		}
		f.mu.Unlock()
		io.WriteString(w, `{"results":[{"indexUid":"posts","hits":[{"id":"p2"},{"id":"p1"}],"query":"go","processingTimeMs":1,"limit":20,"offset":0,"estimatedTotalHits":2}]}`)
	default:
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, `{"taskUid":1,"indexUid":"posts","status":"enqueued","type":"indexCreation","enqueuedAt":"2024-01-01T00:00:00Z"}`)
	}
}

func TestNewMeili_NotConfigured(t *testing.T) {
	m := NewMeili("", "", "posts")
	assert.Nil(t, m)
	assert.False(t, m.Healthy())

	_, err := m.Search("go", 10)
	assert.Error(t, err)

	// nil 上调用不应 panic
	m.IndexPost(PostRecord{ID: "x"})
	m.DeletePost("x")
	m.Close()
}

func TestMeili_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewMeili(srv.URL, "key", "posts")
	require.NotNil(t, m)
	defer m.Close()

	assert.False(t, m.Healthy())
}

func TestMeili_Search(t *testing.T) {
	fake := &fakeMeili{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	m := NewMeili(srv.URL, "key", "posts")
	require.NotNil(t, m)
	defer m.Close()
	require.True(t, m.Healthy())

	ids, err := m.Search("go", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{"go"}, fake.queries)
}

func TestPostRecord_JSON(t *testing.T) {
	data, err := json.Marshal(PostRecord{ID: "p1", Title: "Hello", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"id":"p1"`))
}
