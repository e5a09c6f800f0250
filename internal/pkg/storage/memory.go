package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Memory 进程内存储，用于本地开发与测试。
// 自带 http.Handler，可直接接收预签名地址上的 PUT 请求。
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memObject
}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: map[string]memObject{},
	}
}

// SetBaseURL 修改访问地址前缀，测试中指向 httptest.Server
func (m *Memory) SetBaseURL(baseURL string) {
	m.mu.Lock()
	m.baseURL = strings.TrimSuffix(baseURL, "/")
	m.mu.Unlock()
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType, modified: time.Now()}
	m.mu.Unlock()
	return m.URL(key), nil
}

func (m *Memory) SignPut(ctx context.Context, key, contentType string, expire time.Duration) (*SignedRequest, error) {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	return &SignedRequest{
		URL:     m.URL(key),
		Method:  http.MethodPut,
		Headers: header,
		Expires: time.Now().Add(expire),
	}, nil
}

func (m *Memory) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var objects []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (m *Memory) URL(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseURL + "/" + key
}

// Get 读取对象内容
func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

// ServeHTTP 处理 PUT 写入与 GET 读取，路径即对象 key
func (m *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.Put(r.Context(), key, &buf, int64(buf.Len()), r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, contentType, ok := m.Get(key)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
