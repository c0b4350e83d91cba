package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/seedbotics/fieldgate/internal/storage"
)

// ErrNotFound is returned for missing object keys.
var ErrNotFound = storage.ErrNotFound

type object struct {
	data []byte
	info ObjectInfo
}

// Memory is an in-process Store. Signed URLs are synthetic but carry a real
// expiry timestamp so clients exercise the same flow as against cloud storage.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

var _ Store = (*Memory)(nil)

// NewMemory builds an empty store. baseURL defaults to a local placeholder.
func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "https://storage.fieldgate.local"
	}
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]object)}
}

func (m *Memory) Upload(_ context.Context, key string, data []byte, contentType string) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
	}
	m.objects[key] = object{data: stored, info: info}
	return info, nil
}

func (m *Memory) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]ObjectInfo, 0)
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, obj.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (m *Memory) Metadata(_ context.Context, key string) (ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	return obj.info, nil
}

func (m *Memory) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	expiresAt := time.Now().UTC().Add(expiry).Unix()
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, key, expiresAt), nil
}
