package client

import (
	"context"
	"sync"

	"github.com/eduoj/ojcli/pkg/domain"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeNavigator struct {
	mu        sync.Mutex
	location  string
	navigated []string
	err       error
}

func (f *fakeNavigator) Location() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location
}

func (f *fakeNavigator) Navigate(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, path)
	if f.err != nil {
		return f.err
	}
	f.location = path
	return nil
}

func (f *fakeNavigator) redirects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigated...)
}

// memKV is an in-memory KeyValue.
type memKV struct {
	mu    sync.Mutex
	items map[string]string
}

func newMemKV() *memKV {
	return &memKV{items: map[string]string{}}
}

func (m *memKV) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memKV) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memKV) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func loginAs(username string) domain.LoginRequest {
	return domain.LoginRequest{Username: username, Password: "secret"}
}
