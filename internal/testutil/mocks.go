// internal/testutil/mocks.go

package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/imagenix/mediateca/internal/app/system/mailer"
	"github.com/imagenix/mediateca/internal/app/system/storage"
)

// MemStorage is an in-memory storage.Provider that records calls.
type MemStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int

	PutCalls    int
	DeleteCalls int
	FailPut     error
}

func NewMemStorage() *MemStorage {
	return &MemStorage{objects: make(map[string][]byte)}
}

func (m *MemStorage) Put(_ context.Context, filename string, r io.Reader, _ int64, _ string) (storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.FailPut != nil {
		return storage.Object{}, m.FailPut
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return storage.Object{}, err
	}
	m.seq++
	id := fmt.Sprintf("mem-%d_%s", m.seq, filename)
	m.objects[id] = buf.Bytes()
	return storage.Object{ID: id, URL: "mem://" + id, Size: int64(buf.Len())}, nil
}

func (m *MemStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if _, ok := m.objects[id]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(m.objects, id)
	return nil
}

// Has reports whether an object is still stored.
func (m *MemStorage) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[id]
	return ok
}

// MailRecorder is a mailer.Sender that captures messages.
type MailRecorder struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (m *MailRecorder) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

// Sent returns a copy of the captured messages.
func (m *MailRecorder) Sent() []mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Email{}, m.sent...)
}
