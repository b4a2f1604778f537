// Package testutil holds in-memory doubles shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
)

// SitePayee is the payee used by the donation page.
func SitePayee() domain.Payee {
	return domain.Payee{Key: "+5511965040342", Name: "Fraternidade Luz", City: "Sao Paulo"}
}

// StubRenderer satisfies donation.QRRenderer without drawing anything.
// Output embeds the payload so tests can tell renders apart.
type StubRenderer struct {
	Err error

	mu    sync.Mutex
	calls int
}

func (r *StubRenderer) PNG(payload string, opts qr.RenderOptions) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return []byte(fmt.Sprintf("PNG[%s|%s|%d]", payload, opts.Level, opts.Width)), nil
}

func (r *StubRenderer) DataURL(payload string, opts qr.RenderOptions) (string, error) {
	b, err := r.PNG(payload, opts)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + string(b), nil
}

// Calls returns how many renders were attempted.
func (r *StubRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// MemoryObject is one object held by a MemorySink.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemorySink satisfies publish.Sink by keeping objects in a map.
type MemorySink struct {
	// FailOn makes Put fail for the named object.
	FailOn string

	mu      sync.Mutex
	objects map[string]MemoryObject
}

func (s *MemorySink) Put(ctx context.Context, name, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == s.FailOn {
		return fmt.Errorf("memory sink: refusing %s", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string]MemoryObject)
	}
	s.objects[name] = MemoryObject{ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

// Get returns a stored object.
func (s *MemorySink) Get(name string) (MemoryObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[name]
	return o, ok
}

// Names returns the stored object names, sorted.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.objects))
	for n := range s.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
