package services

import (
	"context"
	"sync"

	"github.com/sash-studio/api/internal/pricing"
)

type recordedEvent struct {
	name   string
	fields map[string]any
}

type recordingLogger struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (l *recordingLogger) log(_ context.Context, name string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{name: name, fields: fields})
}

func (l *recordingLogger) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.name)
	}
	return out
}

type stubPublisher struct {
	events []Event
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

func defaultCatalog() *pricing.Catalog {
	return pricing.NewCatalog(pricing.CatalogDeps{})
}

func sameNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
