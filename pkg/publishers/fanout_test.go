package publishers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubPublisher struct {
	id       string
	typ      string
	err      error
	closeErr error
	calls    int
	closed   bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return s.closeErr
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok", typ: TypeHTTP}
	bad := &stubPublisher{id: "bad", typ: TypeSQS, err: errors.New("failed")}
	after := &stubPublisher{id: "after", typ: TypeHTTP}
	fanout := NewFanout([]Publisher{ok, nil, bad, after})

	if fanout.Size() != 3 {
		t.Fatalf("nil publishers should be dropped, size %d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), NewEvent(ActionUpload, "image", "m1"))
	if count != 2 {
		t.Fatalf("expected 2 successes, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), "sqs publisher[bad]") {
		t.Fatalf("expected aggregated error naming the sink, got %v", err)
	}
	if after.calls != 1 {
		t.Fatalf("a failing sink must not stop the rest")
	}
}

// gatePublisher blocks until every gate publisher has been called.
type gatePublisher struct {
	id      string
	arrived *sync.WaitGroup
}

func (g *gatePublisher) ID() string   { return g.id }
func (g *gatePublisher) Type() string { return TypeHTTP }
func (g *gatePublisher) Publish(ctx context.Context, _ Event) error {
	g.arrived.Done()
	done := make(chan struct{})
	go func() {
		g.arrived.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestFanoutDeliversConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	fanout := NewFanout([]Publisher{
		&gatePublisher{id: "a", arrived: &arrived},
		&gatePublisher{id: "b", arrived: &arrived},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	count, err := fanout.Publish(ctx, NewEvent(ActionDelete, "", "m1"))
	if err != nil || count != 2 {
		t.Fatalf("sinks should run side by side, got %d delivered, err %v", count, err)
	}
}

func TestFanoutNilIsNoop(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout: %d, %v", n, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("nil fanout close: %v", err)
	}
}

func TestFanoutCloseClosesAll(t *testing.T) {
	a := &stubPublisher{id: "a", typ: TypePubSub, closeErr: errors.New("stuck")}
	b := &stubPublisher{id: "b", typ: TypePubSub}

	err := NewFanout([]Publisher{a, b}).Close()
	if !a.closed || !b.closed {
		t.Fatalf("expected both publishers closed")
	}
	if err == nil {
		t.Fatalf("expected close error to surface")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "POST"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type() != TypeHTTP || pubs[0].ID() != "hook" {
		t.Fatalf("unexpected publishers %#v", pubs)
	}
}

func TestBuildAllClosesBuiltOnFailure(t *testing.T) {
	built := &stubPublisher{id: "first", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
	})

	_, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "missing"},
	}, nil)
	if err == nil {
		t.Fatalf("expected error for unregistered type")
	}
	if !built.closed {
		t.Fatalf("already built publisher should be closed")
	}
}
