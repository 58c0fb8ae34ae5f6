package events

import (
	"sync"
	"testing"
)

func TestAppendAssignsIdentityAndSequence(t *testing.T) {
	l := NewLog(16, nil)

	a := l.Append(Event{Type: EventTypeRoadPlaced})
	b := l.Append(Event{Type: EventTypeRoadRemoved})

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Errorf("Appends should assign unique ids")
	}
	if a.Sequence != 0 || b.Sequence != 1 {
		t.Errorf("Sequences should be consecutive from 0, got %d then %d", a.Sequence, b.Sequence)
	}
	if a.Timestamp.IsZero() {
		t.Errorf("Append should stamp the event time")
	}
}

func TestHistoryBounded(t *testing.T) {
	l := NewLog(8, nil)

	for i := 0; i < 20; i++ {
		l.Append(Event{Type: EventTypeTimeChanged, Day: i})
	}

	if l.Len() != 8 {
		t.Errorf("Ring should retain the limit, got %d", l.Len())
	}

	retained, _ := l.ReplaySince(0)
	if len(retained) != 8 {
		t.Fatalf("Replay should return the retained window, got %d", len(retained))
	}
	if retained[0].Day != 12 {
		t.Errorf("Oldest retained event should be day 12, got %d", retained[0].Day)
	}
	if retained[len(retained)-1].Day != 19 {
		t.Errorf("Newest retained event should be day 19, got %d", retained[len(retained)-1].Day)
	}
}

func TestReplayCursorAdvances(t *testing.T) {
	l := NewLog(16, nil)
	l.Append(Event{Type: EventTypeBuildingPlaced})
	l.Append(Event{Type: EventTypeBuildingRemoved})

	batch, cursor := l.ReplaySince(0)
	if len(batch) != 2 {
		t.Fatalf("First replay should see both events, got %d", len(batch))
	}

	// Nothing new: empty batch, cursor unchanged.
	batch, cursor2 := l.ReplaySince(cursor)
	if len(batch) != 0 || cursor2 != cursor {
		t.Errorf("Replay at the head should be empty, got %d events", len(batch))
	}

	l.Append(Event{Type: EventTypeZoneChanged})
	batch, _ = l.ReplaySince(cursor)
	if len(batch) != 1 || batch[0].Type != EventTypeZoneChanged {
		t.Errorf("Replay should deliver only the new event, got %v", batch)
	}
}

func TestReplayCursorBehindWindowSkipsForward(t *testing.T) {
	l := NewLog(4, nil)
	for i := 0; i < 10; i++ {
		l.Append(Event{Type: EventTypeTimeChanged, Day: i})
	}

	// Cursor 0 fell out of the ring; replay resumes at the oldest retained.
	batch, _ := l.ReplaySince(0)
	if len(batch) != 4 || batch[0].Day != 6 {
		t.Errorf("Expected the 4 retained events starting at day 6, got %v", batch)
	}
}

type countingPersister struct {
	mu    sync.Mutex
	count int
	done  chan struct{}
	want  int
}

func (p *countingPersister) Append(event Event) error {
	p.mu.Lock()
	p.count++
	if p.count == p.want {
		close(p.done)
	}
	p.mu.Unlock()
	return nil
}

func TestPersisterReceivesEveryAppend(t *testing.T) {
	p := &countingPersister{done: make(chan struct{}), want: 5}
	l := NewLog(2, p) // ring smaller than the event count

	for i := 0; i < 5; i++ {
		l.Append(Event{Type: EventTypeTimeChanged, Day: i})
	}

	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count != 5 {
		t.Errorf("Persister should see all 5 events despite the small ring, got %d", p.count)
	}
}
