package orchestrator

import "github.com/batchkit/batchkit/pkg/core"

// Events returns a channel for receiving orchestration events.
// The caller must call Unsubscribe when done to prevent resource leaks.
func (o *Orchestrator) Events() <-chan core.Event {
	ch := make(chan core.Event, 100)
	o.mu.Lock()
	o.eventSubs = append(o.eventSubs, ch)
	o.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel created by Events().
// The channel is not closed; callers must stop reading before calling
// Unsubscribe. After Unsubscribe returns, no further events are sent.
func (o *Orchestrator) Unsubscribe(ch <-chan core.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, sub := range o.eventSubs {
		if sub == ch {
			o.eventSubs = append(o.eventSubs[:i], o.eventSubs[i+1:]...)
			return
		}
	}
}

// emit broadcasts an event to all subscribers without blocking. Events to
// slow consumers with full buffers are dropped.
func (o *Orchestrator) emit(e core.Event) {
	o.mu.RLock()
	subs := make([]chan core.Event, len(o.eventSubs))
	copy(subs, o.eventSubs)
	o.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}
