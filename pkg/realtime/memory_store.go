package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and local development.
// It mimics the remote's push behaviour: every append re-delivers the full
// collection to attached listeners, in insertion order, unsorted.
type MemoryStore struct {
	mu            sync.Mutex
	authenticated bool
	authCalls     int
	nextID        int
	clockMs       int64

	// AuthFunc, when set, replaces the default always-succeed exchange.
	AuthFunc func(credential string) error

	// SubscribeFunc, when set, runs before a listener attaches. Lets tests
	// hold a subscription open mid-flight.
	SubscribeFunc func(conversationID string)

	messages  map[string][]Message
	metadata  map[string]Metadata
	listeners map[string][]*memorySubscription
}

type memorySubscription struct {
	store          *MemoryStore
	conversationID string
	handler        SnapshotHandler
	active         bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clockMs:   time.Now().UnixMilli(),
		messages:  make(map[string][]Message),
		metadata:  make(map[string]Metadata),
		listeners: make(map[string][]*memorySubscription),
	}
}

func (s *MemoryStore) Authenticate(ctx context.Context, credential string) error {
	s.mu.Lock()
	if s.authenticated {
		s.mu.Unlock()
		return nil
	}
	s.authCalls++
	authFn := s.AuthFunc
	s.mu.Unlock()

	if authFn != nil {
		if err := authFn(credential); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// AuthCalls reports how many credential exchanges actually ran.
func (s *MemoryStore) AuthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCalls
}

func (s *MemoryStore) Subscribe(ctx context.Context, conversationID string, handler SnapshotHandler) (Subscription, error) {
	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	subscribeFn := s.SubscribeFunc
	s.mu.Unlock()

	if subscribeFn != nil {
		subscribeFn(conversationID)
	}

	s.mu.Lock()

	sub := &memorySubscription{
		store:          s,
		conversationID: conversationID,
		handler:        handler,
		active:         true,
	}
	s.listeners[conversationID] = append(s.listeners[conversationID], sub)
	snapshot := append([]Message(nil), s.messages[conversationID]...)
	s.mu.Unlock()

	// Initial snapshot push, like the remote's first onValue delivery.
	handler(snapshot)
	return sub, nil
}

func (sub *memorySubscription) Unsubscribe() {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()

	sub.active = false
	subs := sub.store.listeners[sub.conversationID]
	for i, candidate := range subs {
		if candidate == sub {
			sub.store.listeners[sub.conversationID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) Append(ctx context.Context, conversationID string, msg *Message) error {
	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}

	s.nextID++
	s.clockMs++
	msg.ID = fmt.Sprintf("msg-%d", s.nextID)
	msg.TimestampMs = s.clockMs

	s.messages[conversationID] = append(s.messages[conversationID], *msg)
	s.mu.Unlock()

	s.push(conversationID)
	return nil
}

func (s *MemoryStore) SetMetadata(ctx context.Context, conversationID string, meta *Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return ErrNotAuthenticated
	}
	s.metadata[conversationID] = *meta
	return nil
}

func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.listeners = make(map[string][]*memorySubscription)
}

// Seed loads messages without pushing, for arranging test state.
func (s *MemoryStore) Seed(conversationID string, msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[conversationID] = append(s.messages[conversationID], msgs...)
}

// PushNow re-delivers the current collection to all listeners, simulating
// a remote-initiated push (reorder, backfill).
func (s *MemoryStore) PushNow(conversationID string) {
	s.push(conversationID)
}

// Metadata returns the last written summary for a conversation.
func (s *MemoryStore) MetadataFor(conversationID string) (Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metadata[conversationID]
	return meta, ok
}

// ListenerCount reports the number of attached listeners for a conversation.
func (s *MemoryStore) ListenerCount(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners[conversationID])
}

func (s *MemoryStore) push(conversationID string) {
	s.mu.Lock()
	snapshot := append([]Message(nil), s.messages[conversationID]...)
	subs := append([]*memorySubscription(nil), s.listeners[conversationID]...)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.active {
			sub.handler(snapshot)
		}
	}
}
