package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const chatStreamName = "CHATS"

// NatsStore implements Store on top of a NATS JetStream cluster. Message
// nodes live on per-conversation subjects; the stream retains them so a new
// listener replays the full collection before receiving live pushes.
type NatsStore struct {
	url string

	mu sync.Mutex
	nc *nats.Conn
	js jetstream.JetStream
}

func NewNatsStore(url string) *NatsStore {
	return &NatsStore{url: url}
}

func (s *NatsStore) Authenticate(ctx context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nc != nil && s.nc.IsConnected() {
		return nil
	}

	nc, err := nats.Connect(s.url,
		nats.Token(credential),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to realtime store: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:      chatStreamName,
		Subjects:  []string{"chats.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to ensure stream %s: %w", chatStreamName, err)
	}

	s.nc = nc
	s.js = js
	return nil
}

func (s *NatsStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nc != nil && s.nc.IsConnected()
}

func (s *NatsStore) jetStream() (jetstream.JetStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.js == nil {
		return nil, ErrNotAuthenticated
	}
	return s.js, nil
}

type natsSubscription struct {
	consume jetstream.ConsumeContext
}

func (n *natsSubscription) Unsubscribe() {
	n.consume.Stop()
}

func (s *NatsStore) Subscribe(ctx context.Context, conversationID string, handler SnapshotHandler) (Subscription, error) {
	js, err := s.jetStream()
	if err != nil {
		return nil, err
	}

	consumer, err := js.OrderedConsumer(ctx, chatStreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{messageSubject(conversationID)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach listener for %s: %w", conversationID, err)
	}

	// The collection is materialized by replaying the full subject and
	// folding every node into a map keyed by message id, so each push hands
	// the handler the complete current collection.
	var (
		mu    sync.Mutex
		nodes = make(map[string]Message)
	)

	consume, err := consumer.Consume(func(m jetstream.Msg) {
		var msg Message
		if err := json.Unmarshal(m.Data(), &msg); err == nil {
			mu.Lock()
			nodes[msg.ID] = msg
			snapshot := make([]Message, 0, len(nodes))
			for _, n := range nodes {
				snapshot = append(snapshot, n)
			}
			mu.Unlock()
			handler(snapshot)
		}
		m.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming %s: %w", conversationID, err)
	}

	return &natsSubscription{consume: consume}, nil
}

func (s *NatsStore) Append(ctx context.Context, conversationID string, msg *Message) error {
	js, err := s.jetStream()
	if err != nil {
		return err
	}

	msg.ID = uuid.New().String()
	msg.TimestampMs = time.Now().UnixMilli()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := js.Publish(ctx, messageSubject(conversationID), data); err != nil {
		return fmt.Errorf("failed to append message to %s: %w", conversationID, err)
	}
	return nil
}

func (s *NatsStore) SetMetadata(ctx context.Context, conversationID string, meta *Metadata) error {
	js, err := s.jetStream()
	if err != nil {
		return err
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if _, err := js.Publish(ctx, metadataSubject(conversationID), data); err != nil {
		return fmt.Errorf("failed to update metadata for %s: %w", conversationID, err)
	}
	return nil
}

func (s *NatsStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nc != nil {
		s.nc.Close()
		s.nc = nil
		s.js = nil
	}
}

func messageSubject(conversationID string) string {
	return fmt.Sprintf("chats.%s.messages", conversationID)
}

func metadataSubject(conversationID string) string {
	return fmt.Sprintf("chats.%s.metadata", conversationID)
}
