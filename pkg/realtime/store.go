package realtime

import "context"

// Message is the wire shape of a chat message node in the push-store.
// Field defaults (senderName, type, read) are applied by the sync layer,
// not here: the store hands back whatever the remote holds.
type Message struct {
	ID           string              `json:"id"`
	SenderID     string              `json:"senderId"`
	SenderName   string              `json:"senderName"`
	SenderAvatar string              `json:"senderAvatar,omitempty"`
	Content      string              `json:"content"`
	Type         string              `json:"type"`
	TimestampMs  int64               `json:"timestamp"`
	Read         bool                `json:"read"`
	ImageURLs    []string            `json:"imageUrls,omitempty"`
	OrderData    *OrderMessageData   `json:"orderData,omitempty"`
	StatusUpdate *StatusUpdateData   `json:"statusUpdateData,omitempty"`
	PaymentReq   *PaymentRequestData `json:"paymentRequestData,omitempty"`
	PaymentProof *PaymentProofData   `json:"paymentProofData,omitempty"`
}

type OrderMessageData struct {
	OrderID         string `json:"orderId"`
	OrderNumber     string `json:"orderNumber"`
	TotalCents      int64  `json:"totalCents"`
	Currency        string `json:"currency"`
	ItemCount       int    `json:"itemCount"`
	ProductImageURL string `json:"productImageUrl,omitempty"`
	Status          string `json:"status"`
}

type StatusUpdateData struct {
	OldStatus      string `json:"oldStatus"`
	NewStatus      string `json:"newStatus"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type PaymentRequestData struct {
	Method        string `json:"method"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AmountCents   int64  `json:"amountCents"`
	Currency      string `json:"currency"`
}

type PaymentProofData struct {
	ImageURL   string `json:"imageUrl"`
	Status     string `json:"status"`
	VerifiedBy string `json:"verifiedBy,omitempty"`
	VerifiedAt int64  `json:"verifiedAt,omitempty"`
}

// Metadata is the denormalized conversation summary. Write-only from the
// portal's perspective.
type Metadata struct {
	LastMessage          string `json:"lastMessage"`
	LastMessageTimestamp int64  `json:"lastMessageTimestamp"`
}

// SnapshotHandler receives the FULL message collection for a conversation
// on every push. The store makes no ordering promise; callers must sort.
type SnapshotHandler func(messages []Message)

// Subscription detaches a push listener.
type Subscription interface {
	Unsubscribe()
}

// Store is the realtime push-store collaborator. A separate credential
// exchange is required before any read or write.
type Store interface {
	// Authenticate establishes the store session with an exchanged
	// credential. Idempotent once established.
	Authenticate(ctx context.Context, credential string) error

	// Authenticated reports whether a store session is established.
	Authenticated() bool

	// Subscribe attaches a push listener on a conversation's messages.
	Subscribe(ctx context.Context, conversationID string, handler SnapshotHandler) (Subscription, error)

	// Append writes a new message node. The store assigns the id and
	// timestamp; both are filled into msg on return.
	Append(ctx context.Context, conversationID string, msg *Message) error

	// SetMetadata overwrites the conversation's summary metadata.
	SetMetadata(ctx context.Context, conversationID string, meta *Metadata) error

	// Close tears down the store session and all listeners.
	Close()
}
