package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyAdmins(t *testing.T) {
	h := NewHub()
	go h.Run()

	admin := &Client{ID: "a", UserID: uuid.New(), Role: roleAdmin, Send: make(chan []byte, 1)}
	customer := &Client{ID: "c", UserID: uuid.New(), Role: "customer", Send: make(chan []byte, 1)}
	h.RegisterClient(admin)
	h.RegisterClient(customer)

	h.BroadcastEvent("order_created", map[string]interface{}{"order_id": 1})

	select {
	case msg := <-admin.Send:
		assert.Contains(t, string(msg), "order_created")
	case <-time.After(time.Second):
		t.Fatal("admin never received the broadcast")
	}

	select {
	case <-customer.Send:
		t.Fatal("customer received an admin broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendToUserTargetsOneUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	target := uuid.New()
	mine := &Client{ID: "m", UserID: target, Role: "customer", Send: make(chan []byte, 1)}
	other := &Client{ID: "o", UserID: uuid.New(), Role: "customer", Send: make(chan []byte, 1)}
	h.RegisterClient(mine)
	h.RegisterClient(other)

	h.SendToUser(target, "file_approved", map[string]interface{}{"file_id": 7})

	select {
	case msg := <-mine.Send:
		require.Contains(t, string(msg), "file_approved")
	case <-time.After(time.Second):
		t.Fatal("target user never received the event")
	}

	select {
	case <-other.Send:
		t.Fatal("event leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}
