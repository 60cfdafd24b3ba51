package websocket

import (
	"context"

	"github.com/m5cents/call-screening-backend/internal/service/callrouting"
)

// HubNotifier adapts the hub to the routing engine's notifier port.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier wraps a hub for use by the routing engine.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// Notify publishes the notification without blocking the routing decision.
func (n *HubNotifier) Notify(_ context.Context, notification callrouting.Notification) {
	n.hub.Publish(notification)
}
