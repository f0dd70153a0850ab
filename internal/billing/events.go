package billing

import "encoding/json"

// EventKind is the closed set of subscription lifecycle events this service
// reacts to. Anything else parses as EventUnknown and is acknowledged but
// ignored, so new provider event types are additive.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSubscriptionCreated
	EventSubscriptionUpdated
	EventSubscriptionCancelled
	EventPaymentSucceeded
)

func (k EventKind) String() string {
	switch k {
	case EventSubscriptionCreated:
		return "subscription_created"
	case EventSubscriptionUpdated:
		return "subscription_updated"
	case EventSubscriptionCancelled:
		return "subscription_cancelled"
	case EventPaymentSucceeded:
		return "payment_succeeded"
	default:
		return "unknown"
	}
}

// ParseEventKind maps both the classic alert names (subscription_created) and
// the Billing API names (subscription.created) onto the closed kind set.
func ParseEventKind(name string) EventKind {
	switch name {
	case "subscription_created", "subscription.created", "subscription.activated":
		return EventSubscriptionCreated
	case "subscription_updated", "subscription.updated":
		return EventSubscriptionUpdated
	case "subscription_cancelled", "subscription.cancelled", "subscription.canceled":
		return EventSubscriptionCancelled
	case "subscription_payment_succeeded", "transaction.completed":
		return EventPaymentSucceeded
	default:
		return EventUnknown
	}
}

// Event is a provider-neutral view of a webhook payload.
type Event struct {
	Kind           EventKind
	RawName        string
	SubscriptionID string
	PlanID         string
	Email          string
	Status         string
}

// webhookPayload accepts both historical body shapes: the flat classic form
// and the Billing API's nested data object.
type webhookPayload struct {
	AlertName string `json:"alert_name"`
	EventType string `json:"event_type"`

	SubscriptionID string `json:"subscription_id"`
	PlanID         string `json:"subscription_plan_id"`
	Email          string `json:"email"`
	Status         string `json:"status"`

	Data struct {
		ID            string `json:"id"`
		PlanID        string `json:"plan_id"`
		CustomerEmail string `json:"customer_email"`
		Status        string `json:"status"`
	} `json:"data"`
}

// ParseEvent decodes a webhook body into an Event. Unknown event names are
// not an error; the caller decides how to treat EventUnknown.
func ParseEvent(body []byte) (Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, err
	}

	name := p.AlertName
	if name == "" {
		name = p.EventType
	}

	ev := Event{
		Kind:           ParseEventKind(name),
		RawName:        name,
		SubscriptionID: p.SubscriptionID,
		PlanID:         p.PlanID,
		Email:          p.Email,
		Status:         p.Status,
	}
	if ev.SubscriptionID == "" {
		ev.SubscriptionID = p.Data.ID
	}
	if ev.PlanID == "" {
		ev.PlanID = p.Data.PlanID
	}
	if ev.Email == "" {
		ev.Email = p.Data.CustomerEmail
	}
	if ev.Status == "" {
		ev.Status = p.Data.Status
	}

	return ev, nil
}
