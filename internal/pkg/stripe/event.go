package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripelib "github.com/stripe/stripe-go/v82"
)

var ErrMalformedPayload = errors.New("malformed stripe event payload")

// Kind 订阅生命周期事件类型
type Kind string

const (
	KindCreated              Kind = "created"
	KindUpdated              Kind = "updated"
	KindDeleted              Kind = "deleted"
	KindPaused               Kind = "paused"
	KindResumed              Kind = "resumed"
	KindPendingUpdateApplied Kind = "pending_update_applied"
	KindPendingUpdateExpired Kind = "pending_update_expired"
)

var subscriptionKinds = map[stripelib.EventType]Kind{
	"customer.subscription.created":                KindCreated,
	"customer.subscription.updated":                KindUpdated,
	"customer.subscription.deleted":                KindDeleted,
	"customer.subscription.paused":                 KindPaused,
	"customer.subscription.resumed":                KindResumed,
	"customer.subscription.pending_update_applied": KindPendingUpdateApplied,
	"customer.subscription.pending_update_expired": KindPendingUpdateExpired,
}

// Event 在 webhook 边界解码后的事件，只有 SubscriptionEvent 与 IgnoredEvent 两种
type Event interface {
	EventID() string
	EventType() string
}

// SubscriptionEvent 订阅生命周期事件
type SubscriptionEvent struct {
	ID           string
	Type         string
	Kind         Kind
	Subscription Subscription
}

func (e SubscriptionEvent) EventID() string   { return e.ID }
func (e SubscriptionEvent) EventType() string { return e.Type }

// IgnoredEvent 未建模的事件，只记录不处理
type IgnoredEvent struct {
	ID   string
	Type string
}

func (e IgnoredEvent) EventID() string   { return e.ID }
func (e IgnoredEvent) EventType() string { return e.Type }

type Subscription struct {
	ID         string
	CustomerID string
	Status     string
	Items      []LineItem
}

type LineItem struct {
	PriceID     string
	ProductID   string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// expandableID 兼容未展开的字符串 ID 与展开后的对象
type expandableID string

func (e *expandableID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*e = expandableID(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}

type subscriptionPayload struct {
	ID       string       `json:"id"`
	Customer expandableID `json:"customer"`
	Status   string       `json:"status"`
	// 旧 API 版本把计费周期放在 subscription 上
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				ID      string       `json:"id"`
				Product expandableID `json:"product"`
			} `json:"price"`
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

// Decode 把已验签的 Stripe 事件转换为强类型事件
func Decode(event stripelib.Event) (Event, error) {
	kind, ok := subscriptionKinds[event.Type]
	if !ok {
		return IgnoredEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: %s has no data", ErrMalformedPayload, event.ID)
	}

	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	sub := Subscription{
		ID:         payload.ID,
		CustomerID: string(payload.Customer),
		Status:     payload.Status,
		Items:      make([]LineItem, 0, len(payload.Items.Data)),
	}
	for _, item := range payload.Items.Data {
		start, end := item.CurrentPeriodStart, item.CurrentPeriodEnd
		if start == 0 && end == 0 {
			start, end = payload.CurrentPeriodStart, payload.CurrentPeriodEnd
		}
		if start <= 0 || end <= 0 {
			return nil, fmt.Errorf("%w: %s item %s has no billing period", ErrMalformedPayload, event.ID, item.Price.ID)
		}
		sub.Items = append(sub.Items, LineItem{
			PriceID:     item.Price.ID,
			ProductID:   string(item.Price.Product),
			PeriodStart: time.Unix(start, 0).UTC(),
			PeriodEnd:   time.Unix(end, 0).UTC(),
		})
	}

	return SubscriptionEvent{
		ID:           event.ID,
		Type:         string(event.Type),
		Kind:         kind,
		Subscription: sub,
	}, nil
}
