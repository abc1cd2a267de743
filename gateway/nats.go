package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/routing"
	"github.com/omxtrade/omx/types"
)

var ErrNoResponder = errors.New("gateway.provider.no_responder")

const defaultRequestTimeout = 25 * time.Millisecond

// NatsGateway speaks request-reply to the per-provider bridge services over
// NATS. The bridges own the actual LP wire protocols; this side only carries
// JSON envelopes on omx.providers.<id>.* subjects.
type NatsGateway struct{}

func NewNatsGateway() *NatsGateway {
	return &NatsGateway{}
}

type quoteRequest struct {
	Instrument string          `json:"instrument"`
	Side       types.OrderSide `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type sendOrderRequest struct {
	Spec routing.ChildOrderSpec `json:"spec"`
}

type sendOrderResponse struct {
	ProviderOrderID string `json:"provider_order_id"`
	Error           string `json:"error"`
}

type cancelRequest struct {
	ProviderOrderID string `json:"provider_order_id"`
}

type amendRequest struct {
	ProviderOrderID string               `json:"provider_order_id"`
	Changes         routing.OrderChanges `json:"changes"`
}

func requestTimeout(ctx context.Context) time.Duration {
	deadline, has_deadline := ctx.Deadline()
	if !has_deadline {
		return defaultRequestTimeout
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return time.Millisecond
	}

	return remaining
}

func (g *NatsGateway) request(ctx context.Context, subject string, payload interface{}, response interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg, err := config.Nats.Request(subject, raw, requestTimeout(ctx))
	if err != nil {
		return err
	}

	if msg == nil {
		return ErrNoResponder
	}

	return json.Unmarshal(msg.Data, response)
}

func (g *NatsGateway) GetQuote(ctx context.Context, provider_id string, instrument string, side types.OrderSide, quantity decimal.Decimal) (*routing.Quote, error) {
	var quote routing.Quote

	err := g.request(ctx, "omx.providers."+provider_id+".quote", quoteRequest{
		Instrument: instrument,
		Side:       side,
		Quantity:   quantity,
	}, &quote)
	if err != nil {
		return nil, err
	}

	return &quote, nil
}

func (g *NatsGateway) SendOrder(ctx context.Context, provider_id string, spec routing.ChildOrderSpec) (string, error) {
	var response sendOrderResponse

	err := g.request(ctx, "omx.providers."+provider_id+".order", sendOrderRequest{Spec: spec}, &response)
	if err != nil {
		return "", err
	}

	if response.Error != "" {
		return "", errors.New(response.Error)
	}

	return response.ProviderOrderID, nil
}

func (g *NatsGateway) CancelOrder(ctx context.Context, provider_id string, provider_order_id string) error {
	var response sendOrderResponse

	err := g.request(ctx, "omx.providers."+provider_id+".cancel", cancelRequest{ProviderOrderID: provider_order_id}, &response)
	if err != nil {
		return err
	}

	if response.Error != "" {
		return errors.New(response.Error)
	}

	return nil
}

func (g *NatsGateway) AmendOrder(ctx context.Context, provider_id string, provider_order_id string, changes routing.OrderChanges) error {
	var response sendOrderResponse

	err := g.request(ctx, "omx.providers."+provider_id+".amend", amendRequest{
		ProviderOrderID: provider_order_id,
		Changes:         changes,
	}, &response)
	if err != nil {
		return err
	}

	if response.Error != "" {
		return errors.New(response.Error)
	}

	return nil
}
