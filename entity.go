package qbclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/qbclient/api"
)

// Entity is the contract the attribute-mapping layer implements per
// entity variant. The client only needs the vendor entity name and a
// payload; field translation stays outside this module.
type Entity interface {
	// EntityName is the vendor type name, e.g. "Customer".
	EntityName() string

	// RequiredFields lists the attribute keys a payload must carry.
	RequiredFields() []string

	// BuildPayload translates a generic attribute map into the vendor
	// shape.
	BuildPayload(attrs map[string]any) map[string]any
}

// RawEntity is a pass-through Entity for callers that already hold
// vendor-shaped payloads.
type RawEntity struct {
	Name     string
	Required []string
}

func (e RawEntity) EntityName() string { return e.Name }

func (e RawEntity) RequiredFields() []string { return e.Required }

func (e RawEntity) BuildPayload(attrs map[string]any) map[string]any { return attrs }

// Create posts a new entity built from the attribute map.
func (c *Client) Create(ctx context.Context, e Entity, attrs map[string]any) (*api.SuccessResponse, error) {
	payload, err := buildPayload(e, attrs)
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, strings.ToLower(e.EntityName()), payload)
}

// Update posts an entity update (QuickBooks updates are POSTs with the
// full entity body including Id and SyncToken).
func (c *Client) Update(ctx context.Context, e Entity, attrs map[string]any) (*api.SuccessResponse, error) {
	payload, err := buildPayload(e, attrs)
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, strings.ToLower(e.EntityName()), payload)
}

func buildPayload(e Entity, attrs map[string]any) (map[string]any, error) {
	for _, f := range e.RequiredFields() {
		if _, ok := attrs[f]; !ok {
			return nil, fmt.Errorf("%w: %s requires attribute %q",
				api.ErrValidation, e.EntityName(), f)
		}
	}
	return e.BuildPayload(attrs), nil
}
