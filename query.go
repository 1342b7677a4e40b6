package qbclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonwraymond/qbclient/api"
)

// QueryOpts shapes a query statement. The zero value selects everything
// from the first page.
type QueryOpts struct {
	// Conditions is the WHERE clause body, e.g. "Active = true".
	Conditions string

	// Select is the projection; "*" when empty.
	Select string

	// Limit caps the page size (MAXRESULTS). Ignored when <= 0.
	Limit int

	// Offset is the zero-based record offset; the statement's
	// STARTPOSITION is offset+1. Ignored when <= 0.
	Offset int
}

// Statement renders the query for an entity type:
//
//	SELECT * FROM Customer WHERE Active = true STARTPOSITION 6 MAXRESULTS 100
func (o QueryOpts) Statement(entity string) string {
	sel := o.Select
	if sel == "" {
		sel = "*"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", sel, entity)
	if o.Conditions != "" {
		b.WriteString(" WHERE ")
		b.WriteString(o.Conditions)
	}
	if o.Offset > 0 {
		fmt.Fprintf(&b, " STARTPOSITION %d", o.Offset+1)
	}
	if o.Limit > 0 {
		fmt.Fprintf(&b, " MAXRESULTS %d", o.Limit)
	}
	return b.String()
}

// Query runs a query statement for the entity type against the query
// endpoint.
func (c *Client) Query(ctx context.Context, entity string, opts QueryOpts) (*api.SuccessResponse, error) {
	q := url.Values{}
	q.Set("query", opts.Statement(entity))
	return c.Get(ctx, "query", q)
}
