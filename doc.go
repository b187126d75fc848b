// Package chromalens is a client for Chroma vector database servers.
//
// The client talks to the modern tenant/database-scoped HTTP API and falls
// back to the legacy flat API once per call when a server does not support
// the modern endpoint. A confirmed not-found from the modern API is
// authoritative and never triggers the fallback.
//
// Construct a client with New, which verifies connectivity unless told not
// to:
//
//	client, err := chromalens.New(ctx,
//		chromalens.WithHost("localhost"),
//		chromalens.WithPort(8000),
//	)
//
// Resource services hang off the client: Tenants, Databases, Collections for
// lifecycle management and Items for record-level reads, writes and
// nearest-neighbour queries.
package chromalens
