// Package consult orchestrates one conversation turn: extract the
// user's intent, fold it into the session's preference memory, compile
// a catalog query, and render the matches.
package consult

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/petalrow/bloom/internal/extract"
	"github.com/petalrow/bloom/internal/memory"
	"github.com/petalrow/bloom/internal/model"
	"github.com/petalrow/bloom/internal/query"
)

// Catalog is the execution side of compiled plans.
type Catalog interface {
	Select(ctx context.Context, plan query.Plan) ([]model.Product, error)
}

// Consultant owns one conversation session: a single preference memory
// that only its own turns may mutate. It is not safe for concurrent
// use; a session processes one turn at a time.
type Consultant struct {
	extractor extract.Extractor
	catalog   Catalog
	compiler  *query.Compiler
	prefs     *memory.Preferences
	log       *slog.Logger
	turns     int
}

// New creates a consultant with an empty preference memory.
func New(extractor extract.Extractor, catalog Catalog) *Consultant {
	return &Consultant{
		extractor: extractor,
		catalog:   catalog,
		compiler:  query.NewCompiler(),
		prefs:     memory.New(),
		log:       slog.Default(),
	}
}

// SetLimit overrides the result window size for subsequent turns.
// Non-positive values keep the compiler default.
func (c *Consultant) SetLimit(n int) {
	c.compiler.Limit = n
}

// Response is one turn's outcome. An empty Products slice means no
// catalog rows matched, which is a valid result, not a failure.
type Response struct {
	Products []model.Product    `json:"products"`
	Filters  memory.Preferences `json:"filters"`
	Message  string             `json:"message"`
}

// Ask processes one user message. Failures are turn-scoped and
// all-or-nothing: an extraction or catalog error returns without any
// change to the accumulated preferences, so the next turn starts from
// the last good state.
func (c *Consultant) Ask(ctx context.Context, text string) (*Response, error) {
	c.turns++

	u, err := c.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	// The update lands on a scratch copy and is committed only after
	// the catalog query succeeds.
	scratch := c.prefs.Snapshot()
	scratch.Apply(u)

	plan := c.compiler.Compile(scratch)
	products, err := c.catalog.Select(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	*c.prefs = scratch
	c.log.Debug("turn complete", "turn", c.turns, "matches", len(products))

	return &Response{
		Products: products,
		Filters:  scratch.Snapshot(),
		Message:  Render(products),
	}, nil
}

// Filters returns a snapshot of the active preferences.
func (c *Consultant) Filters() memory.Preferences {
	return c.prefs.Snapshot()
}

// Reset clears every accumulated preference.
func (c *Consultant) Reset() {
	*c.prefs = *memory.New()
}
