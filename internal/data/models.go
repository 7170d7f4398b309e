// internal/data/models.go
package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Models is a top-level container that groups both catalogs together.
// It is passed around the application via applicationDependencies so every
// handler has access to the catalogs without knowing which store backs them.
type Models struct {
	Minerals *Catalog[Mineral]
	Games    *Catalog[Game]
}

// NewModels constructs Models backed by PostgreSQL through the given pool.
func NewModels(db *sqlx.DB, logger Logger) Models {
	return Models{
		Minerals: NewCatalog(MineralSchema, NewPostgresStore(db, MineralSchema, logger)),
		Games:    NewCatalog(GameSchema, NewPostgresStore(db, GameSchema, logger)),
	}
}

// NewMemoryModels constructs Models backed by process memory.
func NewMemoryModels() Models {
	return Models{
		Minerals: NewCatalog(MineralSchema, NewMemoryStore(MineralSchema)),
		Games:    NewCatalog(GameSchema, NewMemoryStore(GameSchema)),
	}
}

// Store persists the records of one catalog. Insert returns ErrDuplicateRecord
// for a taken identifier; Get, Update and Delete return ErrRecordNotFound for a
// missing one. Each call is atomic.
type Store[T Record[T]] interface {
	List(ctx context.Context, p Plan[T]) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, r T) error
	Update(ctx context.Context, r T) error
	Delete(ctx context.Context, id string) error
}

// Catalog enforces validation and identity rules on top of a Store.
type Catalog[T Record[T]] struct {
	Schema *Schema[T]
	store  Store[T]
	now    func() time.Time
}

// NewCatalog wires schema and store together.
func NewCatalog[T Record[T]](schema *Schema[T], store Store[T]) *Catalog[T] {
	return &Catalog[T]{Schema: schema, store: store, now: time.Now}
}

// List runs the query pipeline and returns one page.
func (c *Catalog[T]) List(ctx context.Context, q Query) ([]T, error) {
	p, err := c.Schema.Plan(q)
	if err != nil {
		return nil, err
	}
	records, err := c.store.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.Schema.Plural, err)
	}
	return records, nil
}

// All returns every record in primary-key order, ignoring pagination.
func (c *Catalog[T]) All(ctx context.Context) ([]T, error) {
	records, err := c.store.List(ctx, c.Schema.everything())
	if err != nil {
		return nil, fmt.Errorf("list all %s: %w", c.Schema.Plural, err)
	}
	return records, nil
}

// Get returns the record with the given identifier.
func (c *Catalog[T]) Get(ctx context.Context, id string) (T, error) {
	r, err := c.store.Get(ctx, id)
	if err != nil {
		return r, c.translate(id, err)
	}
	return r, nil
}

// Create validates r and stores it. The returned record is the normalized one.
func (c *Catalog[T]) Create(ctx context.Context, r T) (T, error) {
	n, err := c.Schema.Validate(r, c.now())
	if err != nil {
		return n, err
	}
	if err := c.store.Insert(ctx, n); err != nil {
		return n, c.translate(n.Identifier(), err)
	}
	return n, nil
}

// Update replaces every field of the record at id with r. id and r's
// identifier must agree; the check happens before the store is consulted.
func (c *Catalog[T]) Update(ctx context.Context, id string, r T) (T, error) {
	if id != r.Identifier() {
		return r, invalid("identifier", "path and body identifiers do not match")
	}
	n, err := c.Schema.Validate(r, c.now())
	if err != nil {
		return n, err
	}
	if err := c.store.Update(ctx, n); err != nil {
		return n, c.translate(id, err)
	}
	return n, nil
}

// Delete removes the record permanently and returns its identifier.
func (c *Catalog[T]) Delete(ctx context.Context, id string) (string, error) {
	if err := c.store.Delete(ctx, id); err != nil {
		return "", c.translate(id, err)
	}
	return id, nil
}

func (c *Catalog[T]) translate(id string, err error) error {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return &NotFoundError{Identifier: id}
	case errors.Is(err, ErrDuplicateRecord):
		return &ConflictError{Identifier: id}
	default:
		return fmt.Errorf("%s %s: %w", c.Schema.Resource, id, err)
	}
}
