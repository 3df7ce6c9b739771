package tenants

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const officialKey = "official"

// Resolver turns a resolution key (slug or the official marker) into a
// barbershop record, with a short-lived cache in front of the database.
//
// Not-found is a valid outcome and is returned as (nil, nil); only transport
// and database failures produce an error. Negative results are cached too, so
// a broken link does not hammer the database on every render.
type Resolver struct {
	db  *gorm.DB
	ttl time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	shop      *Barbershop
	expiresAt time.Time
}

func NewResolver(db *gorm.DB, ttl time.Duration) *Resolver {
	return &Resolver{
		db:    db,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

func slugKey(slug string) string { return "slug:" + slug }

// BySlug resolves a barbershop by its unique slug. Returns (nil, nil) when no
// such row exists.
func (r *Resolver) BySlug(slug string) (*Barbershop, error) {
	return r.resolve(slugKey(slug), func() (*Barbershop, error) {
		var shop Barbershop
		err := r.db.Where("slug = ?", slug).First(&shop).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve slug %q: %w", slug, err)
		}
		return &shop, nil
	})
}

// Official resolves the single barbershop flagged official, if any.
func (r *Resolver) Official() (*Barbershop, error) {
	return r.resolve(officialKey, func() (*Barbershop, error) {
		var shop Barbershop
		err := r.db.Where("is_official = true").First(&shop).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve official barbershop: %w", err)
		}
		return &shop, nil
	})
}

func (r *Resolver) resolve(key string, lookup func() (*Barbershop, error)) (*Barbershop, error) {
	now := time.Now()

	r.mu.Lock()
	if e, ok := r.cache[key]; ok && now.Before(e.expiresAt) {
		r.mu.Unlock()
		return e.shop, nil
	}
	r.mu.Unlock()

	shop, err := lookup()
	if err != nil {
		// Errors are never cached; the next request retries the database.
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = cacheEntry{shop: shop, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()

	return shop, nil
}

// Invalidate drops cache entries for the given slugs plus the official marker.
// Callers mutating a barbershop must pass both the old and new slug so no
// handler keeps serving one tenant's data under another's key.
func (r *Resolver) Invalidate(slugs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slugs {
		delete(r.cache, slugKey(s))
	}
	delete(r.cache, officialKey)
}

// package-level resolver wired up in main, used by middleware and handlers.
var Default *Resolver

func Init(db *gorm.DB) {
	Default = NewResolver(db, 30*time.Second)
}

// EnsureOfficial is the idempotent provisioning-time operation that guarantees
// exactly one barbershop carries the official flag. It runs in a transaction:
// if a flagged row already exists it wins; otherwise the shop matching
// preferredName is flagged, else the earliest-created one. The partial unique
// index on is_official backstops concurrent callers.
func EnsureOfficial(db *gorm.DB, preferredName string) (*Barbershop, error) {
	var official Barbershop

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_official = true").
			First(&official).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var candidate Barbershop
		if preferredName != "" {
			err = tx.Where("name = ?", preferredName).Order("created_at ASC").First(&candidate).Error
		}
		if preferredName == "" || errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Order("created_at ASC").First(&candidate).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&Barbershop{}).
			Where("id = ?", candidate.ID).
			Update("is_official", true).Error; err != nil {
			return err
		}

		candidate.IsOfficial = true
		official = candidate
		return nil
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ensure official barbershop: %w", err)
	}

	if Default != nil {
		Default.Invalidate(official.Slug)
	}
	return &official, nil
}
