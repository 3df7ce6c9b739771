package tenants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolverBySlug(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, time.Minute)

	require.NoError(t, db.Create(&Barbershop{Name: "Imperio Barber", Slug: "imperio-barber"}).Error)

	t.Run("found", func(t *testing.T) {
		shop, err := r.BySlug("imperio-barber")
		require.NoError(t, err)
		require.NotNil(t, shop)
		require.Equal(t, "Imperio Barber", shop.Name)
	})

	t.Run("missing slug is nil, not an error", func(t *testing.T) {
		shop, err := r.BySlug("nao-existe")
		require.NoError(t, err)
		require.Nil(t, shop)
	})
}

func TestResolverCachesResults(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, time.Minute)

	require.NoError(t, db.Create(&Barbershop{Name: "Imperio Barber", Slug: "imperio-barber"}).Error)

	shop, err := r.BySlug("imperio-barber")
	require.NoError(t, err)
	require.NotNil(t, shop)

	// A rename that bypasses Invalidate keeps serving the cached row.
	require.NoError(t, db.Model(&Barbershop{}).Where("slug = ?", "imperio-barber").Update("name", "Renomeada").Error)

	cached, err := r.BySlug("imperio-barber")
	require.NoError(t, err)
	require.Equal(t, "Imperio Barber", cached.Name)
}

func TestResolverCachesNegativeResults(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, time.Minute)

	shop, err := r.BySlug("futura")
	require.NoError(t, err)
	require.Nil(t, shop)

	// The row appears after the miss was cached; without invalidation the
	// miss is still served.
	require.NoError(t, db.Create(&Barbershop{Name: "Futura", Slug: "futura"}).Error)

	shop, err = r.BySlug("futura")
	require.NoError(t, err)
	require.Nil(t, shop)

	r.Invalidate("futura")

	shop, err = r.BySlug("futura")
	require.NoError(t, err)
	require.NotNil(t, shop)
}

func TestResolverInvalidateDropsOldAndNewSlug(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, time.Minute)

	require.NoError(t, db.Create(&Barbershop{Name: "Imperio Barber", Slug: "imperio-a"}).Error)

	shop, err := r.BySlug("imperio-a")
	require.NoError(t, err)
	require.NotNil(t, shop)

	// Slug change a -> b: both keys must be dropped so neither the stale hit
	// nor a stale miss survives.
	require.NoError(t, db.Model(&Barbershop{}).Where("slug = ?", "imperio-a").Update("slug", "imperio-b").Error)
	r.Invalidate("imperio-a", "imperio-b")

	old, err := r.BySlug("imperio-a")
	require.NoError(t, err)
	require.Nil(t, old)

	renamed, err := r.BySlug("imperio-b")
	require.NoError(t, err)
	require.NotNil(t, renamed)
}

func TestResolverOfficial(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, time.Minute)

	t.Run("none configured is nil, not an error", func(t *testing.T) {
		shop, err := r.Official()
		require.NoError(t, err)
		require.Nil(t, shop)
	})

	t.Run("flagged shop resolves after invalidation", func(t *testing.T) {
		require.NoError(t, db.Create(&Barbershop{Name: "Imperio Barber", Slug: "imperio-barber", IsOfficial: true}).Error)
		r.Invalidate()

		shop, err := r.Official()
		require.NoError(t, err)
		require.NotNil(t, shop)
		require.True(t, shop.IsOfficial)
	})
}

func TestResolverTTLExpiry(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, 10*time.Millisecond)

	shop, err := r.BySlug("tardia")
	require.NoError(t, err)
	require.Nil(t, shop)

	require.NoError(t, db.Create(&Barbershop{Name: "Tardia", Slug: "tardia"}).Error)
	time.Sleep(20 * time.Millisecond)

	shop, err = r.BySlug("tardia")
	require.NoError(t, err)
	require.NotNil(t, shop)
}
