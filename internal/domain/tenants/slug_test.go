package tenants

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Each test gets its own named in-memory database so the connection pool
// always lands on the same schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Barbershop{}))
	return db
}

func TestMakeSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple name", "Imperio Barber", "imperio-barber"},
		{"extra whitespace", "  Barba & Cia  ", "barba-cia"},
		{"collapses dashes", "Top -- Cut", "top-cut"},
		{"strips symbols", "Navalha!!! #1", "navalha-1"},
		{"empty falls back", "???", "barbearia"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expect, MakeSlug(tt.input))
		})
	}
}

func TestEnsureSlug(t *testing.T) {
	db := testDB(t)

	t.Run("keeps an existing slug", func(t *testing.T) {
		shop := &Barbershop{Name: "Imperio Barber", Slug: "custom"}
		require.NoError(t, db.Create(shop).Error)

		slug, err := EnsureSlug(db, shop)
		require.NoError(t, err)
		require.Equal(t, "custom", slug)
	})

	t.Run("generates and persists from the name", func(t *testing.T) {
		shop := &Barbershop{Name: "Navalha de Ouro"}
		require.NoError(t, db.Create(shop).Error)

		slug, err := EnsureSlug(db, shop)
		require.NoError(t, err)
		require.Equal(t, "navalha-de-ouro", slug)

		var stored Barbershop
		require.NoError(t, db.First(&stored, shop.ID).Error)
		require.Equal(t, "navalha-de-ouro", stored.Slug)
	})

	t.Run("suffixes the id on collision", func(t *testing.T) {
		shop := &Barbershop{Name: "Navalha de Ouro"}
		require.NoError(t, db.Create(shop).Error)

		slug, err := EnsureSlug(db, shop)
		require.NoError(t, err)
		require.Equal(t, "navalha-de-ouro-"+strconv.Itoa(int(shop.ID)), slug)
	})

	t.Run("rejects a shop without an id", func(t *testing.T) {
		_, err := EnsureSlug(db, &Barbershop{Name: "Sem ID"})
		require.Error(t, err)
	})
}
