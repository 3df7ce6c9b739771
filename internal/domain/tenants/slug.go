package tenants

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

/*
	Slug helpers
	------------
	- Responsible ONLY for:
	  • generating slugs from shop names
	  • persisting them
	- No access logic, no billing logic here
*/

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe base slug from a shop name.
// Example: "Imperio Barber" -> "imperio-barber"
func MakeSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "barbearia"
	}
	return base
}

// EnsureSlug ensures shop.Slug exists, is unique, and is persisted.
// Must be called AFTER the shop has an ID (after Create).
func EnsureSlug(db *gorm.DB, shop *Barbershop) (string, error) {
	if shop == nil {
		return "", fmt.Errorf("barbershop is nil")
	}
	if db == nil {
		return "", fmt.Errorf("db is nil")
	}

	if strings.TrimSpace(shop.Slug) != "" {
		return strings.TrimSpace(shop.Slug), nil
	}

	if shop.ID == 0 {
		return "", fmt.Errorf("barbershop ID missing (call EnsureSlug after Create)")
	}

	slug := MakeSlug(shop.Name)

	// Take the bare slug when free, fall back to slug-<id> on collision.
	var count int64
	if err := db.Model(&Barbershop{}).
		Where("slug = ? AND id <> ?", slug, shop.ID).
		Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		slug = fmt.Sprintf("%s-%d", slug, shop.ID)
	}

	shop.Slug = slug

	if err := db.
		Model(&Barbershop{}).
		Where("id = ?", shop.ID).
		Update("slug", slug).Error; err != nil {
		return "", err
	}

	return slug, nil
}
