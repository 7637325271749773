// Package resolver maps marketplace category identifiers onto local
// machine-category terms, creating terms on first sight and falling back to
// a catch-all category when the marketplace cannot describe one.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"otomoto_sync/internal/domain"
)

const (
	fallbackCategoryName = "Inne maszyny rolnicze"
	fallbackCategorySlug = "inne-maszyny-rolnicze"

	// slugSuffixLimit bounds the collision-suffix probe so a pathological
	// taxonomy can't spin the resolver forever.
	slugSuffixLimit = 50
)

// CategorySource fetches category descriptions from the marketplace.
type CategorySource interface {
	GetCategory(ctx context.Context, categoryID int64) (*domain.CategoryInfo, error)
}

// TermStore is the subset of term storage the resolver needs.
type TermStore interface {
	FindByExternalCategoryID(ctx context.Context, taxonomy, externalID string) (*domain.Term, error)
	FindBySlug(ctx context.Context, taxonomy, slug string) (*domain.Term, error)
	Create(ctx context.Context, term *domain.Term) (int64, error)
	Ensure(ctx context.Context, taxonomy, name, slug string) (int64, error)
}

// SlugOverrideFunc lets deployments rewrite the generated slug for a
// category before collision handling runs. Returning the candidate unchanged
// keeps the default.
type SlugOverrideFunc func(candidate string, externalCategoryID int64, name string, info *domain.CategoryInfo) string

type Resolver struct {
	source       CategorySource
	terms        TermStore
	slugOverride SlugOverrideFunc
	logger       *slog.Logger
}

func New(source CategorySource, terms TermStore, override SlugOverrideFunc, logger *slog.Logger) *Resolver {
	return &Resolver{
		source:       source,
		terms:        terms,
		slugOverride: override,
		logger:       logger.With("component", "resolver"),
	}
}

// Resolve returns the local term id for a marketplace category, creating the
// term when the category is seen for the first time. Every failure path
// degrades to the catch-all category rather than failing the listing.
func (r *Resolver) Resolve(ctx context.Context, categoryID int64) (int64, error) {
	if categoryID == 0 {
		return r.fallback(ctx)
	}

	externalID := strconv.FormatInt(categoryID, 10)

	existing, err := r.terms.FindByExternalCategoryID(ctx, domain.TaxonomyCategory, externalID)
	if err != nil {
		return 0, fmt.Errorf("look up category term: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	info, err := r.source.GetCategory(ctx, categoryID)
	if err != nil {
		r.logger.Warn("category fetch failed, using fallback",
			"category_id", categoryID, "error", err)
		return r.fallback(ctx)
	}

	name := info.Names["pl"]
	if name == "" {
		r.logger.Warn("category has no polish name, using fallback", "category_id", categoryID)
		return r.fallback(ctx)
	}

	slug := slugFromInfo(info, name)
	if r.slugOverride != nil {
		slug = r.slugOverride(slug, categoryID, name, info)
	}

	termID, err := r.createWithUniqueSlug(ctx, name, slug, externalID, info.Code)
	if err != nil {
		r.logger.Warn("category term creation failed, using fallback",
			"category_id", categoryID, "error", err)
		return r.fallback(ctx)
	}
	return termID, nil
}

// createWithUniqueSlug inserts the term, probing suffixed slugs on
// collision. A colliding term that already carries the same external
// category id is reused; someone created it between our lookup and insert.
func (r *Resolver) createWithUniqueSlug(ctx context.Context, name, slug, externalID, code string) (int64, error) {
	candidate := slug
	for i := 0; i <= slugSuffixLimit; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", slug, i)
		}

		occupant, err := r.terms.FindBySlug(ctx, domain.TaxonomyCategory, candidate)
		if err != nil {
			return 0, err
		}
		if occupant != nil {
			if occupant.ExternalCategoryID == externalID {
				return occupant.ID, nil
			}
			continue
		}

		id, err := r.terms.Create(ctx, &domain.Term{
			Taxonomy:             domain.TaxonomyCategory,
			Name:                 name,
			Slug:                 candidate,
			ExternalCategoryID:   externalID,
			ExternalCategoryCode: code,
		})
		if err != nil {
			return 0, err
		}
		r.logger.Info("created category term", "name", name, "slug", candidate, "external_id", externalID)
		return id, nil
	}
	return 0, fmt.Errorf("no free slug for %q after %d attempts", slug, slugSuffixLimit)
}

func (r *Resolver) fallback(ctx context.Context) (int64, error) {
	id, err := r.terms.Ensure(ctx, domain.TaxonomyCategory, fallbackCategoryName, fallbackCategorySlug)
	if err != nil {
		return 0, fmt.Errorf("ensure fallback category: %w", err)
	}
	return id, nil
}

func slugFromInfo(info *domain.CategoryInfo, name string) string {
	if info.Code != "" {
		return strings.ReplaceAll(strings.ToLower(info.Code), "_", "-")
	}
	return Slugify(name)
}

var polishTranslit = map[rune]rune{
	'ą': 'a', 'ć': 'c', 'ę': 'e', 'ł': 'l', 'ń': 'n',
	'ó': 'o', 'ś': 's', 'ź': 'z', 'ż': 'z',
}

// Slugify lowercases, transliterates Polish diacritics and collapses
// everything else into single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if repl, ok := polishTranslit[r]; ok {
			r = repl
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
