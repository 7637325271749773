// Package reconciler applies one remote advert to the local catalog:
// create, update, skip or trash decisions, term assignment and the photo
// gallery, yielding a per-record outcome for the cycle report.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"otomoto_sync/internal/domain"
	"otomoto_sync/internal/mapper"
)

// photoQualityTiers is the preference order for picking a photo variant.
var photoQualityTiers = []string{
	"2048x1360", "1280x800", "1080x720", "original", "732x488", "800x600", "640x480",
}

// ConditionAny disables the condition filter.
const ConditionAny = "any"

type ListingStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*domain.Listing, error)
	Create(ctx context.Context, listing *domain.Listing) (int64, error)
	Update(ctx context.Context, listing *domain.Listing) error
	SetLastSynced(ctx context.Context, id int64, t time.Time) error
}

type TermStore interface {
	Ensure(ctx context.Context, taxonomy, name, slug string) (int64, error)
}

type CategoryResolver interface {
	Resolve(ctx context.Context, categoryID int64) (int64, error)
}

type AttachmentStore interface {
	Create(ctx context.Context, att *domain.Attachment) (int64, error)
	DeleteByListing(ctx context.Context, listingID int64) ([]string, error)
}

type MediaStore interface {
	Download(ctx context.Context, rawURL, baseName string) (string, error)
	Remove(paths []string)
}

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	// ConditionFilter keeps only adverts of this condition; ConditionAny
	// admits everything.
	ConditionFilter string
	// MaxPhotos caps how many gallery photos get downloaded per listing.
	MaxPhotos int
}

type Reconciler struct {
	cfg         Config
	listings    ListingStore
	terms       TermStore
	categories  CategoryResolver
	attachments AttachmentStore
	media       MediaStore
	tx          TxManager
	logger      *slog.Logger
	now         func() time.Time
}

func New(
	cfg Config,
	listings ListingStore,
	terms TermStore,
	categories CategoryResolver,
	attachments AttachmentStore,
	media MediaStore,
	tx TxManager,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		cfg:         cfg,
		listings:    listings,
		terms:       terms,
		categories:  categories,
		attachments: attachments,
		media:       media,
		tx:          tx,
		logger:      logger.With("component", "reconciler"),
		now:         time.Now,
	}
}

// Reconcile applies one advert to the catalog and reports what happened.
// The error return carries detail for the cycle's error list; it is non-nil
// exactly when the outcome is an error outcome.
func (r *Reconciler) Reconcile(ctx context.Context, adv *domain.Advert, force bool) (domain.Outcome, error) {
	if adv.ID == "" {
		return domain.OutcomeErrorMissingID, errors.New("advert has no id")
	}

	if adv.Status != domain.AdvertStatusActive {
		return domain.OutcomeSkippedInactive, nil
	}

	mapped, err := mapper.MapAdvert(adv)
	if err != nil {
		if errors.Is(err, mapper.ErrMissingTitle) {
			return domain.OutcomeErrorMissingTitle, fmt.Errorf("advert %s: %w", adv.ID, err)
		}
		return domain.OutcomeErrorCreating, fmt.Errorf("map advert %s: %w", adv.ID, err)
	}

	if r.cfg.ConditionFilter != "" && r.cfg.ConditionFilter != ConditionAny &&
		adv.Condition != r.cfg.ConditionFilter {
		return domain.OutcomeSkippedWrongCondition, nil
	}

	existing, err := r.listings.FindByExternalID(ctx, adv.ID)
	if err != nil {
		return domain.OutcomeErrorCreating, fmt.Errorf("look up listing for advert %s: %w", adv.ID, err)
	}

	if existing == nil {
		return r.create(ctx, adv, mapped)
	}
	return r.update(ctx, adv, mapped, existing, force)
}

func (r *Reconciler) create(ctx context.Context, adv *domain.Advert, mapped *domain.Mapped) (domain.Outcome, error) {
	conditionTermID, err := r.conditionTerm(ctx, adv.Condition)
	if err != nil {
		return domain.OutcomeErrorCreating, fmt.Errorf("ensure condition term for advert %s: %w", adv.ID, err)
	}

	categoryTermID, err := r.categories.Resolve(ctx, adv.CategoryID)
	if err != nil {
		return domain.OutcomeErrorCreating, fmt.Errorf("resolve category for advert %s: %w", adv.ID, err)
	}

	now := r.now()
	listing := &domain.Listing{
		ExternalID:      adv.ID,
		Title:           mapped.Title,
		Body:            mapped.Body,
		Status:          domain.ListingPublished,
		ManuallyEdited:  false,
		LastSyncedAt:    &now,
		CategoryTermID:  categoryTermID,
		ConditionTermID: conditionTermID,
		Meta:            mapped.Meta,
		Features:        mapped.Features,
	}

	err = r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := r.listings.Create(ctx, listing)
		if err != nil {
			return err
		}
		listing.ID = id
		return nil
	})
	if err != nil {
		return domain.OutcomeErrorCreating, fmt.Errorf("create listing for advert %s: %w", adv.ID, err)
	}

	r.syncGallery(ctx, listing.ID, adv, false)

	r.logger.Info("created listing", "external_id", adv.ID, "listing_id", listing.ID)
	return domain.OutcomeCreated, nil
}

func (r *Reconciler) update(ctx context.Context, adv *domain.Advert, mapped *domain.Mapped, existing *domain.Listing, force bool) (domain.Outcome, error) {
	if existing.ManuallyEdited && !force {
		return domain.OutcomeSkippedManualEdit, nil
	}

	if !force && !r.needsUpdate(adv, mapped, existing) {
		// Legacy rows predate last-sync tracking; stamp them so the date
		// check works next cycle.
		if existing.LastSyncedAt == nil {
			if err := r.listings.SetLastSynced(ctx, existing.ID, r.now()); err != nil {
				r.logger.Warn("failed to backfill last-sync timestamp",
					"listing_id", existing.ID, "error", err)
			}
		}
		return domain.OutcomeSkippedNoChange, nil
	}

	conditionTermID, err := r.conditionTerm(ctx, adv.Condition)
	if err != nil {
		return domain.OutcomeErrorUpdating, fmt.Errorf("ensure condition term for advert %s: %w", adv.ID, err)
	}

	categoryTermID, err := r.categories.Resolve(ctx, adv.CategoryID)
	if err != nil {
		return domain.OutcomeErrorUpdating, fmt.Errorf("resolve category for advert %s: %w", adv.ID, err)
	}

	now := r.now()
	existing.Title = mapped.Title
	existing.Body = mapped.Body
	existing.ManuallyEdited = false
	existing.LastSyncedAt = &now
	existing.CategoryTermID = categoryTermID
	existing.ConditionTermID = conditionTermID
	existing.Meta = mapped.Meta
	existing.Features = mapped.Features

	err = r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return r.listings.Update(ctx, existing)
	})
	if err != nil {
		return domain.OutcomeErrorUpdating, fmt.Errorf("update listing for advert %s: %w", adv.ID, err)
	}

	r.syncGallery(ctx, existing.ID, adv, true)

	r.logger.Info("updated listing", "external_id", adv.ID, "listing_id", existing.ID)
	return domain.OutcomeUpdated, nil
}

// needsUpdate decides whether the stored listing is stale. A remote
// modification date newer than the sync stamp is conclusive on its own;
// when it isn't, the tracked fields are diffed directly, so locally
// drifted rows still converge back to the remote state.
func (r *Reconciler) needsUpdate(adv *domain.Advert, mapped *domain.Mapped, existing *domain.Listing) bool {
	if existing.LastSyncedAt != nil && !adv.LastUpdatedAt.IsZero() &&
		adv.LastUpdatedAt.After(*existing.LastSyncedAt) {
		return true
	}
	return hasDiff(mapped, existing)
}

func hasDiff(mapped *domain.Mapped, existing *domain.Listing) bool {
	if mapped.Title != existing.Title || mapped.Body != existing.Body {
		return true
	}
	for _, key := range domain.ComparedMetaKeys {
		if !metaEqual(mapped.Meta[key], existing.Meta[key]) {
			return true
		}
	}
	return !featureSetsEqual(mapped.Features, existing.Features)
}

// metaEqual compares two meta values, treating both-numeric values as equal
// within a small tolerance so "12500" and "12500.00" don't force an update.
func metaEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return false
	}
	return math.Abs(fa-fb) < 0.001
}

func featureSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, f := range a {
		set[f]++
	}
	for _, f := range b {
		set[f]--
		if set[f] < 0 {
			return false
		}
	}
	return true
}

func (r *Reconciler) conditionTerm(ctx context.Context, condition string) (int64, error) {
	switch condition {
	case domain.ConditionUsed:
		return r.terms.Ensure(ctx, domain.TaxonomyCondition, "Używana", "uzywana")
	case domain.ConditionNew:
		return r.terms.Ensure(ctx, domain.TaxonomyCondition, "Nowa", "nowa")
	default:
		return 0, nil
	}
}

// syncGallery replaces a listing's gallery with the advert's photos, capped
// at MaxPhotos. Photo failures never fail the listing: a machine with no
// picture is still worth selling.
func (r *Reconciler) syncGallery(ctx context.Context, listingID int64, adv *domain.Advert, replace bool) {
	if replace {
		paths, err := r.attachments.DeleteByListing(ctx, listingID)
		if err != nil {
			r.logger.Warn("failed to drop old gallery", "listing_id", listingID, "error", err)
			return
		}
		r.media.Remove(paths)
	}

	if r.cfg.MaxPhotos <= 0 {
		return
	}

	position := 0
	for _, photo := range adv.Photos {
		if position >= r.cfg.MaxPhotos {
			break
		}
		url := pickPhotoURL(photo.URLs)
		if url == "" {
			continue
		}

		baseName := fmt.Sprintf("%s-%d", adv.ID, position)
		path, err := r.media.Download(ctx, url, baseName)
		if err != nil {
			r.logger.Warn("photo download failed",
				"external_id", adv.ID, "url", url, "error", err)
			continue
		}

		_, err = r.attachments.Create(ctx, &domain.Attachment{
			ListingID: listingID,
			Position:  position,
			SourceURL: url,
			FilePath:  path,
		})
		if err != nil {
			r.logger.Warn("failed to record attachment",
				"listing_id", listingID, "error", err)
			r.media.Remove([]string{path})
			continue
		}
		position++
	}
}

// pickPhotoURL walks the quality tiers in preference order and falls back to
// any variant the advert carries.
func pickPhotoURL(urls map[string]string) string {
	for _, tier := range photoQualityTiers {
		if u := urls[tier]; u != "" {
			return u
		}
	}
	for _, u := range urls {
		if u != "" {
			return u
		}
	}
	return ""
}
