package domain

import "time"

// Listing statuses.
const (
	ListingPublished = "published"
	ListingTrashed   = "trash"
)

// Taxonomies used for remote-derived terms.
const (
	TaxonomyCategory  = "machine-category"
	TaxonomyCondition = "machine-condition"
)

// Tracked meta keys written by the mapper. Stale keys absent from a new
// mapping are deleted on update so old fields don't linger.
const (
	MetaSourceURL     = "source_url"
	MetaCategoryID    = "category_id"
	MetaMake          = "make"
	MetaModel         = "model"
	MetaYear          = "year"
	MetaPriceValue    = "price_value"
	MetaPriceCurrency = "price_currency"
	MetaPriceGrossNet = "price_gross_net"
	MetaPriceType     = "price_type"
	MetaHours         = "hours"
	MetaPower         = "engine_power"
	MetaCapacity      = "engine_capacity"
	MetaGearbox       = "gearbox"
	MetaFuelType      = "fuel_type"
	MetaOrigin        = "origin"
	MetaTransmission  = "transmission"
	MetaDamaged       = "damaged"
	MetaFinancial     = "financial_option"
	MetaVAT           = "vat_info"
	MetaRegistered    = "registered"
	MetaOriginalOwner = "original_owner"
	MetaNoAccident    = "no_accident"
)

// ComparedMetaKeys is the fixed set of meta fields consulted by change
// detection. Numeric values compare with a small tolerance; the feature
// list is compared separately as an order-independent set.
var ComparedMetaKeys = []string{
	MetaPriceValue,
	MetaYear,
	MetaMake,
	MetaModel,
	MetaHours,
	MetaPriceCurrency,
	MetaPriceGrossNet,
	MetaPriceType,
}

// Listing is the local mirror of one remote advert. At most one published
// listing exists per external id.
type Listing struct {
	ID              int64
	ExternalID      string
	Title           string
	Body            string
	Status          string
	ManuallyEdited  bool
	LastSyncedAt    *time.Time
	CategoryTermID  int64
	ConditionTermID int64
	Meta            map[string]string
	Features        []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Mapped is the mapper's output: destination entity fields plus the tracked
// display meta derived from the advert's parameter bag.
type Mapped struct {
	Title    string
	Body     string
	Meta     map[string]string
	Features []string
}

// Term is a taxonomy node. Remote-derived category terms are flat siblings;
// the external category id metadata, not the slug, is the lookup key.
type Term struct {
	ID                   int64
	Taxonomy             string
	Name                 string
	Slug                 string
	ExternalCategoryID   string
	ExternalCategoryCode string
}

// Attachment is one owned gallery image. Position 0 is the featured image.
type Attachment struct {
	ID        int64
	ListingID int64
	Position  int
	SourceURL string
	FilePath  string
}
