package domain

import "time"

// Advert lifecycle statuses as reported by the marketplace.
const (
	AdvertStatusActive = "active"
)

// Condition values carried in the new_used field.
const (
	ConditionUsed = "used"
	ConditionNew  = "new"
)

// Advert is one remote marketplace record, already decoded from the wire.
type Advert struct {
	ID            string
	Title         string
	Description   string
	Status        string
	Condition     string // new_used in the API
	CategoryID    int64
	URL           string
	Params        AdvertParams
	Photos        []Photo
	LastUpdatedAt time.Time
}

// AdvertParams is the structured parameter bag attached to an advert.
// Values arrive as free-form strings; normalization happens in the mapper.
type AdvertParams struct {
	Make            string
	Model           string
	Year            string
	Price           *Price
	Lifetime        string
	Mileage         string
	Power           string
	EnginePower     string // legacy key, fallback for Power
	EngineCapacity  string
	Gearbox         string
	FuelType        string
	CountryOrigin   string
	Transmission    string
	Damaged         string
	FinancialOption string
	VAT             string
	Registered      string
	OriginalOwner   string
	NoAccident      string
	Features        []string
}

// Price is the positional/keyed price structure of the marketplace API.
type Price struct {
	Type     string // positional element 0
	Amount   string // positional element 1
	Currency string
	GrossNet string
}

// Photo is one gallery entry: URLs keyed by quality tier
// (e.g. "2048x1360", "original"), ordered by the provider-assigned index.
type Photo struct {
	Index int
	URLs  map[string]string
}

// CategoryInfo is the remote category descriptor.
type CategoryInfo struct {
	ID    int64
	Code  string
	Names map[string]string // language -> display name
}
