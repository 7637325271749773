package otomoto

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"otomoto_sync/internal/domain"
)

// advertsEnvelope covers both response shapes of the adverts endpoint:
// a {"results": [...]} wrapper or a bare array.
type advertsEnvelope struct {
	Results []advertPayload `json:"results"`
}

type advertPayload struct {
	ID             json.Number                  `json:"id"`
	Title          string                       `json:"title"`
	Description    string                       `json:"description"`
	Status         string                       `json:"status"`
	NewUsed        string                       `json:"new_used"`
	CategoryID     int64                        `json:"category_id"`
	URL            string                       `json:"url"`
	LastUpdateDate string                       `json:"last_update_date"`
	Params         map[string]json.RawMessage   `json:"params"`
	Photos         map[string]map[string]string `json:"photos"`
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type categoryPayload struct {
	ID    int64             `json:"id"`
	Code  string            `json:"code"`
	Names map[string]string `json:"names"`
}

func (p categoryPayload) toDomain() *domain.CategoryInfo {
	return &domain.CategoryInfo{ID: p.ID, Code: p.Code, Names: p.Names}
}

func (p advertPayload) toDomain() domain.Advert {
	adv := domain.Advert{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Condition:   strings.ToLower(p.NewUsed),
		CategoryID:  p.CategoryID,
		URL:         p.URL,
		Params:      decodeParams(p.Params),
		Photos:      decodePhotos(p.Photos),
	}
	if p.ID.String() == "0" {
		adv.ID = ""
	}
	if p.LastUpdateDate != "" {
		// The API emits "2006-01-02 15:04:05"; tolerate RFC3339 too.
		if t, err := time.Parse("2006-01-02 15:04:05", p.LastUpdateDate); err == nil {
			adv.LastUpdatedAt = t
		} else if t, err := time.Parse(time.RFC3339, p.LastUpdateDate); err == nil {
			adv.LastUpdatedAt = t
		}
	}
	return adv
}

func decodeParams(raw map[string]json.RawMessage) domain.AdvertParams {
	p := domain.AdvertParams{
		Make:            paramString(raw["make"]),
		Model:           paramString(raw["model"]),
		Year:            paramString(raw["year"]),
		Lifetime:        paramString(raw["lifetime"]),
		Mileage:         paramString(raw["mileage"]),
		Power:           paramString(raw["power"]),
		EnginePower:     paramString(raw["engine_power"]),
		EngineCapacity:  paramString(raw["engine_capacity"]),
		Gearbox:         paramString(raw["gearbox"]),
		FuelType:        paramString(raw["fuel_type"]),
		CountryOrigin:   paramString(raw["country_origin"]),
		Transmission:    paramString(raw["transmission"]),
		Damaged:         paramString(raw["damaged"]),
		FinancialOption: paramString(raw["financial_option"]),
		VAT:             paramString(raw["vat"]),
		Registered:      paramString(raw["registered"]),
		OriginalOwner:   paramString(raw["original_owner"]),
		NoAccident:      paramString(raw["no_accident"]),
	}

	if rawPrice, ok := raw["price"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rawPrice, &fields); err == nil {
			p.Price = &domain.Price{
				Type:     paramString(fields["0"]),
				Amount:   paramString(fields["1"]),
				Currency: paramString(fields["currency"]),
				GrossNet: paramString(fields["gross_net"]),
			}
		}
	}

	if rawFeatures, ok := raw["features"]; ok {
		var features []string
		if err := json.Unmarshal(rawFeatures, &features); err == nil {
			p.Features = features
		}
	}

	return p
}

// paramString coerces a raw JSON param value (string, number or bool) to its
// string form. Anything structured yields "".
func paramString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// decodePhotos turns the index-keyed photo map into a slice ordered by the
// provider-assigned index.
func decodePhotos(raw map[string]map[string]string) []domain.Photo {
	if len(raw) == 0 {
		return nil
	}
	photos := make([]domain.Photo, 0, len(raw))
	for key, urls := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		photos = append(photos, domain.Photo{Index: idx, URLs: urls})
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].Index < photos[j].Index })
	return photos
}
