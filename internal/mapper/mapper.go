// Package mapper turns one remote advert into destination listing fields and
// tracked display meta. MapAdvert is deterministic: the same advert always
// yields the same output.
package mapper

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"otomoto_sync/internal/domain"
)

// ErrMissingTitle signals an advert whose title cannot be resolved even from
// make+model. Callers count it as a per-record validation error.
var ErrMissingTitle = errors.New("mapper: advert has no title and make/model are insufficient")

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

var gearboxLabels = map[string]string{
	"manual":         "Manualna",
	"automatic":      "Automatyczna",
	"semi-automatic": "Półautomatyczna",
}

var fuelTypeLabels = map[string]string{
	"diesel":     "Diesel",
	"petrol":     "Benzyna",
	"lpg":        "LPG",
	"petrol-lpg": "Benzyna+LPG",
	"hybrid":     "Hybryda",
	"electric":   "Elektryczny",
}

// MapAdvert maps an advert to listing fields and meta. The body mirrors the
// remote description verbatim (sanitized); unhandled params are dropped on
// purpose, the explicit display fields cover everything worth showing.
func MapAdvert(adv *domain.Advert) (*domain.Mapped, error) {
	title, err := ResolveTitle(adv)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{}
	put := func(key, value string) {
		if value != "" {
			meta[key] = sanitizeText(value)
		}
	}

	put(domain.MetaSourceURL, adv.URL)
	if adv.CategoryID != 0 {
		meta[domain.MetaCategoryID] = strconv.FormatInt(adv.CategoryID, 10)
	}

	params := adv.Params
	put(domain.MetaMake, params.Make)
	put(domain.MetaModel, params.Model)
	if params.Year != "" {
		if year, err := strconv.Atoi(strings.TrimSpace(params.Year)); err == nil {
			meta[domain.MetaYear] = strconv.Itoa(year)
		}
	}

	if params.Price != nil {
		if amount := normalizeDecimal(params.Price.Amount); amount != "" {
			meta[domain.MetaPriceValue] = amount
		}
		put(domain.MetaPriceCurrency, params.Price.Currency)
		put(domain.MetaPriceGrossNet, params.Price.GrossNet)
		put(domain.MetaPriceType, params.Price.Type)
	}

	if params.Lifetime != "" {
		meta[domain.MetaHours] = sanitizeText(params.Lifetime) + " mth"
	} else if isNumeric(params.Mileage) {
		meta[domain.MetaHours] = sanitizeText(params.Mileage) + " mth"
	}

	if power := powerDisplay(params); power != "" {
		meta[domain.MetaPower] = power
	}
	if capacity := capacityDisplay(params.EngineCapacity); capacity != "" {
		meta[domain.MetaCapacity] = capacity
	}
	if params.Gearbox != "" {
		meta[domain.MetaGearbox] = labelFor(gearboxLabels, params.Gearbox)
	}
	if params.FuelType != "" {
		meta[domain.MetaFuelType] = labelFor(fuelTypeLabels, params.FuelType)
	}
	put(domain.MetaOrigin, params.CountryOrigin)
	put(domain.MetaTransmission, params.Transmission)
	put(domain.MetaDamaged, params.Damaged)
	put(domain.MetaFinancial, params.FinancialOption)
	put(domain.MetaVAT, params.VAT)
	put(domain.MetaRegistered, params.Registered)
	put(domain.MetaOriginalOwner, params.OriginalOwner)
	put(domain.MetaNoAccident, params.NoAccident)

	features := make([]string, 0, len(params.Features))
	for _, f := range params.Features {
		features = append(features, sanitizeText(f))
	}

	return &domain.Mapped{
		Title:    title,
		Body:     sanitizeBody(adv.Description),
		Meta:     meta,
		Features: features,
	}, nil
}

// ResolveTitle returns the advert title, synthesizing one from make+model
// (capitalized make, hyphens to spaces) when the remote title is blank.
func ResolveTitle(adv *domain.Advert) (string, error) {
	if title := strings.TrimSpace(adv.Title); title != "" {
		return sanitizeText(title), nil
	}

	mk := strings.TrimSpace(adv.Params.Make)
	model := strings.TrimSpace(adv.Params.Model)
	if mk == "" || model == "" {
		return "", ErrMissingTitle
	}

	formatted := capitalizeWords(strings.ReplaceAll(sanitizeText(mk), "-", " "))
	return formatted + " " + sanitizeText(model), nil
}

// powerDisplay prefers the primary power key, falls back to the legacy
// engine_power key, numeric-normalizes and formats as "<N> KM"; non-numeric
// values pass through sanitized.
func powerDisplay(params domain.AdvertParams) string {
	raw := params.Power
	if raw == "" {
		raw = params.EnginePower
	}
	if raw == "" {
		return ""
	}

	digits := nonNumeric.ReplaceAllString(raw, "")
	if v, err := strconv.ParseFloat(digits, 64); err == nil && v > 0 {
		return fmt.Sprintf("%d KM", int(math.Round(v)))
	}
	return sanitizeText(raw)
}

// capacityDisplay normalizes engine capacity to liters above 1000, cm³
// below, with a heuristic for inputs already expressed in liters (an explicit
// liter marker, or a decimal point on a small value).
func capacityDisplay(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := strings.NewReplacer(" ", "", "cm3", "", "cc", "").Replace(strings.ToLower(raw))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	literMarker := strings.HasSuffix(cleaned, "l")
	cleaned = strings.TrimSuffix(cleaned, "l")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return sanitizeText(raw)
	}
	if v <= 0 {
		return sanitizeText(raw)
	}

	switch {
	case literMarker || (strings.Contains(cleaned, ".") && v < 20):
		return fmt.Sprintf("%.1f l", v)
	case v >= 1000:
		return fmt.Sprintf("%.1f l", v/1000)
	default:
		return fmt.Sprintf("%d cm³", int(math.Round(v)))
	}
}

func labelFor(labels map[string]string, raw string) string {
	key := strings.ToLower(sanitizeText(raw))
	if label, ok := labels[key]; ok {
		return label
	}
	return capitalizeFirst(key)
}

// normalizeDecimal strips everything but digits and the decimal point,
// coercing comma decimal separators first.
func normalizeDecimal(raw string) string {
	cleaned := nonNumeric.ReplaceAllString(strings.ReplaceAll(raw, ",", "."), "")
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return ""
	}
	return cleaned
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// sanitizeText collapses control characters and trims, mirroring what the
// destination expects of plain-text fields.
func sanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// sanitizeBody keeps the rich-text description as-is apart from control
// characters; the destination renders it as trusted-enough HTML.
func sanitizeBody(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r < 0x20 && r != '\n' && r != '\t' && r != '\r') || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
