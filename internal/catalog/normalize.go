package catalog

import (
	"encoding/json"
	"strings"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// FrequencyClassifier derives a replenishment frequency from catalog text
type FrequencyClassifier func(text string) domain.Frequency

// frequencyKeywords is the ordered keyword table the default classifier
// scans. The first list with any match wins; order matters because catalog
// copy often mentions several cadences ("reemplazo mensual, uso diario").
var frequencyKeywords = []struct {
	frequency domain.Frequency
	terms     []string
}{
	{domain.FrequencyDaily, []string{"diaria", "diario", "daily", "1-day", "one day", "un dia"}},
	{domain.FrequencyWeekly, []string{"semanal", "weekly", "1-2 week"}},
	{domain.FrequencyMonthly, []string{"mensual", "monthly"}},
	{domain.FrequencyQuarterly, []string{"trimestral", "quarterly", "3 month", "3 meses"}},
}

// ClassifyFrequency is the default classifier: case-insensitive substring
// scan over the keyword table, defaulting to monthly. The result is a
// heuristic, not authoritative data.
func ClassifyFrequency(text string) domain.Frequency {
	lowered := strings.ToLower(text)
	for _, entry := range frequencyKeywords {
		for _, term := range entry.terms {
			if strings.Contains(lowered, term) {
				return entry.frequency
			}
		}
	}
	return domain.FrequencyMonthly
}

// Normalizer maps upstream products onto catalog records
type Normalizer struct {
	classify FrequencyClassifier
}

// NewNormalizer creates a Normalizer with the default frequency classifier
func NewNormalizer() *Normalizer {
	return &Normalizer{classify: ClassifyFrequency}
}

// NewNormalizerWithClassifier creates a Normalizer with a custom classifier
func NewNormalizerWithClassifier(classify FrequencyClassifier) *Normalizer {
	return &Normalizer{classify: classify}
}

// Normalize maps one upstream product to a catalog record. Prices that fail
// to parse become zero rather than failing the whole product.
func (n *Normalizer) Normalize(raw WooProduct) *domain.Product {
	p := &domain.Product{
		Slug:           raw.Slug,
		Name:           raw.Name,
		Brand:          attributeValue(raw.Attributes, "marca", "brand"),
		Price:          parsePrice(raw.Price, raw.RegularPrice),
		Frequency:      n.classify(raw.Name + " " + raw.Description + " " + raw.ShortDescription),
		Material:       attributeValue(raw.Attributes, "material"),
		WaterContent:   attributeValue(raw.Attributes, "contenido de agua", "water content"),
		InStock:        raw.StockStatus == "instock",
		Images:         make([]string, 0, len(raw.Images)),
		Specifications: make(map[string]string, len(raw.Attributes)),
		ReviewCount:    raw.RatingCount,
	}

	if raw.StockQuantity != nil {
		p.Stock = *raw.StockQuantity
	}
	if rating, err := decimal.NewFromString(raw.AverageRating); err == nil {
		p.Rating, _ = rating.Float64()
	}
	if sub := metaValue(raw.MetaData, "_subscription_price"); sub != "" {
		if d, err := decimal.NewFromString(sub); err == nil {
			p.SubscriptionPrice = d
		}
	}

	for _, img := range raw.Images {
		if img.Src != "" {
			p.Images = append(p.Images, img.Src)
		}
	}
	for _, attr := range raw.Attributes {
		if attr.Name == "" || len(attr.Options) == 0 {
			continue
		}
		p.Specifications[strings.ToLower(attr.Name)] = strings.Join(attr.Options, ", ")
	}

	return p
}

// parsePrice parses the sale price, falling back to the regular price
func parsePrice(price, regular string) decimal.Decimal {
	if d, err := decimal.NewFromString(price); err == nil {
		return d
	}
	if d, err := decimal.NewFromString(regular); err == nil {
		return d
	}
	return decimal.Zero
}

// attributeValue returns the first option of the first attribute whose name
// matches any of the given names (case-insensitive)
func attributeValue(attrs []WooAttribute, names ...string) string {
	for _, attr := range attrs {
		lowered := strings.ToLower(attr.Name)
		for _, name := range names {
			if lowered == name && len(attr.Options) > 0 {
				return attr.Options[0]
			}
		}
	}
	return ""
}

// metaValue returns the string form of the meta entry with the given key
func metaValue(meta []WooMeta, key string) string {
	for _, m := range meta {
		if m.Key != key {
			continue
		}
		var s string
		if err := json.Unmarshal(m.Value, &s); err == nil {
			return s
		}
		var f float64
		if err := json.Unmarshal(m.Value, &f); err == nil {
			return decimal.NewFromFloat(f).String()
		}
	}
	return ""
}
