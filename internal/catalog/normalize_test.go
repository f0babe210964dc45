package catalog

import (
	"testing"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyFrequency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Frequency
	}{
		{"spanish monthly in name", "Lentes Mensuales Premium", domain.FrequencyMonthly},
		{"spanish daily in description", "Lentes suaves de reemplazo con uso y descarte de forma diaria", domain.FrequencyDaily},
		{"english daily", "1-Day Acuvue Moist", domain.FrequencyDaily},
		{"weekly", "Acuvue Oasys semanal", domain.FrequencyWeekly},
		{"quarterly", "Lentes trimestrales de larga duracion", domain.FrequencyQuarterly},
		{"no keyword defaults monthly", "Biofinity Toric", domain.FrequencyMonthly},
		{"daily wins over monthly", "Uso diario, pack mensual", domain.FrequencyDaily},
		{"case insensitive", "LENTES DIARIAS", domain.FrequencyDaily},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFrequency(tt.text))
		})
	}
}

func TestNormalize(t *testing.T) {
	stock := 14
	raw := WooProduct{
		ID:            101,
		Name:          "Acuvue Oasys",
		Slug:          "acuvue-oasys",
		Description:   "Reemplazo semanal con tecnologia Hydraclear",
		Price:         "29.90",
		RegularPrice:  "34.90",
		StockQuantity: &stock,
		StockStatus:   "instock",
		AverageRating: "4.6",
		RatingCount:   128,
		Images: []WooImage{
			{Src: "https://cdn.example.com/oasys-1.jpg"},
			{Src: ""},
		},
		Attributes: []WooAttribute{
			{Name: "Marca", Options: []string{"Acuvue"}},
			{Name: "Material", Options: []string{"Senofilcon A"}},
			{Name: "Contenido de agua", Options: []string{"38%"}},
		},
		MetaData: []WooMeta{
			{Key: "_subscription_price", Value: []byte(`"26.90"`)},
		},
	}

	p := NewNormalizer().Normalize(raw)

	assert.Equal(t, "acuvue-oasys", p.Slug)
	assert.Equal(t, "Acuvue", p.Brand)
	assert.Equal(t, domain.FrequencyWeekly, p.Frequency)
	assert.Equal(t, "29.9", p.Price.String())
	assert.Equal(t, "26.9", p.SubscriptionPrice.String())
	assert.Equal(t, "Senofilcon A", p.Material)
	assert.Equal(t, "38%", p.WaterContent)
	assert.Equal(t, 14, p.Stock)
	assert.True(t, p.InStock)
	assert.Equal(t, []string{"https://cdn.example.com/oasys-1.jpg"}, p.Images)
	assert.Equal(t, "Acuvue", p.Specifications["marca"])
	assert.InDelta(t, 4.6, p.Rating, 0.001)
	assert.Equal(t, 128, p.ReviewCount)
}

func TestNormalize_UnparseablePriceFallsBack(t *testing.T) {
	p := NewNormalizer().Normalize(WooProduct{
		Slug:         "biofinity",
		Name:         "Biofinity",
		Price:        "",
		RegularPrice: "24.50",
	})
	assert.Equal(t, "24.5", p.Price.String())

	p = NewNormalizer().Normalize(WooProduct{Slug: "x", Name: "x"})
	assert.True(t, p.Price.IsZero())
}

func TestNormalize_CustomClassifier(t *testing.T) {
	n := NewNormalizerWithClassifier(func(string) domain.Frequency {
		return domain.FrequencyQuarterly
	})
	p := n.Normalize(WooProduct{Slug: "x", Name: "Lentes diarias"})
	assert.Equal(t, domain.FrequencyQuarterly, p.Frequency)
}
