package recommend

import (
	"log"
	"math/rand"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

// Suggestion is the summary shown as an upsell next to the cart
type Suggestion struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Brand     string `json:"brand"`
	ImageURL  string `json:"image_url,omitempty"`
	BasePrice string `json:"base_price"`
}

// Picker selects a random subset of catalog products to suggest alongside
// a cart. Any failure reading the catalog is logged and yields no
// suggestions; it never interrupts the shopping flow.
type Picker struct {
	readStore store.ReadStoreInterface

	// shuffle is swappable for deterministic tests
	shuffle func(n int, swap func(i, j int))
}

func NewPicker(readStore store.ReadStoreInterface) *Picker {
	return &Picker{
		readStore: readStore,
		shuffle:   rand.Shuffle,
	}
}

// ForCart picks up to k products not already in the cart
func (p *Picker) ForCart(c *readmodel.CartReadModel, k int) []Suggestion {
	if k <= 0 {
		return nil
	}

	items, err := p.readStore.GetAll("products")
	if err != nil {
		log.Printf("[Recommend] Failed to load catalog: %v", err)
		return nil
	}

	inCart := make(map[string]bool)
	if c != nil {
		for _, line := range c.Items {
			inCart[line.ProductID] = true
		}
	}

	candidates := make([]*readmodel.ProductReadModel, 0, len(items))
	for _, item := range items {
		prod, ok := item.(*readmodel.ProductReadModel)
		if !ok || inCart[prod.ID] {
			continue
		}
		candidates = append(candidates, prod)
	}

	p.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, prod := range candidates {
		suggestions = append(suggestions, Suggestion{
			ProductID: prod.ID,
			Title:     prod.Title,
			Brand:     prod.Brand,
			ImageURL:  prod.ImageURL,
			BasePrice: prod.BasePrice,
		})
	}
	return suggestions
}
