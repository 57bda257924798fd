package catalog

import "github.com/simp-lee/rentfront/internal/domain"

// ProductResponse is a product as the API returns it, with its best deal.
type ProductResponse struct {
	domain.Product
	BestDeal *domain.RentalPricingTier `json:"bestDeal"`
}

// ProductCard is the template model of a product tile.
type ProductCard struct {
	Product  domain.Product
	BestDeal domain.RentalPricingTier
	HasDeal  bool
}

func newProductResponse(p domain.Product) ProductResponse {
	resp := ProductResponse{Product: p}
	if best, ok := p.BestDeal(); ok {
		resp.BestDeal = &best
	}
	return resp
}

func newProductCards(products []domain.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		best, ok := p.BestDeal()
		cards = append(cards, ProductCard{Product: p, BestDeal: best, HasDeal: ok})
	}
	return cards
}
