package storefront

import (
	"math"

	"bonneaffaire/pkg/shopapi"
)

const defaultDiscountBadge = 25

var categoryIcons = map[string]string{
	"salon":   "🛋️",
	"chambre": "🛏️",
	"cuisine": "🍽️",
	"gigogne": "📐",
}

type ProductCard struct {
	ID       string
	Icon     string
	Name     string
	Category string
	Price    float64
	OldPrice *float64
	Discount int
	InStock  bool
}

type CartLine struct {
	Index    int
	Name     string
	Quantity int
	Subtotal float64
}

type CartView struct {
	Lines  []CartLine
	Count  int
	Total  float64
	Footer string
}

// DiscountBadge is the percentage shown on a product card.
func DiscountBadge(p shopapi.Product) int {
	if p.DiscountPercentage > 0 {
		return p.DiscountPercentage
	}
	if p.OldPrice != nil && *p.OldPrice > 0 {
		return int(math.Round((*p.OldPrice - p.Price) / *p.OldPrice * 100))
	}
	return defaultDiscountBadge
}

func RenderProducts(products []shopapi.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		icon, ok := categoryIcons[p.Category]
		if !ok {
			icon = categoryIcons["salon"]
		}
		cards = append(cards, ProductCard{
			ID:       p.ID,
			Icon:     icon,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			OldPrice: p.OldPrice,
			Discount: DiscountBadge(p),
			InStock:  p.Stock > 0,
		})
	}
	return cards
}

func RenderCart(cart *Cart, fallback bool) CartView {
	view := CartView{
		Count:  cart.Count(),
		Total:  cart.Total(),
		Footer: "Livraison gratuite dans le 78 !",
	}
	if fallback {
		view.Footer = "Mode démonstration"
	}
	for i, item := range cart.Items {
		view.Lines = append(view.Lines, CartLine{
			Index:    i,
			Name:     item.Name,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal(),
		})
	}
	return view
}
