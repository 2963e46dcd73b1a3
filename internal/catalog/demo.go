package catalog

import "bonneaffaire/internal/models"

type demoEntry struct {
	name        string
	description string
	category    models.ProductCategory
	price       float64
	oldPrice    float64
	stock       int
}

var demoCatalog = []demoEntry{
	{"Canapé-Lit 3 Places Convertible", "Canapé-lit moderne en tissu, conversion facile, matelas confort inclus.", models.CategorySalon, 649, 999, 8},
	{"Table + 6 Chaises Design Moderne", "Ensemble complet table rectangulaire avec 6 chaises assorties.", models.CategoryCuisine, 449, 640, 5},
	{"Set 3 Tables Gigognes Tendance", "Trio de tables gigognes au design épuré, parfait gain de place.", models.CategoryGigogne, 169, 309, 12},
	{"Lit Double 160x200 + Sommier", "Lit double avec tête de lit et sommier à lattes inclus.", models.CategoryChambre, 359, 599, 6},
	{"Canapé-Lit d'Angle XXL", "Grand canapé d'angle convertible avec rangement intégré.", models.CategorySalon, 799, 1065, 3},
	{"Table Ronde + 6 Chaises", "Table ronde extensible en bois massif avec 6 chaises.", models.CategoryCuisine, 389, 599, 4},
	{"Tables Gigognes Marbre & Or (Set de 2)", "Duo de tables gigognes avec plateau effet marbre et pieds dorés.", models.CategoryGigogne, 119, 199, 15},
	{"Lit Simple 90x200 Ado", "Lit simple moderne pour chambre d'ado. Structure robuste.", models.CategoryChambre, 179, 359, 10},
}

// DemoProducts returns the showroom catalog used to seed an empty database
// and to keep the storefront usable while the API is unreachable.
// Every call returns fresh values.
func DemoProducts() []models.Product {
	products := make([]models.Product, 0, len(demoCatalog))
	for _, e := range demoCatalog {
		oldPrice := e.oldPrice
		products = append(products, models.Product{
			Name:        e.name,
			Description: e.description,
			Category:    e.category,
			Price:       e.price,
			OldPrice:    &oldPrice,
			Stock:       e.stock,
			IsActive:    true,
			Featured:    true,
			Tags:        []string{string(e.category)},
		})
	}
	return products
}
