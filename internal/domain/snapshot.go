package domain

import "time"

// --- Estruturas de Entrada ---

// BasketSnapshot is the immutable, point-in-time view of a basket that the
// rule engine evaluates against. It is assembled by the checkout
// orchestration from catalog and user data; the engine never fetches
// anything on its own.
type BasketSnapshot struct {
	StoreID      int64          `json:"storeId" yaml:"store_id"`
	Products     []ProductLine  `json:"products" yaml:"products"`
	Categories   []CategoryView `json:"categories" yaml:"categories"`
	TotalPrice   float64        `json:"totalPrice" yaml:"total_price"`
	PurchaseTime time.Time      `json:"purchaseTime" yaml:"purchase_time"`
	User         UserView       `json:"user" yaml:"user"`
}

// ProductLine is one basket line: a product of a store with its unit price,
// unit weight and the quantity placed in the basket.
type ProductLine struct {
	ProductID int64   `json:"productId" yaml:"product_id"`
	StoreID   int64   `json:"storeId" yaml:"store_id"`
	Price     float64 `json:"price" yaml:"price"`
	Weight    float64 `json:"weight" yaml:"weight"`
	Amount    int     `json:"amount" yaml:"amount"`
}

// CategoryView mirrors the catalog's category tree, restricted to the
// products present in the basket. A product belongs only to the categories
// it was explicitly assigned to; membership is never inferred from a
// sub-category unless the caller asks for a transitive walk.
type CategoryView struct {
	CategoryID    int64          `json:"categoryId" yaml:"category_id"`
	ParentID      int64          `json:"parentId" yaml:"parent_id"`
	Name          string         `json:"name" yaml:"name"`
	Products      []ProductLine  `json:"products" yaml:"products"`
	SubCategories []CategoryView `json:"subCategories" yaml:"sub_categories"`
}

// UserView carries the user facts rules may consult. A nil Birthdate means
// a guest checkout.
type UserView struct {
	UserID    int64      `json:"userId" yaml:"user_id"`
	Birthdate *time.Time `json:"birthdate,omitempty" yaml:"birthdate,omitempty"`
	Address   *Address   `json:"address,omitempty" yaml:"address,omitempty"`
}

type Address struct {
	Street  string `json:"street" yaml:"street"`
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	Country string `json:"country" yaml:"country"`
	Zip     string `json:"zip" yaml:"zip"`
}

// HasProduct reports whether the basket contains at least one unit of the
// given product of the given store.
func (s *BasketSnapshot) HasProduct(productID, storeID int64) bool {
	for _, p := range s.Products {
		if p.ProductID == productID && p.StoreID == storeID && p.Amount > 0 {
			return true
		}
	}
	return false
}

// FindCategory walks the category forest and returns the first node with the
// given id, or nil.
func (s *BasketSnapshot) FindCategory(categoryID int64) *CategoryView {
	for i := range s.Categories {
		if c := findCategory(&s.Categories[i], categoryID); c != nil {
			return c
		}
	}
	return nil
}

func findCategory(c *CategoryView, categoryID int64) *CategoryView {
	if c.CategoryID == categoryID {
		return c
	}
	for i := range c.SubCategories {
		if found := findCategory(&c.SubCategories[i], categoryID); found != nil {
			return found
		}
	}
	return nil
}

// StoreTotals aggregates price, weight and quantity over every line of the
// given store.
func (s *BasketSnapshot) StoreTotals(storeID int64) (price, weight float64, amount int) {
	for _, p := range s.Products {
		if p.StoreID != storeID {
			continue
		}
		price += p.Price * float64(p.Amount)
		weight += p.Weight * float64(p.Amount)
		amount += p.Amount
	}
	return price, weight, amount
}

// ProductTotals aggregates price, weight and quantity over the lines of one
// product of one store.
func (s *BasketSnapshot) ProductTotals(productID, storeID int64) (price, weight float64, amount int) {
	for _, p := range s.Products {
		if p.ProductID != productID || p.StoreID != storeID {
			continue
		}
		price += p.Price * float64(p.Amount)
		weight += p.Weight * float64(p.Amount)
		amount += p.Amount
	}
	return price, weight, amount
}

// CategoryLines collects the basket lines attributed to a category. With
// transitive set it also walks every sub-category. A product reachable via
// more than one path is counted once (set union keyed by product id).
func (s *BasketSnapshot) CategoryLines(categoryID int64, transitive bool) []ProductLine {
	root := s.FindCategory(categoryID)
	if root == nil {
		return nil
	}
	seen := make(map[int64]bool)
	var lines []ProductLine
	collectLines(root, transitive, seen, &lines)
	return lines
}

func collectLines(c *CategoryView, transitive bool, seen map[int64]bool, out *[]ProductLine) {
	for _, p := range c.Products {
		if seen[p.ProductID] {
			continue
		}
		seen[p.ProductID] = true
		*out = append(*out, p)
	}
	if !transitive {
		return
	}
	for i := range c.SubCategories {
		collectLines(&c.SubCategories[i], true, seen, out)
	}
}

// CategoryTotals aggregates price, weight and quantity over CategoryLines.
func (s *BasketSnapshot) CategoryTotals(categoryID int64, transitive bool) (price, weight float64, amount int) {
	for _, p := range s.CategoryLines(categoryID, transitive) {
		price += p.Price * float64(p.Amount)
		weight += p.Weight * float64(p.Amount)
		amount += p.Amount
	}
	return price, weight, amount
}

// ToMap flattens the user and basket facts into a generic map, the shape the
// JsonLogic cross-check executor consumes.
func (s *BasketSnapshot) ToMap() map[string]any {
	m := map[string]any{
		"storeId":    s.StoreID,
		"totalPrice": s.TotalPrice,
		"userId":     s.User.UserID,
	}
	if s.User.Address != nil {
		m["street"] = s.User.Address.Street
		m["city"] = s.User.Address.City
		m["state"] = s.User.Address.State
		m["country"] = s.User.Address.Country
		m["zip"] = s.User.Address.Zip
	}
	return m
}
