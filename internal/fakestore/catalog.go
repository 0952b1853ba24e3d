package fakestore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmcdole/wooterm/internal/woo"
)

var (
	adjectives = []string{"Classic", "Vintage", "Organic", "Cozy", "Rugged", "Minimal", "Bold", "Soft"}
	nouns      = []string{"Hoodie", "Mug", "Beanie", "Tote", "Poster", "Sticker", "Notebook", "Scarf", "Tee"}
	colors     = []string{"Black", "White", "Green"}
	statuses   = []string{"processing", "completed", "on-hold", "pending"}
	customers  = []string{"Johnny Appleseed", "Ada Lovelace", "Grace Hopper", "Alan Turing", "Edsger Dijkstra"}

	epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
)

// Catalog is the deterministic content served by a fake store
type Catalog struct {
	Products   []woo.ProductDTO
	Variations map[int64][]woo.VariationDTO
	Orders     []woo.OrderDTO
	Refunds    map[int64][]woo.RefundDTO
	Reviews    []woo.ReviewDTO
}

// Sizes controls how much content NewCatalog generates
type Sizes struct {
	Products int
	Orders   int
	Reviews  int
}

// DefaultSizes spans several pages of every list at the default page size
var DefaultSizes = Sizes{Products: 72, Orders: 130, Reviews: 40}

func wooTime(t time.Time) woo.Time { return woo.Time{Time: t} }

func price(cents int) woo.FlexString {
	return woo.FlexString(decimal.New(int64(cents), -2).StringFixed(2))
}

// NewCatalog generates the same catalog for the same sizes every time.
// Every fourth product is variable with one variation per color, and every
// fifth order carries two partial refunds of its first line item.
func NewCatalog(sizes Sizes) *Catalog {
	c := &Catalog{
		Variations: make(map[int64][]woo.VariationDTO),
		Refunds:    make(map[int64][]woo.RefundDTO),
	}

	for i := 0; i < sizes.Products; i++ {
		c.Products = append(c.Products, c.newProduct(i))
	}
	for i := 0; i < sizes.Orders; i++ {
		c.Orders = append(c.Orders, c.newOrder(i))
	}
	for i := 0; i < sizes.Reviews && len(c.Products) > 0; i++ {
		p := c.Products[(i*7)%len(c.Products)]
		c.Reviews = append(c.Reviews, woo.ReviewDTO{
			ID:            int64(5000 + i),
			ProductID:     p.ID,
			DateCreated:   wooTime(epoch.Add(time.Duration(i) * 5 * time.Hour)),
			Status:        "approved",
			Reviewer:      customers[i%len(customers)],
			ReviewerEmail: fmt.Sprintf("customer%d@example.com", i%len(customers)),
			Review:        fmt.Sprintf("<p>Review %d of the %s.</p>", i+1, p.Name),
			Rating:        1 + (i*3)%5,
			Verified:      i%2 == 0,
		})
	}
	return c
}

func (c *Catalog) newProduct(i int) woo.ProductDTO {
	id := int64(100 + i)
	name := fmt.Sprintf("%s %s", adjectives[i%len(adjectives)], nouns[(i/len(adjectives))%len(nouns)])
	if round := i / (len(adjectives) * len(nouns)); round > 0 {
		name = fmt.Sprintf("%s %d", name, round+1)
	}
	cents := 500 + (i*137)%4500

	p := woo.ProductDTO{
		ID:           id,
		Name:         name,
		Slug:         fmt.Sprintf("product-%d", id),
		Permalink:    fmt.Sprintf("https://fake.store/product/%d/", id),
		DateCreated:  wooTime(epoch.Add(time.Duration(i) * time.Hour)),
		DateModified: wooTime(epoch.Add(time.Duration(i) * time.Hour)),
		Type:         "simple",
		Status:       "publish",
		SKU:          fmt.Sprintf("SKU-%04d", id),
		Price:        price(cents),
		RegularPrice: price(cents),
		Purchasable:  true,
		TotalSales:   woo.FlexInt((i * 13) % 97),
		StockStatus:  "instock",
		Backorders:   "no",
		MenuOrder:    i,
	}
	if i%3 == 0 {
		qty := woo.FlexInt(i % 11)
		p.ManageStock = true
		p.StockQuantity = &qty
		if qty == 0 {
			p.StockStatus = "outofstock"
		}
	}
	if i%6 == 1 {
		p.OnSale = true
		p.SalePrice = price(cents * 8 / 10)
		p.Price = p.SalePrice
	}

	if i%4 == 0 {
		p.Type = "variable"
		p.Attributes = []woo.AttributeDTO{{Name: "Color", Visible: true, Variation: true, Options: colors}}
		variations := make([]woo.VariationDTO, 0, len(colors))
		for j, color := range colors {
			vid := id*10 + int64(j)
			p.Variations = append(p.Variations, vid)
			variations = append(variations, woo.VariationDTO{
				ID:           vid,
				DateCreated:  p.DateCreated,
				DateModified: p.DateModified,
				SKU:          fmt.Sprintf("%s-%s", p.SKU, color),
				Price:        price(cents + j*100),
				RegularPrice: price(cents + j*100),
				Status:       "publish",
				Purchasable:  true,
				ManageStock:  true,
				StockStatus:  "instock",
				Attributes:   []woo.DefaultAttributeDTO{{Name: "Color", Option: color}},
				MenuOrder:    len(colors) - j,
			})
		}
		c.Variations[id] = variations
	}
	return p
}

func (c *Catalog) newOrder(i int) woo.OrderDTO {
	id := int64(1000 + i)
	created := epoch.Add(time.Duration(i) * 3 * time.Hour)
	name := customers[i%len(customers)]

	var items []woo.LineItemDTO
	var total int
	for j := 0; j < 1+i%3 && len(c.Products) > 0; j++ {
		p := c.Products[(i+j*5)%len(c.Products)]
		qty := 1 + (i+j)%3
		unit := parseCents(string(p.Price))
		items = append(items, woo.LineItemDTO{
			ID:        id*10 + int64(j),
			Name:      p.Name,
			ProductID: p.ID,
			Quantity:  woo.FlexInt(qty),
			Price:     p.Price,
			SKU:       p.SKU,
			Subtotal:  price(unit * qty),
			TotalTax:  "0.00",
			Total:     price(unit * qty),
		})
		total += unit * qty
	}

	o := woo.OrderDTO{
		ID:                 id,
		Number:             fmt.Sprintf("%d", id),
		Status:             statuses[i%len(statuses)],
		Currency:           "USD",
		DateCreated:        wooTime(created),
		DateModified:       wooTime(created),
		DiscountTotal:      "0.00",
		ShippingTotal:      "0.00",
		TotalTax:           "0.00",
		Total:              price(total),
		PaymentMethodTitle: "Credit Card",
		LineItems:          items,
	}
	first, last, _ := strings.Cut(name, " ")
	o.Billing = woo.AddressDTO{FirstName: first, LastName: last, Email: fmt.Sprintf("customer%d@example.com", i%len(customers))}
	if i%7 == 0 {
		o.CustomerNote = "Please gift wrap."
	}
	if o.Status != "pending" {
		o.DatePaid = wooTime(created.Add(time.Minute))
	}

	if i%5 == 0 && len(items) > 0 {
		item := items[0]
		unit := parseCents(string(item.Price))
		for k := 0; k < 2; k++ {
			refundID := id*100 + int64(k)
			c.Refunds[id] = append(c.Refunds[id], woo.RefundDTO{
				ID:          refundID,
				DateCreated: wooTime(created.Add(time.Duration(k+1) * 24 * time.Hour)),
				Amount:      price(unit),
				RefundedBy:  1,
				LineItems: []woo.LineItemDTO{{
					ID:        refundID,
					Name:      item.Name,
					ProductID: item.ProductID,
					Quantity:  -1,
					Price:     item.Price,
					SKU:       item.SKU,
					Subtotal:  price(-unit),
					TotalTax:  "0.00",
					Total:     price(-unit),
				}},
			})
			o.Refunds = append(o.Refunds, woo.RefundRefDTO{ID: refundID, Total: price(-unit)})
		}
	}
	return o
}

func parseCents(s string) int {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.Shift(2).IntPart())
}
