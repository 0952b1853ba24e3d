package woo

import (
	"strings"

	"github.com/mmcdole/wooterm/internal/domain"
)

// MapProducts converts API products to domain products
func MapProducts(dtos []ProductDTO, siteID int64) []*domain.Product {
	products := make([]*domain.Product, 0, len(dtos))
	for _, d := range dtos {
		products = append(products, mapProduct(d, siteID))
	}
	return products
}

func mapProduct(d ProductDTO, siteID int64) *domain.Product {
	p := &domain.Product{
		SiteID:               siteID,
		ProductID:            d.ID,
		Name:                 d.Name,
		Slug:                 d.Slug,
		Permalink:            d.Permalink,
		DateCreated:          d.DateCreated.Time,
		DateModified:         d.DateModified.Time,
		ProductTypeKey:       d.Type,
		StatusKey:            d.Status,
		Featured:             d.Featured,
		CatalogVisibilityKey: d.CatalogVisibility,
		FullDescription:      d.Description,
		ShortDescription:     d.ShortDescription,
		SKU:                  d.SKU,
		Price:                string(d.Price),
		RegularPrice:         string(d.RegularPrice),
		SalePrice:            salePrice(d.SalePrice, d.OnSale),
		OnSale:               d.OnSale,
		Purchasable:          d.Purchasable,
		TotalSales:           int(d.TotalSales),
		Virtual:              d.Virtual,
		Downloadable:         d.Downloadable,
		DownloadLimit:        int64(d.DownloadLimit),
		DownloadExpiry:       int64(d.DownloadExpiry),
		ExternalURL:          d.ExternalURL,
		TaxStatusKey:         d.TaxStatus,
		TaxClass:             d.TaxClass,
		ManageStock:          bool(d.ManageStock),
		StockQuantity:        stockQuantity(d.StockQuantity),
		StockStatusKey:       d.StockStatus,
		BackordersKey:        d.Backorders,
		BackordersAllowed:    d.BackordersAllowed,
		Backordered:          d.Backordered,
		SoldIndividually:     bool(d.SoldIndividually),
		Weight:               d.Weight,
		ShippingRequired:     d.ShippingRequired,
		ShippingTaxable:      d.ShippingTaxable,
		ShippingClass:        d.ShippingClass,
		ShippingClassID:      int64(d.ShippingClassID),
		ReviewsAllowed:       d.ReviewsAllowed,
		AverageRating:        string(d.AverageRating),
		RatingCount:          int(d.RatingCount),
		RelatedIDs:           nonNil(d.RelatedIDs),
		UpsellIDs:            nonNil(d.UpsellIDs),
		CrossSellIDs:         nonNil(d.CrossSellIDs),
		ParentID:             d.ParentID,
		PurchaseNote:         d.PurchaseNote,
		Variations:           nonNil(d.Variations),
		GroupedProducts:      nonNil(d.GroupedProducts),
		MenuOrder:            d.MenuOrder,
	}

	for _, dl := range d.Downloads {
		p.Downloads = append(p.Downloads, domain.ProductDownload{
			DownloadID: dl.ID,
			Name:       dl.Name,
			FileURL:    dl.File,
		})
	}
	for _, c := range d.Categories {
		p.Categories = append(p.Categories, domain.ProductCategory{CategoryID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	for _, t := range d.Tags {
		p.Tags = append(p.Tags, domain.ProductTag{TagID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	for _, img := range d.Images {
		p.Images = append(p.Images, mapImage(img))
	}
	for _, a := range d.Attributes {
		p.Attributes = append(p.Attributes, domain.ProductAttribute{
			AttributeID: a.ID,
			Name:        a.Name,
			Position:    a.Position,
			Visible:     a.Visible,
			Variation:   a.Variation,
			Options:     a.Options,
		})
	}
	p.DefaultAttributes = mapDefaultAttributes(d.DefaultAttributes)

	return p
}

// salePrice maps an empty sale price on an item that is on sale to "0"
func salePrice(s FlexString, onSale bool) string {
	if s == "" && onSale {
		return "0"
	}
	return string(s)
}

func stockQuantity(q *FlexInt) *int64 {
	if q == nil {
		return nil
	}
	v := int64(*q)
	return &v
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func mapImage(img ImageDTO) domain.ProductImage {
	return domain.ProductImage{
		ImageID:      img.ID,
		DateCreated:  img.DateCreated.Time,
		DateModified: img.DateModified.Time,
		Src:          img.Src,
		Name:         img.Name,
		Alt:          img.Alt,
	}
}

func mapDefaultAttributes(attrs []DefaultAttributeDTO) []domain.ProductDefaultAttribute {
	out := make([]domain.ProductDefaultAttribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, domain.ProductDefaultAttribute{AttributeID: a.ID, Name: a.Name, Option: a.Option})
	}
	return out
}

// MapVariations converts API variations of productID to domain variations
func MapVariations(dtos []VariationDTO, siteID, productID int64) []*domain.ProductVariation {
	variations := make([]*domain.ProductVariation, 0, len(dtos))
	for _, d := range dtos {
		v := &domain.ProductVariation{
			SiteID:             siteID,
			ProductID:          productID,
			ProductVariationID: d.ID,
			Attributes:         mapDefaultAttributes(d.Attributes),
			Permalink:          d.Permalink,
			DateCreated:        d.DateCreated.Time,
			DateModified:       d.DateModified.Time,
			Description:        d.Description,
			SKU:                d.SKU,
			Price:              string(d.Price),
			RegularPrice:       string(d.RegularPrice),
			SalePrice:          salePrice(d.SalePrice, d.OnSale),
			OnSale:             d.OnSale,
			StatusKey:          d.Status,
			Purchasable:        d.Purchasable,
			Virtual:            d.Virtual,
			Downloadable:       d.Downloadable,
			ManageStock:        bool(d.ManageStock),
			StockQuantity:      stockQuantity(d.StockQuantity),
			StockStatusKey:     d.StockStatus,
			MenuOrder:          d.MenuOrder,
		}
		if d.Image != nil {
			img := mapImage(*d.Image)
			v.Image = &img
		}
		variations = append(variations, v)
	}
	return variations
}

// MapOrders converts API orders to domain orders
func MapOrders(dtos []OrderDTO, siteID int64) []*domain.Order {
	orders := make([]*domain.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, mapOrder(d, siteID))
	}
	return orders
}

func mapOrder(d OrderDTO, siteID int64) *domain.Order {
	o := &domain.Order{
		SiteID:             siteID,
		OrderID:            d.ID,
		ParentID:           d.ParentID,
		CustomerID:         d.CustomerID,
		Number:             d.Number,
		StatusKey:          d.Status,
		Currency:           d.Currency,
		CustomerNote:       d.CustomerNote,
		BillingName:        billingName(d.Billing),
		DateCreated:        d.DateCreated.Time,
		DateModified:       d.DateModified.Time,
		DiscountTotal:      string(d.DiscountTotal),
		ShippingTotal:      string(d.ShippingTotal),
		TotalTax:           string(d.TotalTax),
		Total:              string(d.Total),
		PaymentMethodTitle: d.PaymentMethodTitle,
	}
	if !d.DatePaid.IsZero() {
		paid := d.DatePaid.Time
		o.DatePaid = &paid
	}
	for _, li := range d.LineItems {
		o.Items = append(o.Items, domain.OrderItem{
			ItemID:      li.ID,
			Name:        li.Name,
			ProductID:   li.ProductID,
			VariationID: li.VariationID,
			Quantity:    int(li.Quantity),
			Price:       string(li.Price),
			SKU:         li.SKU,
			Subtotal:    string(li.Subtotal),
			TotalTax:    string(li.TotalTax),
			Total:       string(li.Total),
		})
	}
	for _, r := range d.Refunds {
		o.Refunds = append(o.Refunds, domain.OrderRefundCondensed{
			RefundID: r.ID,
			Reason:   r.Reason,
			Total:    string(r.Total),
		})
	}
	return o
}

func billingName(a AddressDTO) string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Company
	}
	return name
}

// MapRefunds converts API refunds of orderID to domain refunds
func MapRefunds(dtos []RefundDTO, siteID, orderID int64) []*domain.Refund {
	refunds := make([]*domain.Refund, 0, len(dtos))
	for _, d := range dtos {
		r := &domain.Refund{
			SiteID:           siteID,
			OrderID:          orderID,
			RefundID:         d.ID,
			DateCreated:      d.DateCreated.Time,
			Amount:           string(d.Amount),
			Reason:           d.Reason,
			RefundedByUserID: d.RefundedBy,
		}
		for _, li := range d.LineItems {
			r.Items = append(r.Items, domain.OrderItemRefund{
				ItemID:      li.ID,
				Name:        li.Name,
				ProductID:   li.ProductID,
				VariationID: li.VariationID,
				Quantity:    int(li.Quantity),
				Price:       string(li.Price),
				SKU:         li.SKU,
				Subtotal:    string(li.Subtotal),
				TotalTax:    string(li.TotalTax),
				Total:       string(li.Total),
			})
		}
		refunds = append(refunds, r)
	}
	return refunds
}

// MapReviews converts API reviews to domain reviews
func MapReviews(dtos []ReviewDTO, siteID int64) []*domain.ProductReview {
	reviews := make([]*domain.ProductReview, 0, len(dtos))
	for _, d := range dtos {
		reviews = append(reviews, &domain.ProductReview{
			SiteID:        siteID,
			ReviewID:      d.ID,
			ProductID:     d.ProductID,
			DateCreated:   d.DateCreated.Time,
			StatusKey:     d.Status,
			Reviewer:      d.Reviewer,
			ReviewerEmail: d.ReviewerEmail,
			Review:        stripTags(d.Review),
			Rating:        d.Rating,
			Verified:      d.Verified,
		})
	}
	return reviews
}

// MapStoreStats converts the first sales report entry to store stats
func MapStoreStats(dtos []SalesReportDTO, period string) *domain.StoreStats {
	stats := &domain.StoreStats{Period: period}
	if len(dtos) == 0 {
		return stats
	}
	d := dtos[0]
	stats.TotalSales = string(d.TotalSales)
	stats.NetSales = string(d.NetSales)
	stats.AverageSales = string(d.AverageSales)
	stats.TotalOrders = int(d.TotalOrders)
	stats.TotalItems = int(d.TotalItems)
	stats.TotalCustomers = int(d.TotalCustomers)
	return stats
}

// MapTopPerformers converts top seller entries to domain top performers
func MapTopPerformers(dtos []TopSellerDTO) []domain.TopPerformer {
	out := make([]domain.TopPerformer, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, domain.TopPerformer{
			ProductID: d.ProductID,
			Name:      d.Title,
			Quantity:  int(d.Quantity),
		})
	}
	return out
}

// stripTags removes HTML tags from review bodies, which the API returns
// as rendered HTML paragraphs.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
