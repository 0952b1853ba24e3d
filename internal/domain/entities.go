package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductType identifies the kind of product (simple, variable, grouped, ...)
type ProductType string

const (
	ProductTypeSimple    ProductType = "simple"
	ProductTypeVariable  ProductType = "variable"
	ProductTypeGrouped   ProductType = "grouped"
	ProductTypeAffiliate ProductType = "external"
)

// BackordersSetting is the typed form of a product's backorders key
type BackordersSetting string

const (
	BackordersNotAllowed    BackordersSetting = "no"
	BackordersAllowed       BackordersSetting = "yes"
	BackordersAllowedNotify BackordersSetting = "notify"
)

// Product represents a store product as returned by the remote API
type Product struct {
	SiteID    int64
	ProductID int64
	Name      string
	Slug      string
	Permalink string

	DateCreated  time.Time
	DateModified time.Time

	ProductTypeKey       string
	StatusKey            string
	Featured             bool
	CatalogVisibilityKey string

	FullDescription  string
	ShortDescription string
	SKU              string

	// Prices are kept as strings; the API returns them as decimal strings
	Price        string
	RegularPrice string
	SalePrice    string
	OnSale       bool

	Purchasable  bool
	TotalSales   int
	Virtual      bool
	Downloadable bool

	Downloads      []ProductDownload
	DownloadLimit  int64
	DownloadExpiry int64

	ExternalURL  string
	TaxStatusKey string
	TaxClass     string

	ManageStock    bool
	StockQuantity  *int64
	StockStatusKey string

	BackordersKey     string
	BackordersAllowed bool
	Backordered       bool

	SoldIndividually bool
	Weight           string

	ShippingRequired bool
	ShippingTaxable  bool
	ShippingClass    string
	ShippingClassID  int64

	ReviewsAllowed bool
	AverageRating  string
	RatingCount    int

	RelatedIDs   []int64
	UpsellIDs    []int64
	CrossSellIDs []int64
	ParentID     int64

	PurchaseNote string

	Categories        []ProductCategory
	Tags              []ProductTag
	Images            []ProductImage
	Attributes        []ProductAttribute
	DefaultAttributes []ProductDefaultAttribute

	Variations      []int64
	GroupedProducts []int64
	MenuOrder       int
}

// ProductType returns the typed product type
func (p Product) ProductType() ProductType {
	return ProductType(p.ProductTypeKey)
}

// BackordersSetting returns the typed backorders setting
func (p Product) BackordersSetting() BackordersSetting {
	return BackordersSetting(p.BackordersKey)
}

// StockDescription returns a short stock summary for list rows
func (p Product) StockDescription() string {
	if p.ManageStock && p.StockQuantity != nil {
		return fmt.Sprintf("%d in stock", *p.StockQuantity)
	}
	switch p.StockStatusKey {
	case "instock":
		return "In stock"
	case "outofstock":
		return "Out of stock"
	case "onbackorder":
		return "On backorder"
	default:
		return ""
	}
}

// ProductCategory is a category assigned to a product
type ProductCategory struct {
	CategoryID int64
	Name       string
	Slug       string
}

// ProductTag is a tag assigned to a product
type ProductTag struct {
	TagID int64
	Name  string
	Slug  string
}

// ProductImage is an image attached to a product or variation
type ProductImage struct {
	ImageID      int64
	DateCreated  time.Time
	DateModified time.Time
	Src          string
	Name         string
	Alt          string
}

// ProductDownload is a downloadable file of a product
type ProductDownload struct {
	DownloadID string
	Name       string
	FileURL    string
}

// ProductAttribute is an attribute (e.g. Color) with its options
type ProductAttribute struct {
	AttributeID int64
	Name        string
	Position    int
	Visible     bool
	Variation   bool
	Options     []string
}

// ProductDefaultAttribute is the default option of a variation attribute
type ProductDefaultAttribute struct {
	AttributeID int64
	Name        string
	Option      string
}

// ProductVariation is one variation of a variable product
type ProductVariation struct {
	SiteID             int64
	ProductID          int64
	ProductVariationID int64

	Attributes []ProductDefaultAttribute
	Image      *ProductImage
	Permalink  string

	DateCreated  time.Time
	DateModified time.Time

	Description  string
	SKU          string
	Price        string
	RegularPrice string
	SalePrice    string
	OnSale       bool

	StatusKey    string
	Purchasable  bool
	Virtual      bool
	Downloadable bool

	ManageStock    bool
	StockQuantity  *int64
	StockStatusKey string

	MenuOrder int
}

// IsEnabled returns true if the variation is published
func (v ProductVariation) IsEnabled() bool {
	return v.StatusKey == "publish"
}

// IsEnabledAndMissingPrice returns true for published variations without a regular price
func (v ProductVariation) IsEnabledAndMissingPrice() bool {
	return v.IsEnabled() && v.RegularPrice == ""
}

// Name builds a display name from the variation's attribute options,
// falling back to "Any <attr>" for attributes the variation leaves open.
func (v ProductVariation) Name(allAttributes []ProductAttribute) string {
	if len(allAttributes) == 0 {
		return joinOptions(v.Attributes)
	}
	parts := make([]string, 0, len(allAttributes))
	for _, attr := range allAttributes {
		if !attr.Variation {
			continue
		}
		option := ""
		for _, a := range v.Attributes {
			if a.Name == attr.Name {
				option = a.Option
				break
			}
		}
		if option == "" {
			option = "Any " + attr.Name
		}
		parts = append(parts, option)
	}
	return strings.Join(parts, " - ")
}

func joinOptions(attrs []ProductDefaultAttribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Option
	}
	return strings.Join(parts, " - ")
}

// Order is a store order
type Order struct {
	SiteID     int64
	OrderID    int64
	ParentID   int64
	CustomerID int64
	Number     string
	StatusKey  string
	Currency   string

	CustomerNote string
	BillingName  string

	DateCreated  time.Time
	DateModified time.Time
	DatePaid     *time.Time

	DiscountTotal      string
	ShippingTotal      string
	TotalTax           string
	Total              string
	PaymentMethodTitle string

	Items   []OrderItem
	Refunds []OrderRefundCondensed
}

// OrderItem is a line item of an order
type OrderItem struct {
	ItemID      int64
	Name        string
	ProductID   int64
	VariationID int64
	Quantity    int
	Price       string
	SKU         string
	Subtotal    string
	TotalTax    string
	Total       string
}

// OrderRefundCondensed is the refund summary embedded in an order
type OrderRefundCondensed struct {
	RefundID int64
	Reason   string
	Total    string
}

// Refund is a full refund record of an order
type Refund struct {
	SiteID           int64
	OrderID          int64
	RefundID         int64
	DateCreated      time.Time
	Amount           string
	Reason           string
	RefundedByUserID int64
	Items            []OrderItemRefund
}

// OrderItemRefund is a refunded line item. Multiple refunds of the same
// product produce distinct items with distinct ItemIDs.
type OrderItemRefund struct {
	ItemID      int64
	Name        string
	ProductID   int64
	VariationID int64
	Quantity    int
	Price       string
	SKU         string
	Subtotal    string
	TotalTax    string
	Total       string
}

// ProductReview is a customer review of a product
type ProductReview struct {
	SiteID        int64
	ReviewID      int64
	ProductID     int64
	DateCreated   time.Time
	StatusKey     string
	Reviewer      string
	ReviewerEmail string
	Review        string
	Rating        int
	Verified      bool
}

// StoreStats summarizes sales for a period
type StoreStats struct {
	Period         string
	TotalSales     string
	NetSales       string
	AverageSales   string
	TotalOrders    int
	TotalItems     int
	TotalCustomers int
}

// TopPerformer is a best-selling product for a period
type TopPerformer struct {
	ProductID int64
	Name      string
	Quantity  int
}

// DashboardSnapshot is the cached content of the dashboard
type DashboardSnapshot struct {
	Stats         StoreStats
	NewOrders     int
	TopPerformers []TopPerformer
	UpdatedAt     time.Time
}
