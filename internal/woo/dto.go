package woo

// ProductDTO is a product as returned by /products
type ProductDTO struct {
	ID                int64                 `json:"id"`
	Name              string                `json:"name"`
	Slug              string                `json:"slug"`
	Permalink         string                `json:"permalink"`
	DateCreated       Time                  `json:"date_created_gmt"`
	DateModified      Time                  `json:"date_modified_gmt"`
	Type              string                `json:"type"`
	Status            string                `json:"status"`
	Featured          bool                  `json:"featured"`
	CatalogVisibility string                `json:"catalog_visibility"`
	Description       string                `json:"description"`
	ShortDescription  string                `json:"short_description"`
	SKU               string                `json:"sku"`
	Price             FlexString            `json:"price"`
	RegularPrice      FlexString            `json:"regular_price"`
	SalePrice         FlexString            `json:"sale_price"`
	OnSale            bool                  `json:"on_sale"`
	Purchasable       bool                  `json:"purchasable"`
	TotalSales        FlexInt               `json:"total_sales"`
	Virtual           bool                  `json:"virtual"`
	Downloadable      bool                  `json:"downloadable"`
	Downloads         []DownloadDTO         `json:"downloads"`
	DownloadLimit     FlexInt               `json:"download_limit"`
	DownloadExpiry    FlexInt               `json:"download_expiry"`
	ExternalURL       string                `json:"external_url"`
	TaxStatus         string                `json:"tax_status"`
	TaxClass          string                `json:"tax_class"`
	ManageStock       FlexBool              `json:"manage_stock"`
	StockQuantity     *FlexInt              `json:"stock_quantity"`
	StockStatus       string                `json:"stock_status"`
	Backorders        string                `json:"backorders"`
	BackordersAllowed bool                  `json:"backorders_allowed"`
	Backordered       bool                  `json:"backordered"`
	SoldIndividually  FlexBool              `json:"sold_individually"`
	Weight            string                `json:"weight"`
	ShippingRequired  bool                  `json:"shipping_required"`
	ShippingTaxable   bool                  `json:"shipping_taxable"`
	ShippingClass     string                `json:"shipping_class"`
	ShippingClassID   FlexInt               `json:"shipping_class_id"`
	ReviewsAllowed    bool                  `json:"reviews_allowed"`
	AverageRating     FlexString            `json:"average_rating"`
	RatingCount       FlexInt               `json:"rating_count"`
	RelatedIDs        []int64               `json:"related_ids"`
	UpsellIDs         []int64               `json:"upsell_ids"`
	CrossSellIDs      []int64               `json:"cross_sell_ids"`
	ParentID          int64                 `json:"parent_id"`
	PurchaseNote      string                `json:"purchase_note"`
	Categories        []TermDTO             `json:"categories"`
	Tags              []TermDTO             `json:"tags"`
	Images            []ImageDTO            `json:"images"`
	Attributes        []AttributeDTO        `json:"attributes"`
	DefaultAttributes []DefaultAttributeDTO `json:"default_attributes"`
	Variations        []int64               `json:"variations"`
	GroupedProducts   []int64               `json:"grouped_products"`
	MenuOrder         int                   `json:"menu_order"`
}

// TermDTO is a category or tag reference
type TermDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ImageDTO is a product or variation image
type ImageDTO struct {
	ID           int64  `json:"id"`
	DateCreated  Time   `json:"date_created_gmt"`
	DateModified Time   `json:"date_modified_gmt"`
	Src          string `json:"src"`
	Name         string `json:"name"`
	Alt          string `json:"alt"`
}

// DownloadDTO is a downloadable file
type DownloadDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// AttributeDTO is a product attribute with its options
type AttributeDTO struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// DefaultAttributeDTO is a single chosen attribute option
type DefaultAttributeDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// VariationDTO is a product variation as returned by /products/{id}/variations
type VariationDTO struct {
	ID            int64                 `json:"id"`
	DateCreated   Time                  `json:"date_created_gmt"`
	DateModified  Time                  `json:"date_modified_gmt"`
	Description   string                `json:"description"`
	Permalink     string                `json:"permalink"`
	SKU           string                `json:"sku"`
	Price         FlexString            `json:"price"`
	RegularPrice  FlexString            `json:"regular_price"`
	SalePrice     FlexString            `json:"sale_price"`
	OnSale        bool                  `json:"on_sale"`
	Status        string                `json:"status"`
	Purchasable   bool                  `json:"purchasable"`
	Virtual       bool                  `json:"virtual"`
	Downloadable  bool                  `json:"downloadable"`
	ManageStock   FlexBool              `json:"manage_stock"`
	StockQuantity *FlexInt              `json:"stock_quantity"`
	StockStatus   string                `json:"stock_status"`
	Image         *ImageDTO             `json:"image"`
	Attributes    []DefaultAttributeDTO `json:"attributes"`
	MenuOrder     int                   `json:"menu_order"`
}

// OrderDTO is an order as returned by /orders
type OrderDTO struct {
	ID                 int64          `json:"id"`
	ParentID           int64          `json:"parent_id"`
	CustomerID         int64          `json:"customer_id"`
	Number             string         `json:"number"`
	Status             string         `json:"status"`
	Currency           string         `json:"currency"`
	CustomerNote       string         `json:"customer_note"`
	DateCreated        Time           `json:"date_created_gmt"`
	DateModified       Time           `json:"date_modified_gmt"`
	DatePaid           Time           `json:"date_paid_gmt"`
	DiscountTotal      FlexString     `json:"discount_total"`
	ShippingTotal      FlexString     `json:"shipping_total"`
	TotalTax           FlexString     `json:"total_tax"`
	Total              FlexString     `json:"total"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	Billing            AddressDTO     `json:"billing"`
	LineItems          []LineItemDTO  `json:"line_items"`
	Refunds            []RefundRefDTO `json:"refunds"`
}

// AddressDTO is the subset of an address the client shows
type AddressDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Email     string `json:"email"`
}

// LineItemDTO is an order line item or a refunded line item
type LineItemDTO struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ProductID   int64      `json:"product_id"`
	VariationID int64      `json:"variation_id"`
	Quantity    FlexInt    `json:"quantity"`
	Price       FlexString `json:"price"`
	SKU         string     `json:"sku"`
	Subtotal    FlexString `json:"subtotal"`
	TotalTax    FlexString `json:"total_tax"`
	Total       FlexString `json:"total"`
}

// RefundRefDTO is the refund summary embedded in an order
type RefundRefDTO struct {
	ID     int64      `json:"id"`
	Reason string     `json:"reason"`
	Total  FlexString `json:"total"`
}

// RefundDTO is a refund as returned by /orders/{id}/refunds
type RefundDTO struct {
	ID          int64         `json:"id"`
	DateCreated Time          `json:"date_created_gmt"`
	Amount      FlexString    `json:"amount"`
	Reason      string        `json:"reason"`
	RefundedBy  int64         `json:"refunded_by"`
	LineItems   []LineItemDTO `json:"line_items"`
}

// ReviewDTO is a product review as returned by /products/reviews
type ReviewDTO struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	DateCreated   Time   `json:"date_created_gmt"`
	Status        string `json:"status"`
	Reviewer      string `json:"reviewer"`
	ReviewerEmail string `json:"reviewer_email"`
	Review        string `json:"review"`
	Rating        int    `json:"rating"`
	Verified      bool   `json:"verified"`
}

// SalesReportDTO is one entry of /reports/sales
type SalesReportDTO struct {
	TotalSales     FlexString `json:"total_sales"`
	NetSales       FlexString `json:"net_sales"`
	AverageSales   FlexString `json:"average_sales"`
	TotalOrders    FlexInt    `json:"total_orders"`
	TotalItems     FlexInt    `json:"total_items"`
	TotalCustomers FlexInt    `json:"total_customers"`
}

// TopSellerDTO is one entry of /reports/top_sellers
type TopSellerDTO struct {
	Title     string  `json:"title"`
	ProductID int64   `json:"product_id"`
	Quantity  FlexInt `json:"quantity"`
}

// ErrorDTO is the body of an API error response
type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
