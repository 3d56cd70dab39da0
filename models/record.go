package models

import "time"

// ContentType classifies a rendered document. It is assigned once per fetch
// and never revised.
type ContentType string

const (
	// ContentTypeStrain marks a cannabis-retail product page carrying
	// potency and compliance attributes beyond generic commerce fields.
	ContentTypeStrain ContentType = "strain-product"

	// ContentTypeProduct marks a generic e-commerce product page.
	ContentTypeProduct ContentType = "product"

	// ContentTypeArticle marks an article or blog post.
	ContentTypeArticle ContentType = "article"

	// ContentTypeListing marks a catalog page enumerating multiple items.
	ContentTypeListing ContentType = "listing"

	// ContentTypeGeneric is the fallback for everything else.
	ContentTypeGeneric ContentType = "generic"
)

// Heading is one entry of a document's heading outline, in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

// Record is the polymorphic extraction result. Exactly one of the payload
// pointers matching ContentType is populated.
//
// Numeric fields are nil when not found on the page; extractors never invent
// default values.
type Record struct {
	ContentType ContentType `json:"content_type"`
	Title       string      `json:"title"`
	Headers     []Heading   `json:"headers"`
	SourceURL   string      `json:"source_url"`
	ExtractedAt time.Time   `json:"extracted_at"`

	Product *ProductDetails `json:"product,omitempty"`
	Strain  *StrainDetails  `json:"strain,omitempty"`
	Article *ArticleDetails `json:"article,omitempty"`
	Page    *PageDetails    `json:"page,omitempty"`
}

// Discount is derived from current and original price, never scraped.
type Discount struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Pricing holds commerce pricing facts for a product page.
type Pricing struct {
	CurrentPrice  *float64  `json:"current_price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Availability  string    `json:"availability,omitempty"`
	Discount      *Discount `json:"discount,omitempty"`
}

// VariantGroup is one option group of a product (e.g. size, color).
type VariantGroup struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Reviews aggregates rating information for a product.
type Reviews struct {
	Rating *float64 `json:"rating"`
	Count  *int     `json:"count"`
}

// ProductMeta carries catalog identifiers for a product.
type ProductMeta struct {
	Brand    string   `json:"brand,omitempty"`
	SKU      string   `json:"sku,omitempty"`
	GTIN     string   `json:"gtin,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ProductDetails is the payload for generic e-commerce product pages.
type ProductDetails struct {
	Description string         `json:"description,omitempty"`
	Pricing     Pricing        `json:"pricing"`
	Images      []string       `json:"images"`
	Variants    []VariantGroup `json:"variants"`
	Reviews     *Reviews       `json:"reviews,omitempty"`
	Meta        ProductMeta    `json:"metadata"`
}

// Potency is the repeated shape for cannabinoid measurements.
type Potency struct {
	Percentage *float64      `json:"percentage"`
	MG         *float64      `json:"mg"`
	Range      *PotencyRange `json:"range,omitempty"`
}

// PotencyRange is a min-max percentage window.
type PotencyRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CompoundReading is one named compound (terpene or minor cannabinoid)
// with its measured percentage.
type CompoundReading struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// TerpeneProfile lists measured terpenes and the top-3 dominant ones,
// sorted by percentage descending with input-order tie-breaks.
type TerpeneProfile struct {
	Readings []CompoundReading `json:"readings"`
	Dominant []string          `json:"dominant"`
}

// StrainInfo holds classification attributes of a strain.
type StrainInfo struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"` // indica, sativa, hybrid
	Aliases []string `json:"aliases,omitempty"`
}

// Weight is a product quantity with its normalized gram value.
type Weight struct {
	Value float64  `json:"value"`
	Unit  string   `json:"unit"`
	Grams *float64 `json:"grams"`
}

// StrainPricing extends pricing with a derived per-gram price.
type StrainPricing struct {
	Price        *float64 `json:"price"`
	PricePerGram *float64 `json:"price_per_gram"`
	Currency     string   `json:"currency,omitempty"`
}

// DispensaryInfo identifies the source site of a strain listing.
type DispensaryInfo struct {
	Name  string `json:"name"`
	Host  string `json:"host"`
	State string `json:"state,omitempty"`
	City  string `json:"city,omitempty"`
}

// Tracking records when a strain record was first and last observed.
// History arrays are maintained by the persistence layer, not here.
type Tracking struct {
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	SourceURL string    `json:"source_url"`
}

// StrainDetails is the payload for cannabis-retail product pages.
type StrainDetails struct {
	Strain       StrainInfo        `json:"strain"`
	THC          *Potency          `json:"thc"`
	CBD          *Potency          `json:"cbd"`
	Cannabinoids []CompoundReading `json:"cannabinoids"`
	Terpenes     TerpeneProfile    `json:"terpenes"`
	Form         string            `json:"form,omitempty"`
	PackageSize  *Weight           `json:"package_size,omitempty"`
	Pricing      StrainPricing     `json:"pricing"`
	Availability string            `json:"availability,omitempty"`
	StockLevel   string            `json:"stock_level,omitempty"` // low, medium, high
	Quantity     *int              `json:"quantity,omitempty"`
	Dispensary   DispensaryInfo    `json:"dispensary"`
	Effects      []string          `json:"effects"`
	Tracking     Tracking          `json:"tracking"`
}

// ArticleContent holds the reduced article body in several renditions.
type ArticleContent struct {
	Body     string `json:"body"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// ArticleMeta carries article-level metadata.
type ArticleMeta struct {
	Byline             string `json:"byline,omitempty"`
	SiteName           string `json:"site_name,omitempty"`
	Length             int    `json:"length"`
	ReadingTimeMinutes int    `json:"reading_time_minutes"`
	PublishedTime      string `json:"published_time,omitempty"`
}

// ArticleDetails is the payload for article pages.
type ArticleDetails struct {
	Content ArticleContent `json:"content"`
	Meta    ArticleMeta    `json:"metadata"`
}

// PageMeta carries generic document metadata.
type PageMeta struct {
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// PageDetails is the payload for listing and generic pages.
type PageDetails struct {
	ItemCount int      `json:"item_count,omitempty"`
	Body      string   `json:"body,omitempty"`
	Meta      PageMeta `json:"metadata"`
}
