// Package commerce contributes shop categories and magic tags to a
// vocabulary registry. It reads the "commerce" request extension.
package commerce

import (
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/vocabulary"
)

// ExtensionName is the request extension key this contributor reads.
const ExtensionName = "commerce"

// RootProductPurchase is the category matching visitors who bought a product.
const RootProductPurchase = "product_purchase"

// State is the commerce extension payload.
type State struct {
	// Purchased lists product ids the visitor has bought.
	Purchased []string `json:"purchased,omitempty"`

	// Product is the product currently displayed, if any.
	Product *Product `json:"product,omitempty"`

	// Cart is the visitor's cart summary.
	Cart *Cart `json:"cart,omitempty"`

	CartURL     string `json:"cart_url,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// Product describes a product.
type Product struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Price string `json:"price,omitempty"`
}

// Cart summarizes the visitor's cart.
type Cart struct {
	Total          string `json:"total,omitempty"`
	Currency       string `json:"currency,omitempty"`
	CurrencySymbol string `json:"currency_symbol,omitempty"`
}

// Options configures the contributor.
type Options struct {
	// CartPageID is the id of the shop's cart page. When set, the cart tags
	// are exposed on layouts targeting that page.
	CartPageID string
}

// Contributor registers the commerce vocabulary.
type Contributor struct {
	opts Options
}

// New creates a commerce contributor.
func New(opts Options) *Contributor {
	return &Contributor{opts: opts}
}

// Name implements vocabulary.Contributor.
func (c *Contributor) Name() string {
	return ExtensionName
}

// Contribute implements vocabulary.Contributor.
func (c *Contributor) Contribute(r *vocabulary.Registry) error {
	err := r.RegisterCategory(vocabulary.Category{
		Key:         RootProductPurchase,
		Label:       "Product Purchased",
		Group:       "user",
		MultiSelect: true,
		Contributor: ExtensionName,
		Accessor: func(ctx *request.Context) ([]string, bool) {
			state, ok := stateOf(ctx)
			if !ok {
				return nil, false
			}
			return state.Purchased, true
		},
	})
	if err != nil {
		return err
	}

	if err := r.AddOptions(vocabulary.RootPostType, vocabulary.Option{Value: "product", Label: "Products"}); err != nil {
		return err
	}
	if err := r.AddOptions(vocabulary.RootArchiveTaxonomy,
		vocabulary.Option{Value: "product_cat", Label: "Product Categories"},
		vocabulary.Option{Value: "product_tag", Label: "Product Tags"},
	); err != nil {
		return err
	}

	termTags := r.Tags(vocabulary.Pair{Root: vocabulary.RootArchiveTaxonomy, End: "category"})
	for _, end := range []string{"product_cat", "product_tag"} {
		if err := r.RegisterTags(vocabulary.Pair{Root: vocabulary.RootArchiveTaxonomy, End: end}, exactOnly(termTags, "title", "description")...); err != nil {
			return err
		}
	}

	if err := r.RegisterTags(vocabulary.Pair{Root: vocabulary.RootPostType, End: "product"},
		vocabulary.Tag{Name: "product_title", Resolve: product(func(p *Product) string { return p.Title })},
		vocabulary.Tag{Name: "product_price", Resolve: product(func(p *Product) string { return p.Price })},
		vocabulary.Tag{Name: "cart_link", Resolve: field(func(s *State) string { return s.CartURL })},
		vocabulary.Tag{Name: "checkout_link", Resolve: field(func(s *State) string { return s.CheckoutURL })},
	); err != nil {
		return err
	}

	if c.opts.CartPageID != "" {
		if err := r.RegisterTags(vocabulary.Pair{Root: vocabulary.RootPage, End: c.opts.CartPageID},
			vocabulary.Tag{Name: "cart_total", Resolve: cart(func(cc *Cart) string { return cc.Total })},
			vocabulary.Tag{Name: "cart_total_currency_symbol", Resolve: cart(func(cc *Cart) string {
				if cc.Total == "" {
					return ""
				}
				return cc.CurrencySymbol + cc.Total
			})},
			vocabulary.Tag{Name: "currency_name", Resolve: cart(func(cc *Cart) string { return cc.Currency })},
			vocabulary.Tag{Name: "currency_symbol", Resolve: cart(func(cc *Cart) string { return cc.CurrencySymbol })},
		); err != nil {
			return err
		}
	}

	return r.AddSidebarPosition(vocabulary.Option{Value: "woocommerce", Label: "WooCommerce"})
}

func stateOf(ctx *request.Context) (*State, bool) {
	var s State
	if !ctx.Extension(ExtensionName, &s) {
		return nil, false
	}
	return &s, true
}

func exactOnly(tags []vocabulary.Tag, names ...string) []vocabulary.Tag {
	var out []vocabulary.Tag
	for _, t := range tags {
		for _, n := range names {
			if t.Name == n {
				out = append(out, t)
			}
		}
	}
	return out
}

func field(read func(s *State) string) vocabulary.TagFunc {
	return func(ctx *request.Context, _ vocabulary.Renderers) (string, bool) {
		s, ok := stateOf(ctx)
		if !ok {
			return "", false
		}
		v := read(s)
		return v, v != ""
	}
}

func product(read func(p *Product) string) vocabulary.TagFunc {
	return field(func(s *State) string {
		if s.Product == nil {
			return ""
		}
		return read(s.Product)
	})
}

func cart(read func(c *Cart) string) vocabulary.TagFunc {
	return field(func(s *State) string {
		if s.Cart == nil {
			return ""
		}
		return read(s.Cart)
	})
}
