package session

// Page identifies one top-level navigable view of the storefront
type Page string

// Page values
const (
	PageHome       Page = "home"
	PageCatalog    Page = "catalog"
	PageUpload     Page = "upload"
	PageCart       Page = "cart"
	PagePharmacies Page = "pharmacies"
	PageCheckout   Page = "checkout"
	PageAuth       Page = "auth"
	PageProfile    Page = "profile"
)

// DefaultPage is shown for new sessions and for unknown page identifiers
const DefaultPage = PageHome

// AllPages returns every navigable page in menu order
func AllPages() []Page {
	return []Page{
		PageHome,
		PageCatalog,
		PageUpload,
		PageCart,
		PagePharmacies,
		PageCheckout,
		PageAuth,
		PageProfile,
	}
}

// IsValid reports whether p is a known page
func (p Page) IsValid() bool {
	switch p {
	case PageHome, PageCatalog, PageUpload, PageCart, PagePharmacies, PageCheckout, PageAuth, PageProfile:
		return true
	}
	return false
}

// String returns the page identifier
func (p Page) String() string {
	return string(p)
}

// ParsePage maps an identifier to a Page. Unknown identifiers fall back to
// DefaultPage; parsing never fails.
func ParsePage(s string) Page {
	p := Page(s)
	if p.IsValid() {
		return p
	}
	return DefaultPage
}
