package phishk

import "strings"

// KnownBrand that pages commonly impersonate
type KnownBrand struct {
	CanonicalDomain string
	Keywords        []string
}

// PrimaryName is the brand domain up to the first dot
func (b *KnownBrand) PrimaryName() string {
	return strings.SplitN(b.CanonicalDomain, ".", 2)[0]
}

// KnownBrands table, order matters as checks stop at the first match
var KnownBrands = []*KnownBrand{
	{CanonicalDomain: "paypal.com", Keywords: []string{"paypal", "pay", "payment"}},
	{CanonicalDomain: "google.com", Keywords: []string{"google", "gmail", "gcloud"}},
	{CanonicalDomain: "facebook.com", Keywords: []string{"facebook", "fb", "meta"}},
	{CanonicalDomain: "amazon.com", Keywords: []string{"amazon", "aws", "prime"}},
	{CanonicalDomain: "apple.com", Keywords: []string{"apple", "icloud", "itunes"}},
	{CanonicalDomain: "microsoft.com", Keywords: []string{"microsoft", "azure", "office"}},
	{CanonicalDomain: "netflix.com", Keywords: []string{"netflix", "netfix", "movies"}},
	{CanonicalDomain: "bank", Keywords: []string{"bank", "banking", "account", "transfer"}},
}
