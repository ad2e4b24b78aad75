// Package dlmlicense provides the license client for the DataLayer Manager
// premium features.
//
// Install with:
//
//	go get github.com/CloudNativeWorks/datalayer-license/dlmlicense
//
// A Manager owns the single license key of a site. It talks to the license
// control layer over HTTP, keeps the last known status in the site's option
// store for 24 hours, and exposes one gate for feature code:
//
//	store := optionstore.NewMemoryStore()
//	m := dlmlicense.NewManager(store,
//	    dlmlicense.WithSiteURL("https://shop.example.com"),
//	)
//	if m.IsPremiumActive(ctx) {
//	    // enable custom variables
//	}
//
// # Test mode
//
// WithTestMode(true) disables all network access. Only TestLicenseKey can be
// activated and it always checks as valid.
//
// # Endpoint resolution
//
// The control-layer URL is resolved on every call: an explicit override wins,
// then an override hook, then the local or production endpoint depending on
// the detected Environment.
package dlmlicense
