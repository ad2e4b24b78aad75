package dlmlicense_test

import (
	"context"
	"fmt"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
	"github.com/CloudNativeWorks/datalayer-license/dlmlicense/optionstore"
)

func ExampleNewManager() {
	m := dlmlicense.NewManager(
		optionstore.NewMemoryStore(),
		dlmlicense.WithSiteURL("https://shop.example.com"),
	)
	res := m.Activate(context.Background(), "XXXX-YYYY-ZZZZ")
	fmt.Printf("Activated: %v (%s)\n", res.Success, res.Message)

	if m.IsPremiumActive(context.Background()) {
		fmt.Println("Custom variables enabled")
	}
}

func ExampleWithTestMode() {
	m := dlmlicense.NewManager(optionstore.NewMemoryStore(), dlmlicense.WithTestMode(true))
	ctx := context.Background()

	res := m.Activate(ctx, dlmlicense.TestLicenseKey)
	fmt.Println(res.Message)
	fmt.Println(m.GetStatus(ctx, false))
	// Output:
	// Test license activated successfully! (Test Mode)
	// valid
}

func ExampleResolveEndpoint() {
	fmt.Println(dlmlicense.ResolveEndpoint(dlmlicense.Resolution{
		Environment: dlmlicense.Environment{Hostname: "app.local"},
	}))
	fmt.Println(dlmlicense.ResolveEndpoint(dlmlicense.Resolution{
		Environment: dlmlicense.Environment{Hostname: "app.com"},
	}))
	// Output:
	// https://scriptsandpixels.local/license-api/
	// https://scriptsandpixels.studio/license-api/
}
