package azure

import (
	"context"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/rules"
)

// Connector authenticates and prepares a ResourceCollector for one
// subscription. A Connect error is a setup failure for every category.
type Connector interface {
	Connect(ctx context.Context, subscriptionID string, sp *models.AzureCredentials) (ResourceCollector, error)
}

// ResourceCollector fetches the typed records for each Azure category.
// A returned error means the whole category could not be fetched.
type ResourceCollector interface {
	// CollectNSGs lists every network security group in the subscription.
	CollectNSGs(ctx context.Context) ([]models.NetworkSecurityGroup, error)

	// CollectStorageAccounts lists every storage account in the
	// subscription and returns an accessor for their network rule sets.
	CollectStorageAccounts(ctx context.Context) ([]models.StorageAccount, rules.StorageNetworkRuleAccessor, error)
}
