package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

// nsgAPIClient is the narrow armnetwork interface used for NSG listing.
type nsgAPIClient interface {
	NewListAllPager(options *armnetwork.SecurityGroupsClientListAllOptions) *runtime.Pager[armnetwork.SecurityGroupsClientListAllResponse]
}

// storageAPIClient is the narrow armstorage interface used for storage
// account listing and per-account property lookups.
type storageAPIClient interface {
	NewListPager(options *armstorage.AccountsClientListOptions) *runtime.Pager[armstorage.AccountsClientListResponse]
	GetProperties(ctx context.Context, resourceGroupName string, accountName string, options *armstorage.AccountsClientGetPropertiesOptions) (armstorage.AccountsClientGetPropertiesResponse, error)
}

// armClients bundles the ARM clients for one subscription.
type armClients struct {
	NSG     nsgAPIClient
	Storage storageAPIClient
}

// clientFactory creates armClients for a subscription.
// Injection point: tests replace this with a function returning fakes.
type clientFactory func(subscriptionID string, cred azcore.TokenCredential) (*armClients, error)

// newDefaultClients creates production ARM clients.
func newDefaultClients(subscriptionID string, cred azcore.TokenCredential) (*armClients, error) {
	nsgClient, err := armnetwork.NewSecurityGroupsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create NSG client: %w", err)
	}
	storageClient, err := armstorage.NewAccountsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &armClients{NSG: nsgClient, Storage: storageClient}, nil
}
