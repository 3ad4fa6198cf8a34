package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/rules"
)

// credentialFunc builds the token credential used by Connect.
type credentialFunc func(sp *models.AzureCredentials) (azcore.TokenCredential, error)

// DefaultConnector is the production Connector.
type DefaultConnector struct {
	newCredential credentialFunc
	factory       clientFactory
}

// NewDefaultConnector returns a connector wired to azidentity and the real
// ARM clients.
func NewDefaultConnector() *DefaultConnector {
	return &DefaultConnector{newCredential: NewCredential, factory: newDefaultClients}
}

// Connect builds the credential and ARM clients for subscriptionID. The
// subscription is passed explicitly; the process environment is not touched.
func (c *DefaultConnector) Connect(_ context.Context, subscriptionID string, sp *models.AzureCredentials) (ResourceCollector, error) {
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, errors.New("no Azure subscription ID provided")
	}
	cred, err := c.newCredential(sp)
	if err != nil {
		return nil, err
	}
	clients, err := c.factory(subscriptionID, cred)
	if err != nil {
		return nil, err
	}
	return &DefaultCollector{clients: clients}, nil
}

// DefaultCollector is the production ResourceCollector for one subscription.
type DefaultCollector struct {
	clients *armClients
}

// CollectNSGs implements ResourceCollector.
func (c *DefaultCollector) CollectNSGs(ctx context.Context) ([]models.NetworkSecurityGroup, error) {
	return collectNSGs(ctx, c.clients.NSG)
}

// CollectStorageAccounts implements ResourceCollector.
func (c *DefaultCollector) CollectStorageAccounts(ctx context.Context) ([]models.StorageAccount, rules.StorageNetworkRuleAccessor, error) {
	accounts, err := collectStorageAccounts(ctx, c.clients.Storage)
	if err != nil {
		return nil, nil, err
	}
	return accounts, &networkRuleReader{client: c.clients.Storage}, nil
}

// resourceGroupOf extracts the resource group name from an ARM resource ID.
// Unparseable IDs yield "".
func resourceGroupOf(id string) string {
	rid, err := arm.ParseResourceID(id)
	if err != nil {
		return ""
	}
	return rid.ResourceGroupName
}

// simplify reduces an ARM response error to its code and status. The SDK's
// own text spans several lines including the raw response body.
func simplify(err error) error {
	var re *azcore.ResponseError
	if !errors.As(err, &re) {
		return err
	}
	return &responseError{code: re.ErrorCode, status: re.StatusCode, err: err}
}

type responseError struct {
	code   string
	status int
	err    error
}

func (e *responseError) Error() string {
	if e.code == "" {
		return fmt.Sprintf("HTTP %d", e.status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.code, e.status)
}

func (e *responseError) Unwrap() error { return e.err }
