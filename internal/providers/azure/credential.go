package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/cloudmap/cloudmap/internal/models"
)

// managementScope is the token scope for Azure Resource Manager.
const managementScope = "https://management.azure.com/.default"

// NewCredential returns a client-secret credential when sp is non-nil, and
// the default Azure credential chain (environment, managed identity, Azure
// CLI) otherwise.
func NewCredential(sp *models.AzureCredentials) (azcore.TokenCredential, error) {
	if sp == nil {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create default Azure credential: %w", err)
		}
		return cred, nil
	}
	if !sp.Complete() {
		return nil, errors.New("service principal credentials require tenant ID, client ID and client secret")
	}
	cred, err := azidentity.NewClientSecretCredential(sp.TenantID, sp.ClientID, sp.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("create client secret credential: %w", err)
	}
	return cred, nil
}

// VerifyCredential requests an ARM token to prove cred can authenticate.
func VerifyCredential(ctx context.Context, cred azcore.TokenCredential) error {
	_, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{managementScope}})
	if err != nil {
		return fmt.Errorf("acquire management token: %w", err)
	}
	return nil
}
