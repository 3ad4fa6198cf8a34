package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudmap/cloudmap/internal/models"
)

// collectStorageAccounts lists all storage accounts in the subscription.
func collectStorageAccounts(ctx context.Context, client storageAPIClient) ([]models.StorageAccount, error) {
	pager := client.NewListPager(nil)
	var accounts []models.StorageAccount
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list storage accounts: %w", simplify(err))
		}
		for _, acct := range page.Value {
			if acct == nil {
				continue
			}
			id := deref(acct.ID)
			accounts = append(accounts, models.StorageAccount{
				Name:          deref(acct.Name),
				ID:            id,
				ResourceGroup: resourceGroupOf(id),
			})
		}
	}
	return accounts, nil
}

// networkRuleReader implements rules.StorageNetworkRuleAccessor with
// AccountsClient.GetProperties.
type networkRuleReader struct {
	client storageAPIClient
}

// NetworkRuleSet returns the account's network rule set, or nil when the
// account has none.
func (r *networkRuleReader) NetworkRuleSet(ctx context.Context, account models.StorageAccount) (*models.StorageNetworkRuleSet, error) {
	if account.ResourceGroup == "" {
		return nil, errors.New("resource group unknown")
	}
	resp, err := r.client.GetProperties(ctx, account.ResourceGroup, account.Name, nil)
	if err != nil {
		return nil, simplify(err)
	}
	if resp.Properties == nil || resp.Properties.NetworkRuleSet == nil {
		return nil, nil
	}
	set := &models.StorageNetworkRuleSet{}
	if action := resp.Properties.NetworkRuleSet.DefaultAction; action != nil {
		set.DefaultAction = string(*action)
	}
	return set, nil
}
