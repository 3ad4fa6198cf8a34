package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudmap/cloudmap/internal/models"
)

const defaultActionAllow = "allow"

// NoPublicStorageAccounts is emitted when every storage account denies
// unlisted networks by default.
const NoPublicStorageAccounts models.Finding = "No publicly accessible storage accounts found."

// CheckStorageAccounts fetches each account's network rule set through
// networkRules and flags accounts whose default action is "allow"
// (case-insensitive). Accounts without a rule set are not flagged. A failed
// lookup becomes a finding for that account.
func CheckStorageAccounts(ctx context.Context, accounts []models.StorageAccount, networkRules StorageNetworkRuleAccessor) []models.Finding {
	var findings []models.Finding
	for _, sa := range accounts {
		ruleSet, err := networkRuleSet(ctx, networkRules, sa)
		if err != nil {
			findings = append(findings, models.Finding(
				fmt.Sprintf("Error checking storage account %s: %v", sa.Name, err),
			))
			continue
		}
		if ruleSet == nil || !strings.EqualFold(ruleSet.DefaultAction, defaultActionAllow) {
			continue
		}
		findings = append(findings, models.Finding(fmt.Sprintf(
			"Storage account %s in resource group %s allows public access by default.",
			sa.Name, sa.ResourceGroup,
		)))
	}
	return orPlaceholder(findings, NoPublicStorageAccounts)
}

func networkRuleSet(ctx context.Context, accessor StorageNetworkRuleAccessor, sa models.StorageAccount) (*models.StorageNetworkRuleSet, error) {
	if accessor == nil {
		return nil, errors.New("no storage accessor configured")
	}
	return accessor.NetworkRuleSet(ctx, sa)
}

// StorageDefaultAllowRule flags Azure storage accounts that accept traffic
// from networks that are not explicitly denied.
type StorageDefaultAllowRule struct{}

func (r StorageDefaultAllowRule) ID() string   { return "STORAGE_DEFAULT_ALLOW" }
func (r StorageDefaultAllowRule) Name() string { return "Storage Account Allows All Networks" }
func (r StorageDefaultAllowRule) Category() models.Category {
	return models.CategoryStorageAccounts
}

// Evaluate runs CheckStorageAccounts over rc.StorageAccounts using
// rc.StorageNetworkRules.
func (r StorageDefaultAllowRule) Evaluate(ctx context.Context, rc RuleContext) []models.Finding {
	return CheckStorageAccounts(ctx, rc.StorageAccounts, rc.StorageNetworkRules)
}
