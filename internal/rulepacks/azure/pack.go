// Package azure provides the Azure misconfiguration rule pack.
package azure

import "github.com/cloudmap/cloudmap/internal/rules"

// New returns the Azure rule pack, one rule per Azure category.
func New() []rules.Rule {
	return []rules.Rule{
		rules.NSGOpenInboundRule{},      // nsg_rules:        inbound rule from any source
		rules.StorageDefaultAllowRule{}, // storage_accounts: default network action is Allow
	}
}
