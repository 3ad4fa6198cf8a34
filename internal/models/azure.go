package models

// NetworkSecurityGroup is an Azure NSG with its custom security rules.
// ResourceGroup is derived from ID when the record is built.
type NetworkSecurityGroup struct {
	Name          string        `json:"name"`
	ID            string        `json:"id"`
	ResourceGroup string        `json:"resource_group"`
	Rules         []NetworkRule `json:"rules"`
}

// NetworkRule is one directional NSG security rule.
type NetworkRule struct {
	Name                 string `json:"name"`
	Direction            string `json:"direction"`
	Protocol             string `json:"protocol"`
	DestinationPortRange string `json:"destination_port_range"`
	SourceAddressPrefix  string `json:"source_address_prefix"`
}

// StorageAccount is an Azure storage account as listed for a subscription.
type StorageAccount struct {
	Name          string `json:"name"`
	ID            string `json:"id"`
	ResourceGroup string `json:"resource_group"`
}

// StorageNetworkRuleSet holds the network ACL settings of a storage account.
// DefaultAction is "Allow" or "Deny" as reported by the service.
type StorageNetworkRuleSet struct {
	DefaultAction string `json:"default_action"`
}
