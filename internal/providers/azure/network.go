package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"

	"github.com/cloudmap/cloudmap/internal/models"
)

// collectNSGs lists all network security groups in the subscription with
// their custom security rules. Default rules are not included.
func collectNSGs(ctx context.Context, client nsgAPIClient) ([]models.NetworkSecurityGroup, error) {
	pager := client.NewListAllPager(nil)
	var nsgs []models.NetworkSecurityGroup
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list network security groups: %w", simplify(err))
		}
		for _, nsg := range page.Value {
			if nsg == nil {
				continue
			}
			id := deref(nsg.ID)
			record := models.NetworkSecurityGroup{
				Name:          deref(nsg.Name),
				ID:            id,
				ResourceGroup: resourceGroupOf(id),
			}
			if nsg.Properties != nil {
				for _, rule := range nsg.Properties.SecurityRules {
					if rule == nil {
						continue
					}
					record.Rules = append(record.Rules, toNetworkRule(rule))
				}
			}
			nsgs = append(nsgs, record)
		}
	}
	return nsgs, nil
}

func toNetworkRule(rule *armnetwork.SecurityRule) models.NetworkRule {
	r := models.NetworkRule{Name: deref(rule.Name)}
	p := rule.Properties
	if p == nil {
		return r
	}
	if p.Direction != nil {
		r.Direction = string(*p.Direction)
	}
	if p.Protocol != nil {
		r.Protocol = string(*p.Protocol)
	}
	r.DestinationPortRange = deref(p.DestinationPortRange)
	if r.DestinationPortRange == "" && len(p.DestinationPortRanges) > 0 {
		r.DestinationPortRange = joinPortRanges(p.DestinationPortRanges)
	}
	r.SourceAddressPrefix = deref(p.SourceAddressPrefix)
	return r
}

// joinPortRanges joins the non-nil ranges with commas.
func joinPortRanges(ranges []*string) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r != nil {
			parts = append(parts, deref(r))
		}
	}
	return strings.Join(parts, ",")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
