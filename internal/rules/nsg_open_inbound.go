package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudmap/cloudmap/internal/models"
)

const directionInbound = "inbound"

// NoOpenNSGRules is emitted when no NSG rule admits traffic from anywhere.
const NoOpenNSGRules models.Finding = "No overly permissive NSG rules found."

// CheckNSGRules flags every inbound rule (direction compared
// case-insensitively) whose source address prefix is "0.0.0.0/0" or "*".
// One finding per matching rule, in input order.
func CheckNSGRules(nsgs []models.NetworkSecurityGroup) []models.Finding {
	var findings []models.Finding
	for _, nsg := range nsgs {
		for _, rule := range nsg.Rules {
			if !strings.EqualFold(rule.Direction, directionInbound) {
				continue
			}
			if !isWildcardSource(rule.SourceAddressPrefix) {
				continue
			}
			findings = append(findings, models.Finding(fmt.Sprintf(
				"NSG '%s' in resource group '%s' has open inbound rule '%s' allowing %s on port(s) %s.",
				nsg.Name, nsg.ResourceGroup, rule.Name, rule.Protocol, rule.DestinationPortRange,
			)))
		}
	}
	return orPlaceholder(findings, NoOpenNSGRules)
}

func isWildcardSource(prefix string) bool {
	return prefix == openIPv4CIDR || prefix == "*"
}

// NSGOpenInboundRule flags Azure NSG rules that admit inbound traffic from
// any source.
type NSGOpenInboundRule struct{}

func (r NSGOpenInboundRule) ID() string                { return "NSG_OPEN_INBOUND" }
func (r NSGOpenInboundRule) Name() string              { return "NSG Rule Open To Any Source" }
func (r NSGOpenInboundRule) Category() models.Category { return models.CategoryNSGRules }

// Evaluate runs CheckNSGRules over rc.NSGs.
func (r NSGOpenInboundRule) Evaluate(_ context.Context, rc RuleContext) []models.Finding {
	return CheckNSGRules(rc.NSGs)
}
