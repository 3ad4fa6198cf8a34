package rules

import (
	"context"
	"fmt"

	"github.com/cloudmap/cloudmap/internal/models"
)

const openIPv4CIDR = "0.0.0.0/0"

// NoOpenSecurityGroupRules is emitted when no security group permission is
// open to the internet.
const NoOpenSecurityGroupRules models.Finding = "No overly permissive security group rules found."

// CheckSecurityGroups returns one finding per (group, permission) pair whose
// CIDR sources include 0.0.0.0/0, in input order. Only the exact IPv4
// wildcard is matched; broader-than-needed ranges are not flagged.
func CheckSecurityGroups(groups []models.SecurityGroup) []models.Finding {
	var findings []models.Finding
	for _, sg := range groups {
		for _, perm := range sg.Permissions {
			if !perm.HasCIDR(openIPv4CIDR) {
				continue
			}
			findings = append(findings, models.Finding(
				fmt.Sprintf("Security Group %s has an open rule: %s", sg.GroupID, perm),
			))
		}
	}
	return orPlaceholder(findings, NoOpenSecurityGroupRules)
}

// SecurityGroupOpenCIDRRule flags EC2 security group permissions that allow
// unrestricted IPv4 ingress.
type SecurityGroupOpenCIDRRule struct{}

func (r SecurityGroupOpenCIDRRule) ID() string   { return "SG_OPEN_CIDR" }
func (r SecurityGroupOpenCIDRRule) Name() string { return "Security Group Open To The Internet" }
func (r SecurityGroupOpenCIDRRule) Category() models.Category {
	return models.CategorySecurityGroups
}

// Evaluate runs CheckSecurityGroups over rc.SecurityGroups.
func (r SecurityGroupOpenCIDRRule) Evaluate(_ context.Context, rc RuleContext) []models.Finding {
	return CheckSecurityGroups(rc.SecurityGroups)
}
