package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudmap/cloudmap/internal/models"
)

// adminPolicyMarker is matched as a substring so variants such as
// "AdministratorAccess-Amplify" are caught too.
const adminPolicyMarker = "AdministratorAccess"

// NoAdminPolicies is emitted when no user has an administrator policy.
const NoAdminPolicies models.Finding = "No overly permissive IAM policies found."

// CheckIAMPolicies looks up each user's attached managed policies through
// policies and emits one finding per policy whose name contains
// "AdministratorAccess". A failed lookup becomes a finding for that user.
func CheckIAMPolicies(ctx context.Context, users []models.IAMUser, policies UserPolicyAccessor) []models.Finding {
	var findings []models.Finding
	for _, u := range users {
		names, err := attachedPolicyNames(ctx, policies, u.UserName)
		if err != nil {
			findings = append(findings, models.Finding(
				fmt.Sprintf("Error checking policies for user %s: %v", u.UserName, err),
			))
			continue
		}
		for _, name := range names {
			if !strings.Contains(name, adminPolicyMarker) {
				continue
			}
			findings = append(findings, models.Finding(
				fmt.Sprintf("IAM user %s has overly permissive policy: %s.", u.UserName, name),
			))
		}
	}
	return orPlaceholder(findings, NoAdminPolicies)
}

func attachedPolicyNames(ctx context.Context, policies UserPolicyAccessor, userName string) ([]string, error) {
	if policies == nil {
		return nil, errors.New("no policy accessor configured")
	}
	return policies.AttachedPolicyNames(ctx, userName)
}

// IAMAdminPolicyRule flags IAM users with an AdministratorAccess-style
// managed policy attached.
type IAMAdminPolicyRule struct{}

func (r IAMAdminPolicyRule) ID() string                { return "IAM_ADMIN_POLICY" }
func (r IAMAdminPolicyRule) Name() string              { return "IAM User With Administrator Policy" }
func (r IAMAdminPolicyRule) Category() models.Category { return models.CategoryIAMPolicies }

// Evaluate runs CheckIAMPolicies over rc.IAMUsers using rc.UserPolicies.
func (r IAMAdminPolicyRule) Evaluate(ctx context.Context, rc RuleContext) []models.Finding {
	return CheckIAMPolicies(ctx, rc.IAMUsers, rc.UserPolicies)
}
