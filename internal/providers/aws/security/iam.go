package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
)

// collectIAMUsers returns all IAM users in the account.
// The ListUsers paginator handles accounts with many users.
func collectIAMUsers(ctx context.Context, client iamAPIClient) ([]models.IAMUser, error) {
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})
	var users []models.IAMUser
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM users: %w", common.Simplify(err))
		}
		for _, u := range page.Users {
			users = append(users, models.IAMUser{UserName: aws.ToString(u.UserName)})
		}
	}
	return users, nil
}

// userPolicyReader implements rules.UserPolicyAccessor with
// ListAttachedUserPolicies. Inline policies are not considered.
type userPolicyReader struct {
	client iamAPIClient
}

// AttachedPolicyNames returns the names of every managed policy attached to
// userName, across all pages.
func (r *userPolicyReader) AttachedPolicyNames(ctx context.Context, userName string) ([]string, error) {
	paginator := iamsvc.NewListAttachedUserPoliciesPaginator(r.client, &iamsvc.ListAttachedUserPoliciesInput{
		UserName: aws.String(userName),
	})
	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, common.Simplify(err)
		}
		for _, p := range page.AttachedPolicies {
			names = append(names, aws.ToString(p.PolicyName))
		}
	}
	return names, nil
}
