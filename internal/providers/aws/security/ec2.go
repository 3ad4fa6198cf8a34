package awssecurity

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"golang.org/x/sync/errgroup"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
)

// collectSecurityGroupsByRegion runs collectSecurityGroups for every region
// with at most limit calls in flight. Results are concatenated in region
// order. The first regional failure cancels the rest and fails the category.
func collectSecurityGroupsByRegion(
	ctx context.Context,
	regions []string,
	limit int,
	clientFor func(region string) ec2SecurityAPIClient,
) ([]models.SecurityGroup, error) {
	perRegion := make([][]models.SecurityGroup, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, region := range regions {
		g.Go(func() error {
			groups, err := collectSecurityGroups(gctx, clientFor(region), region)
			if err != nil {
				return err
			}
			perRegion[i] = groups
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.SecurityGroup
	for _, groups := range perRegion {
		all = append(all, groups...)
	}
	return all, nil
}

// collectSecurityGroups lists every EC2 security group in region and
// converts its inbound permissions. Both IPv4 and IPv6 ranges are kept as
// CIDR sources.
func collectSecurityGroups(ctx context.Context, client ec2SecurityAPIClient, region string) ([]models.SecurityGroup, error) {
	paginator := ec2svc.NewDescribeSecurityGroupsPaginator(client, &ec2svc.DescribeSecurityGroupsInput{})
	var groups []models.SecurityGroup
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe security groups in %s: %w", region, common.Simplify(err))
		}
		for _, sg := range page.SecurityGroups {
			group := models.SecurityGroup{
				GroupID: aws.ToString(sg.GroupId),
				Region:  region,
			}
			for _, perm := range sg.IpPermissions {
				group.Permissions = append(group.Permissions, toIPPermission(perm))
			}
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func toIPPermission(perm ec2types.IpPermission) models.IPPermission {
	p := models.IPPermission{
		Protocol:  aws.ToString(perm.IpProtocol),
		PortRange: portRange(perm.FromPort, perm.ToPort),
	}
	for _, r := range perm.IpRanges {
		p.CIDRs = append(p.CIDRs, aws.ToString(r.CidrIp))
	}
	for _, r := range perm.Ipv6Ranges {
		p.CIDRs = append(p.CIDRs, aws.ToString(r.CidrIpv6))
	}
	return p
}

// portRange renders "22" for a single port and "1024-65535" for a span.
// Permissions without ports (protocol "-1") render as "".
func portRange(from, to *int32) string {
	if from == nil {
		return ""
	}
	f := aws.ToInt32(from)
	if to == nil || aws.ToInt32(to) == f {
		return strconv.Itoa(int(f))
	}
	return fmt.Sprintf("%d-%d", f, aws.ToInt32(to))
}
