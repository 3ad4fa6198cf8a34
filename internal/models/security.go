package models

import (
	"fmt"
	"strings"
)

// SecurityGroup is an EC2 security group with its inbound permissions.
// Region carries the AWS region the group was collected from.
type SecurityGroup struct {
	GroupID     string         `json:"group_id"`
	Region      string         `json:"region"`
	Permissions []IPPermission `json:"permissions"`
}

// IPPermission is one inbound permission entry of a security group.
// PortRange is empty when the permission covers all ports (protocol "-1").
type IPPermission struct {
	Protocol  string   `json:"protocol"`
	PortRange string   `json:"port_range,omitempty"`
	CIDRs     []string `json:"cidrs"`
}

// String renders the permission's raw description, e.g.
// "{protocol: tcp, ports: 22, CIDR: 0.0.0.0/0}".
func (p IPPermission) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{protocol: %s", p.Protocol)
	if p.PortRange != "" {
		fmt.Fprintf(&b, ", ports: %s", p.PortRange)
	}
	fmt.Fprintf(&b, ", CIDR: %s}", strings.Join(p.CIDRs, ", "))
	return b.String()
}

// HasCIDR reports whether cidr appears verbatim in the permission's sources.
func (p IPPermission) HasCIDR(cidr string) bool {
	for _, c := range p.CIDRs {
		if c == cidr {
			return true
		}
	}
	return false
}

// S3Bucket is an S3 bucket as listed by ListBuckets. Region is empty when
// the listing did not report the bucket's region.
type S3Bucket struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// BucketGrant is one entry of a bucket's access control list.
// GranteeType is the SDK grantee kind: "CanonicalUser", "Group" or
// "AmazonCustomerByEmail".
type BucketGrant struct {
	GranteeType string `json:"grantee_type"`
	URI         string `json:"uri,omitempty"`
	Permission  string `json:"permission"`
}

// IAMUser is an IAM user as listed by ListUsers.
type IAMUser struct {
	UserName string `json:"user_name"`
}
