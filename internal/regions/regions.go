// Package regions discovers the AWS regions available to the caller so the
// settings resolver can validate aws_region against the live list instead of
// the built-in one.
package regions

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// ErrNoRegions indicates DescribeRegions returned an empty list.
var ErrNoRegions = errors.New("no AWS regions returned")

// DescribeRegionsAPI is the subset of the EC2 client used for discovery.
type DescribeRegionsAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// Discover returns the sorted names of the regions enabled for the account.
func Discover(ctx context.Context, client DescribeRegionsAPI) ([]string, error) {
	out, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe regions: %w", err)
	}

	names := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if name := aws.ToString(r.RegionName); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoRegions
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// NewClient builds an EC2 client from the default credential chain. profile
// and region are optional.
func NewClient(ctx context.Context, profile, region string) (*ec2.Client, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}
