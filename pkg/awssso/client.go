package awssso

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sso"
)

// ErrEnumerationFailed reports that the account or role listing could not
// be completed. No partial role list is ever returned with it.
var ErrEnumerationFailed = errors.New("role enumeration failed")

// API is the subset of the AWS SSO service client this package consumes.
type API interface {
	ListAccounts(ctx context.Context, params *sso.ListAccountsInput, optFns ...func(*sso.Options)) (*sso.ListAccountsOutput, error)
	ListAccountRoles(ctx context.Context, params *sso.ListAccountRolesInput, optFns ...func(*sso.Options)) (*sso.ListAccountRolesOutput, error)
	GetRoleCredentials(ctx context.Context, params *sso.GetRoleCredentialsInput, optFns ...func(*sso.Options)) (*sso.GetRoleCredentialsOutput, error)
}

// NewAPI builds the real SSO service client for the given region.
func NewAPI(ctx context.Context, region string) (API, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return sso.NewFromConfig(cfg), nil
}

// Client lists roles and fetches their credentials through the SSO service.
type Client struct {
	api  API
	jobs int
}

// NewClient returns a Client backed by api; jobs bounds how many credential
// fetches run at once.
func NewClient(api API, jobs int) *Client {
	if jobs < 1 {
		jobs = 1
	}

	return &Client{api: api, jobs: jobs}
}

// ListRoles returns every account/role pair visible to the access token,
// flattened in the order the service reports and fully paginated at both
// the account and role level. Any listing error aborts enumeration.
func (c *Client) ListRoles(ctx context.Context, accessToken string) ([]Role, error) {
	var roles []Role

	var nextToken *string
	for {
		output, err := c.api.ListAccounts(ctx, &sso.ListAccountsInput{
			AccessToken: aws.String(accessToken),
			NextToken:   nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: listing accounts: %v", ErrEnumerationFailed, err)
		}

		for _, account := range output.AccountList {
			accountRoles, err := c.listAccountRoles(ctx, accessToken, aws.ToString(account.AccountId))
			if err != nil {
				return nil, err
			}
			roles = append(roles, accountRoles...)
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	slog.Debug("Enumerated SSO roles", "count", len(roles))
	return roles, nil
}

func (c *Client) listAccountRoles(ctx context.Context, accessToken, accountID string) ([]Role, error) {
	var roles []Role

	var nextToken *string
	for {
		output, err := c.api.ListAccountRoles(ctx, &sso.ListAccountRolesInput{
			AccessToken: aws.String(accessToken),
			AccountId:   aws.String(accountID),
			NextToken:   nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: listing roles for account %s: %v", ErrEnumerationFailed, accountID, err)
		}

		for _, role := range output.RoleList {
			roles = append(roles, Role{
				AccountID: accountID,
				RoleName:  aws.ToString(role.RoleName),
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return roles, nil
}
