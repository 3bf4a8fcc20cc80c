package awssso

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sso"
)

// Credentials is one short-lived access key set for a role.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Result pairs a role with the outcome of its credential fetch. Exactly one
// of Credentials and Err is set.
type Result struct {
	Role        Role
	Credentials *Credentials
	Err         error
}

// FetchAll requests temporary credentials for every role. Each role gets
// exactly one attempt; a failure lands in that role's result and never
// aborts the others. Results match the order of roles regardless of how
// many workers ran.
func (c *Client) FetchAll(ctx context.Context, accessToken string, roles []Role) []Result {
	results := make([]Result, len(roles))

	jobs := c.jobs
	if jobs > len(roles) {
		jobs = len(roles)
	}
	if jobs < 1 {
		return results
	}

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = c.fetchOne(ctx, accessToken, roles[i])
			}
		}()
	}
	for i := range roles {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

func (c *Client) fetchOne(ctx context.Context, accessToken string, role Role) Result {
	output, err := c.api.GetRoleCredentials(ctx, &sso.GetRoleCredentialsInput{
		AccessToken: aws.String(accessToken),
		AccountId:   aws.String(role.AccountID),
		RoleName:    aws.String(role.RoleName),
	})
	if err != nil {
		return Result{Role: role, Err: fmt.Errorf("get role credentials: %w", err)}
	}
	if output.RoleCredentials == nil {
		return Result{Role: role, Err: fmt.Errorf("no credentials in response for %s/%s", role.AccountID, role.RoleName)}
	}

	slog.Debug("Fetched role credentials", "account", role.AccountID, "role", role.RoleName)
	return Result{
		Role: role,
		Credentials: &Credentials{
			AccessKeyID:     aws.ToString(output.RoleCredentials.AccessKeyId),
			SecretAccessKey: aws.ToString(output.RoleCredentials.SecretAccessKey),
			SessionToken:    aws.ToString(output.RoleCredentials.SessionToken),
		},
	}
}
