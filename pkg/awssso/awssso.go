// Package awssso drives the AWS SSO portal APIs: it runs the interactive
// login, enumerates every account/role pair the signed-in identity can
// assume, and fetches short-lived credentials for each role.
package awssso

import "fmt"

// Role identifies one assumable permission set in one account.
type Role struct {
	AccountID string
	RoleName  string
}

// ProfileName returns the deterministic profile name for the role. Distinct
// roles always map to distinct names.
func (r Role) ProfileName() string {
	return fmt.Sprintf("sso-%s-%s", r.AccountID, r.RoleName)
}

// ConsoleURL returns the direct management-console URL for the role under
// the given SSO start URL.
func (r Role) ConsoleURL(startURL string) string {
	return fmt.Sprintf("%s/#/console?account_id=%s&role_name=%s", startURL, r.AccountID, r.RoleName)
}
