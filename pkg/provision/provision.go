// Package provision wires the pipeline end to end: interactive login, token
// lookup, role enumeration, credential fetch, and profile store writes,
// followed by the console URL summary.
package provision

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"profiterole/pkg/appconfig"
	"profiterole/pkg/awssso"
	"profiterole/pkg/profilestore"
	"profiterole/pkg/tokencache"
)

// Provisioner runs one provisioning pass. The Login and NewSTS fields are
// swappable so tests run without the AWS CLI or the real service.
type Provisioner struct {
	Settings *appconfig.Settings
	SSO      *awssso.Client
	Tokens   *tokencache.Reader
	Store    *profilestore.Writer

	Login  func(profile string) error
	NewSTS func(ctx context.Context, region string, creds awssso.Credentials) (awssso.STSAPI, error)
	Verify bool
	Out    io.Writer
}

// New assembles a Provisioner from loaded settings and resolved paths, with
// jobs bounding concurrent credential fetches.
func New(settings *appconfig.Settings, paths *appconfig.Paths, api awssso.API, jobs int, out io.Writer) *Provisioner {
	return &Provisioner{
		Settings: settings,
		SSO:      awssso.NewClient(api, jobs),
		Tokens:   &tokencache.Reader{Dir: paths.SSOCacheDir},
		Store: &profilestore.Writer{
			ConfigPath:      paths.ConfigFile,
			CredentialsPath: paths.CredentialsFile,
		},
		Login:  awssso.Login,
		NewSTS: awssso.NewSTSAPI,
		Out:    out,
	}
}

// Run executes one provisioning pass. Per-role fetch and write failures are
// reported on Out and skipped; any error returned here is fatal.
func (p *Provisioner) Run(ctx context.Context) error {
	// INTERACTIVE SSO LOGIN
	fmt.Fprintln(p.Out, "Initiating AWS SSO login. Please complete the login process in your browser.")
	if err := p.Login(p.Settings.AWS.SSOProfile); err != nil {
		return err
	}

	// READ CACHED ACCESS TOKEN
	slog.Info("Reading cached SSO access token...")
	accessToken, err := p.Tokens.LatestAccessToken()
	if err != nil {
		return err
	}

	// ENUMERATE ACCOUNTS AND ROLES
	slog.Info("Listing accounts and roles...")
	roles, err := p.SSO.ListRoles(ctx, accessToken)
	if err != nil {
		return err
	}

	// FETCH CREDENTIALS AND WRITE PROFILES
	slog.Info("Fetching role credentials...", "roles", len(roles))
	results := p.SSO.FetchAll(ctx, accessToken, roles)
	created := p.writeProfiles(ctx, results)

	p.printConsoleURLs(roles)
	p.printProfileHints(created)

	return nil
}

// writeProfiles upserts one profile per successful fetch and returns the
// names that made it into the stores, in fetch order.
func (p *Provisioner) writeProfiles(ctx context.Context, results []awssso.Result) []string {
	attrs := profilestore.ConfigAttrs{
		Region:      p.Settings.AWS.DefaultRegion,
		Output:      p.Settings.AWS.OutputFormat,
		SSOStartURL: p.Settings.AWS.SSOStartURL,
		SSORegion:   p.Settings.AWS.SSORegion,
	}

	var created []string
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("Credential fetch failed",
				"account", result.Role.AccountID, "role", result.Role.RoleName, "error", result.Err)
			fmt.Fprintf(p.Out, "Failed to get credentials for %s/%s: %v\n",
				result.Role.AccountID, result.Role.RoleName, result.Err)
			continue
		}
		fmt.Fprintf(p.Out, "Got credentials for Account ID: %s, Role: %s\n",
			result.Role.AccountID, result.Role.RoleName)

		name := result.Role.ProfileName()
		if err := p.Store.UpsertProfile(name, attrs, *result.Credentials); err != nil {
			slog.Warn("Profile update failed", "profile", name, "error", err)
			fmt.Fprintf(p.Out, "Failed to update profile %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(p.Out, "Updated profile: %s\n", name)
		created = append(created, name)

		if p.Verify {
			p.verifyProfile(ctx, name, *result.Credentials)
		}
	}

	return created
}

func (p *Provisioner) verifyProfile(ctx context.Context, name string, creds awssso.Credentials) {
	api, err := p.NewSTS(ctx, p.Settings.AWS.DefaultRegion, creds)
	if err != nil {
		slog.Warn("Verification failed", "profile", name, "error", err)
		fmt.Fprintf(p.Out, "Failed to verify profile %s: %v\n", name, err)
		return
	}

	arn, err := awssso.WhoAmI(ctx, api)
	if err != nil {
		slog.Warn("Verification failed", "profile", name, "error", err)
		fmt.Fprintf(p.Out, "Failed to verify profile %s: %v\n", name, err)
		return
	}

	slog.Info("Verified profile", "profile", name, "arn", arn)
}

// printConsoleURLs lists a direct console URL for every enumerated role,
// including roles whose credential fetch failed.
func (p *Provisioner) printConsoleURLs(roles []awssso.Role) {
	fmt.Fprintf(p.Out, "\nDirect URLs to the console:\n\n")
	for _, role := range roles {
		fmt.Fprintln(p.Out, role.ConsoleURL(p.Settings.AWS.SSOStartURL))
	}
}

func (p *Provisioner) printProfileHints(profiles []string) {
	fmt.Fprintf(p.Out, "\nCut paste one of following to set profile:\n\n")
	for _, profile := range profiles {
		fmt.Fprintf(p.Out, "set AWS_DEFAULT_PROFILE=%s\n", profile)
	}
}
