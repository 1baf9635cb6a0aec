package githubprovider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// CreateInstallationClient authenticates as a GitHub App installation and
// returns a Provider backed by the resulting client, along with the raw
// installation token (useful for go-git Basic-Auth clones in
// internal/localprovider).
func CreateInstallationClient(ctx context.Context, appID, installationID int64, privateKeyPath string, logger *slog.Logger) (*Provider, string, error) {
	logger.Info("creating github installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read private key from %s: %w", privateKeyPath, err)
	}

	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create github app transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create installation token for installation %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, "", fmt.Errorf("received an empty installation token")
	}
	logger.Info("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	installationClient := github.NewClient(tc)

	return New(installationClient, logger), token.GetToken(), nil
}

// NewPATClient creates a Provider authenticated with a Personal Access
// Token, for CLI tools or local development where no App installation is
// available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) *Provider {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return New(github.NewClient(tc), logger)
}
