package dataverse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// TokenScope returns the OAuth scope for a Dataverse environment URL.
func TokenScope(environmentURL string) string {
	return strings.TrimRight(environmentURL, "/") + "/.default"
}

// ServicePrincipalProvider acquires tokens using service principal
// credentials. This is the primary authentication method for CI/CD pipelines.
type ServicePrincipalProvider struct {
	tenantID   string
	clientID   string
	scope      string
	credential *azidentity.ClientSecretCredential
}

// NewServicePrincipalProvider creates a token provider for service principal
// auth against the given environment. All parameters are required.
func NewServicePrincipalProvider(tenantID, clientID, clientSecret, environmentURL string) (*ServicePrincipalProvider, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: service principal requires tenantID, clientID, and clientSecret", mdv.ErrCredentialFailed)
	}

	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mdv.ErrCredentialFailed, err)
	}

	return &ServicePrincipalProvider{
		tenantID:   tenantID,
		clientID:   clientID,
		scope:      TokenScope(environmentURL),
		credential: cred,
	}, nil
}

func (p *ServicePrincipalProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{p.scope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", mdv.ErrCredentialFailed, err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *ServicePrincipalProvider) String() string {
	return fmt.Sprintf("ServicePrincipal(tenant=%s, client=%s)", p.tenantID, p.clientID)
}

// DefaultCredentialProvider uses Azure's DefaultAzureCredential chain.
// This automatically tries multiple authentication methods in order:
// environment variables, workload identity, managed identity, Azure CLI,
// Azure Developer CLI, Azure PowerShell. Intended for local development.
type DefaultCredentialProvider struct {
	scope      string
	credential azcore.TokenCredential
}

// NewDefaultCredentialProvider creates a provider using the default
// credential chain for the given environment.
func NewDefaultCredentialProvider(environmentURL string) (*DefaultCredentialProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mdv.ErrCredentialFailed, err)
	}

	return &DefaultCredentialProvider{
		scope:      TokenScope(environmentURL),
		credential: cred,
	}, nil
}

func (p *DefaultCredentialProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{p.scope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", mdv.ErrCredentialFailed, err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *DefaultCredentialProvider) String() string {
	return "DefaultAzureCredential"
}

var (
	_ mdv.TokenProvider = (*ServicePrincipalProvider)(nil)
	_ mdv.TokenProvider = (*DefaultCredentialProvider)(nil)
)
