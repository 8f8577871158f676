package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"

	"github.com/microsoft/apt-transport-blob/internal/observability"
)

const blobHostSuffix = ".blob.core.windows.net"

type AzureConfig struct {
	// BearerToken, when non-empty, is used as a static storage-scoped token
	// instead of the credential chain.
	BearerToken string

	// DownloadTimeout bounds a single download. Zero disables the bound.
	DownloadTimeout time.Duration
}

// AzureStore implements Store on Azure Blob Storage. The credential is
// resolved once at construction and reused for every blob.
type AzureStore struct {
	credential      azcore.TokenCredential
	downloadTimeout time.Duration
	logger          *logrus.Logger
}

func NewAzureStore(cfg AzureConfig) (*AzureStore, error) {
	logger := observability.GetLogger()

	var credential azcore.TokenCredential
	if cfg.BearerToken != "" {
		logger.Debug("Using storage bearer token for blob access")
		credential = &staticTokenCredential{token: cfg.BearerToken}
	} else {
		logger.Debug("Using token credentials for blob access")
		chain, err := newCredentialChain()
		if err != nil {
			return nil, fmt.Errorf("failed to build credential chain: %w", err)
		}
		credential = chain
	}

	return &AzureStore{
		credential:      credential,
		downloadTimeout: cfg.DownloadTimeout,
		logger:          logger,
	}, nil
}

// newCredentialChain builds the credential, prioritising environment
// credentials and the Azure CLI above managed identity. This makes local
// operation a lot faster.
func newCredentialChain() (*azidentity.ChainedTokenCredential, error) {
	var sources []azcore.TokenCredential
	if env, err := azidentity.NewEnvironmentCredential(nil); err == nil {
		sources = append(sources, env)
	}
	if cli, err := azidentity.NewAzureCLICredential(nil); err == nil {
		sources = append(sources, cli)
	}
	if mi, err := azidentity.NewManagedIdentityCredential(nil); err == nil {
		sources = append(sources, mi)
	}
	return azidentity.NewChainedTokenCredential(sources, nil)
}

// Resolve maps a URL of the form
// https://<account>.blob.core.windows.net/<container>/<blob path...> to a
// blob handle.
func (s *AzureStore) Resolve(u *url.URL) (Blob, error) {
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("blob URL has no host: %s", u)
	}
	segments := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	if len(segments) < 1 || segments[0] == "" {
		return nil, fmt.Errorf("blob URL has no container: %s", u)
	}
	container := segments[0]
	name := strings.Join(segments[1:], "/")
	if name == "" {
		return nil, fmt.Errorf("blob URL has no blob name: %s", u)
	}
	account := strings.TrimSuffix(host, blobHostSuffix)

	blobURL := fmt.Sprintf("https://%s%s/%s/%s", account, blobHostSuffix, container, name)
	client, err := blob.NewClient(blobURL, s.credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client for account %s: %w", account, err)
	}

	s.logger.WithFields(logrus.Fields{
		"account":   account,
		"container": container,
		"blob":      name,
	}).Debug("Resolved blob")

	return &AzureBlob{
		Account:         account,
		Container:       container,
		Name:            name,
		client:          client,
		downloadTimeout: s.downloadTimeout,
	}, nil
}

// AzureBlob is a handle to one blob, bound to the store's credential.
type AzureBlob struct {
	Account   string
	Container string
	Name      string

	client          *blob.Client
	downloadTimeout time.Duration
}

func (b *AzureBlob) Exists(ctx context.Context) (bool, error) {
	_, err := b.client.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *AzureBlob) Properties(ctx context.Context) (uint64, string, error) {
	resp, err := b.client.GetProperties(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	var size uint64
	if resp.ContentLength != nil {
		size = uint64(*resp.ContentLength)
	}
	var lastModified string
	if resp.LastModified != nil {
		lastModified = resp.LastModified.UTC().Format(time.RFC3339)
	}
	return size, lastModified, nil
}

func (b *AzureBlob) Download(ctx context.Context) ([]byte, error) {
	if b.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.downloadTimeout)
		defer cancel()
	}
	resp, err := b.client.DownloadStream(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// staticTokenCredential serves a pre-acquired bearer token. The expiry is
// nominal: the token's real lifetime is owned by whoever minted it.
type staticTokenCredential struct {
	token string
}

func (c *staticTokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     c.token,
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}
