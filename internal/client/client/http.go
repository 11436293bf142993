package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/api"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
	"github.com/dmitrijs2005/uploadhaven/internal/sharelink"
)

// maxMetaBody bounds JSON responses. Ciphertext bodies are bounded by the
// size the metadata declared, see Fetch.
const maxMetaBody = 64 << 10

type HTTPStorage struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPStorage returns a Storage for the server at endpoint, e.g.
// "http://127.0.0.1:8080". A nil client gets one with the given timeout.
func NewHTTPStorage(endpoint string, c *http.Client, timeout time.Duration) (*HTTPStorage, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("server endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server endpoint %q must be an http(s) URL", endpoint)
	}
	if c == nil {
		c = &http.Client{Timeout: timeout}
	}
	return &HTTPStorage{endpoint: u, client: c}, nil
}

func (s *HTTPStorage) url(route, shortID string) string {
	return s.endpoint.String() + strings.Replace(route, "{id}", url.PathEscape(shortID), 1)
}

func (s *HTTPStorage) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapError(err)
	}
	if err := netx.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *HTTPStorage) Store(ctx context.Context, r *UploadRequest) (*UploadReceipt, error) {
	header, err := api.EncodeUploadMetadata(&api.UploadMetadata{
		PublicMetadata:   r.Metadata,
		ExpiresInSeconds: int64(r.ExpiresIn / time.Second),
		AccessPassword:   r.AccessPassword,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint.String()+api.RouteFiles, bytes.NewReader(r.Ciphertext))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(common.UploadMetadataHeaderName, header)
	req.ContentLength = int64(len(r.Ciphertext))

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out api.UploadResponse
	if err := decodeBody(resp, &out); err != nil {
		return nil, err
	}
	if !sharelink.ValidShortID(out.ShortID) {
		return nil, fmt.Errorf("%w: server returned a malformed short id", common.ErrUnavailable)
	}
	return &UploadReceipt{ShortID: out.ShortID, ExpiresAt: out.ExpiresAt}, nil
}

func (s *HTTPStorage) Stat(ctx context.Context, shortID string) (*FileStat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(api.RouteMeta, shortID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out api.MetaResponse
	if err := decodeBody(resp, &out); err != nil {
		return nil, err
	}
	return &FileStat{Metadata: out.Metadata, Valid: out.Valid, AccessProtected: out.AccessProtected}, nil
}

// Fetch downloads the ciphertext. token is the download token for access
// protected uploads and may be empty. A body longer than size is refused
// with ErrSizeMismatch without buffering the excess.
func (s *HTTPStorage) Fetch(ctx context.Context, shortID string, token string, size int64) ([]byte, error) {
	if size < 0 {
		return nil, common.ErrSizeMismatch
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(api.RouteBlob, shortID), nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > size {
		return nil, common.ErrSizeMismatch
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, size+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if int64(len(b)) > size {
		common.WipeByteArray(b)
		return nil, common.ErrSizeMismatch
	}
	return b, nil
}

func (s *HTTPStorage) Authorize(ctx context.Context, shortID string, accessPassword string) (string, error) {
	body, err := json.Marshal(api.AccessRequest{Password: accessPassword})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(api.RouteAccess, shortID), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out api.AccessResponse
	if err := decodeBody(resp, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", common.ErrAccessDenied
	}
	return out.Token, nil
}

func decodeBody(resp *http.Response, v any) error {
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetaBody)).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", common.ErrUnavailable, err)
	}
	return nil
}
