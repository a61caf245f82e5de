package source

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/obsidianstack/statuspanels/agent/internal/config"
)

const defaultQueryTimeout = 10 * time.Second

// maxErrorBody bounds how much of a failed response body ends up in an error.
const maxErrorBody = 512

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	ds   config.Datasource
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.ds.Auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.ds.Auth.Header, t.ds.Auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.ds.Auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.ds.Auth.Username, t.ds.Auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the datasource's auth and TLS
// settings.
func buildHTTPClient(ds config.Datasource) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: ds.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if ds.Auth.Mode == "mtls" {
		cert, err := tls.LoadX509KeyPair(ds.Auth.CertFile, ds.Auth.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}

		if ds.Auth.CAFile != "" {
			caPEM, err := os.ReadFile(ds.Auth.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("no valid certs found in ca file %q", ds.Auth.CAFile)
			}
			tlsCfg.RootCAs = pool
		}
	}

	transport := &authRoundTripper{
		base: &http.Transport{TLSClientConfig: tlsCfg},
		ds:   ds,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultQueryTimeout,
	}, nil
}

// get performs an HTTP GET and returns the response for a 200, or an error
// carrying the status and the start of the body otherwise. The caller closes
// the body.
func get(ctx context.Context, client *http.Client, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
	return resp, nil
}

// joinURL appends path to a base endpoint without doubling slashes.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
