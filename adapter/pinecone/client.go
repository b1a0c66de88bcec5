package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/patrickmn/go-cache"
)

// indexHost resolves the data plane host of an index through the control plane.
func (a *Adapter) indexHost(ctx context.Context, index string) (string, error) {
	if host, ok := a.hosts.Get(index); ok {
		return host.(string), nil
	}

	endpoint := fmt.Sprintf("%s/indexes/%s", a.controllerURL, url.PathEscape(index))

	var describe struct {
		Host string `json:"host"`
	}
	if err := a.doJSON(ctx, http.MethodGet, endpoint, nil, &describe); err != nil {
		return "", fmt.Errorf("describing index %s: %w", index, err)
	}
	if describe.Host == "" {
		return "", fmt.Errorf("empty host for index %q", index)
	}

	host := normalizeHost(describe.Host)
	a.hosts.Set(index, host, cache.DefaultExpiration)

	a.logger.Sugar().With("index", index, "host", host).Info("resolved pinecone index host")

	return host, nil
}

func (a *Adapter) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", a.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pinecone request failed: method=%s status=%d body=%s", method, resp.StatusCode, string(raw))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
