package call

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lingocall/internal/domain"
)

// HTTPDirectory fetches call details from the platform API.
type HTTPDirectory struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPDirectory(baseURL, token string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Details performs the authenticated entitlement lookup for a call.
func (d *HTTPDirectory) Details(ctx context.Context, callID string) (domain.CallDetails, error) {
	if strings.TrimSpace(callID) == "" {
		return domain.CallDetails{}, fmt.Errorf("call id is required")
	}

	endpoint := d.baseURL + "/calls/" + url.PathEscape(callID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.CallDetails{}, fmt.Errorf("invalid call details request: %w", err)
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.CallDetails{}, fmt.Errorf("call details request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.CallDetails{}, fmt.Errorf("call details request returned %s", resp.Status)
	}

	var details domain.CallDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return domain.CallDetails{}, fmt.Errorf("failed to decode call details: %w", err)
	}
	return details, nil
}
