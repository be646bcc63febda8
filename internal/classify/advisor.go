package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Hint is the narrow interface to the external AI advisory service.
// Advisory-only: it is surfaced to the human decision-maker next to the
// deterministic result and must never silently override it.
type Hint struct {
	SuggestedClassification string  `json:"suggested_classification"`
	Confidence              float64 `json:"confidence"`
	Rationale               string  `json:"rationale"`
}

// Advisor supplies classification hints. Implementations are expected to be
// slow and occasionally wrong; callers treat failures as "no hint".
type Advisor interface {
	Hint(ctx context.Context, attrs ContractAttributes) (Hint, error)
}

// HTTPAdvisor calls the configured advisory service.
type HTTPAdvisor struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPAdvisor(baseURL, apiKey string, timeout time.Duration) *HTTPAdvisor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPAdvisor{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAdvisor) Hint(ctx context.Context, attrs ContractAttributes) (Hint, error) {
	body, err := json.Marshal(attrs)
	if err != nil {
		return Hint{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/classification-hints", bytes.NewReader(body))
	if err != nil {
		return Hint{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.Client.Do(req)
	if err != nil {
		return Hint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Hint{}, fmt.Errorf("advisor returned status %d", resp.StatusCode)
	}

	var h Hint
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Hint{}, err
	}
	return h, nil
}
