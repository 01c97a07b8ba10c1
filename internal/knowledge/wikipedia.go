package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// WikipediaClient implements Encyclopedia against the REST page-summary
// endpoint. The endpoint returns a full lead extract; the sentence budget is
// applied client-side.
type WikipediaClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewWikipediaClient(baseURL string) *WikipediaClient {
	return &WikipediaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

type pageSummaryResponse struct {
	Type    string `json:"type"`
	Extract string `json:"extract"`
}

func (c *WikipediaClient) Summarize(ctx context.Context, title string, sentences int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/page/summary/%s", c.baseURL, url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	// A missing page is an empty summary, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page summary: status %d", resp.StatusCode)
	}
	var out pageSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	// Disambiguation pages name many places at once; treat as no summary.
	if out.Type == "disambiguation" {
		return "", nil
	}
	return truncateSentences(out.Extract, sentences), nil
}

// truncateSentences keeps at most n sentences, recognizing the Japanese 句点
// and the ASCII period as terminators.
func truncateSentences(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i, r := range text {
		if r == '。' || r == '.' {
			count++
			if count == n {
				return text[:i+len(string(r))]
			}
		}
	}
	return text
}
