package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// WikidataClient implements KnowledgeBase against the wbsearchentities API
// and the public SPARQL endpoint. All calls share one rate limiter; the
// endpoint throttles aggressive clients.
type WikidataClient struct {
	apiURL    string
	sparqlURL string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewWikidataClient(apiURL, sparqlURL string) *WikidataClient {
	return &WikidataClient{
		apiURL:    apiURL,
		sparqlURL: sparqlURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
	}
}

type searchEntitiesResponse struct {
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"search"`
}

func (c *WikidataClient) SearchEntity(ctx context.Context, text, language string) (*SearchHit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {text},
		"language": {language},
		"format":   {"json"},
		"limit":    {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wbsearchentities: status %d", resp.StatusCode)
	}
	var out searchEntitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Search) == 0 {
		return nil, nil
	}
	hit := out.Search[0]
	return &SearchHit{ID: hit.ID, Label: hit.Label, Description: hit.Description}, nil
}

// sparqlResponse covers the SELECT JSON result shape for both queries.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (c *WikidataClient) QueryLabelDescription(ctx context.Context, entityID, language string) (*LabelDescription, error) {
	query := fmt.Sprintf(`
		SELECT ?label ?description WHERE {
			wd:%s rdfs:label ?label .
			OPTIONAL { wd:%s schema:description ?description . }
			FILTER (lang(?label) = %q)
			FILTER (lang(?description) = %q)
		}
		LIMIT 1
	`, entityID, entityID, language, language)
	out, err := c.sparqlSelect(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(out.Results.Bindings) == 0 {
		return nil, nil
	}
	b := out.Results.Bindings[0]
	ld := &LabelDescription{Label: b["label"].Value}
	if d, ok := b["description"]; ok {
		ld.Description = d.Value
	}
	return ld, nil
}

func (c *WikidataClient) QueryCoordinate(ctx context.Context, entityID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT ?coordinate WHERE {
			wd:%s wdt:P625 ?coordinate.
		}
		LIMIT 1
	`, entityID)
	out, err := c.sparqlSelect(ctx, query)
	if err != nil {
		return "", err
	}
	if len(out.Results.Bindings) == 0 {
		return "", nil
	}
	return out.Results.Bindings[0]["coordinate"].Value, nil
}

func (c *WikidataClient) sparqlSelect(ctx context.Context, query string) (*sparqlResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params := url.Values{"query": {query}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sparqlURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sparql: status %d", resp.StatusCode)
	}
	var out sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
