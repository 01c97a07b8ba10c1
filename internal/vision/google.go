package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/SumireDoi/LocaConne/pkg/logger"
)

// GoogleDetector calls the Vision images:annotate endpoint with
// LANDMARK_DETECTION. Calls run through a circuit breaker so a dead endpoint
// degrades to instant misses instead of ten slow timeouts per post.
type GoogleDetector struct {
	endpoint string
	apiKey   string
	language string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
}

func NewGoogleDetector(endpoint, apiKey, language string) *GoogleDetector {
	return &GoogleDetector{
		endpoint: endpoint,
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:    "vision-landmark",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type imageSource struct {
	ImageURI string `json:"imageUri"`
}

type annotateImage struct {
	Source imageSource `json:"source"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type imageContext struct {
	LanguageHints []string `json:"languageHints"`
}

type annotateEntry struct {
	Image        annotateImage     `json:"image"`
	Features     []annotateFeature `json:"features"`
	ImageContext imageContext      `json:"imageContext"`
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type landmarkAnnotation struct {
	Description string `json:"description"`
}

type annotateStatus struct {
	Message string `json:"message"`
}

type annotateResult struct {
	LandmarkAnnotations []landmarkAnnotation `json:"landmarkAnnotations"`
	Error               *annotateStatus      `json:"error"`
}

type annotateResponse struct {
	Responses []annotateResult `json:"responses"`
}

func (d *GoogleDetector) Detect(ctx context.Context, imageURL string) (string, bool) {
	if imageURL == "" {
		return "", false
	}
	landmark, err := d.breaker.Execute(func() (string, error) {
		return d.annotate(ctx, imageURL)
	})
	if err != nil {
		logger.Warn("landmark detection failed", zap.String("image_url", imageURL), zap.Error(err))
		return "", false
	}
	if landmark == "" {
		return "", false
	}
	return landmark, true
}

func (d *GoogleDetector) annotate(ctx context.Context, imageURL string) (string, error) {
	req := annotateRequest{Requests: []annotateEntry{{
		Image:        annotateImage{Source: imageSource{ImageURI: imageURL}},
		Features:     []annotateFeature{{Type: "LANDMARK_DETECTION", MaxResults: 1}},
		ImageContext: imageContext{LanguageHints: []string{d.language}},
	}}}
	body, err := json.Marshal(&req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"?key="+d.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("annotate: status %d", resp.StatusCode)
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Responses) == 0 {
		return "", nil
	}
	r := out.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("annotate: %s", r.Error.Message)
	}
	if len(r.LandmarkAnnotations) == 0 {
		return "", nil
	}
	return r.LandmarkAnnotations[0].Description, nil
}
