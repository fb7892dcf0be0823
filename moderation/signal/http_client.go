package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
)

// HTTPClient talks to a text-classification sidecar (eg a small service
// wrapping a toxicity model) over JSON. The request is
// {"text": "..."}; the response carries per-label scores plus a sentiment
// label.
type HTTPClient struct {
	Client http.Client
	Host   string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(host string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		Client: http.Client{Timeout: timeout},
		Host:   host,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResp struct {
	Results   []classifyResp_Label `json:"results"`
	Sentiment *classifyResp_Label  `json:"sentiment"`
}

type classifyResp_Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HTTPClient) Assess(ctx context.Context, text string) (*Assessment, error) {

	slog.Debug("sending text to classifier", "host", c.Host, "size", len(text))

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.Host+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		classifierAPIDuration.Observe(duration.Seconds())
	}()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "guardian/"+versioninfo.Short())

	req = req.WithContext(ctx)
	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %v", err)
	}
	defer res.Body.Close()

	classifierAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("classifier request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier resp body: %v", err)
	}

	var respObj classifyResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("failed to parse classifier resp JSON: %v", err)
	}

	return respObj.normalize(), nil
}

func (r *classifyResp) normalize() *Assessment {
	out := Neutral()
	for _, lbl := range r.Results {
		out.Categories[lbl.Label] = lbl.Score
		if lbl.Score > out.Toxicity {
			out.Toxicity = lbl.Score
		}
	}
	if r.Sentiment != nil {
		switch r.Sentiment.Label {
		case "POSITIVE":
			out.Sentiment = SentimentPositive
		case "NEGATIVE":
			out.Sentiment = SentimentNegative
		}
	}
	return out
}
