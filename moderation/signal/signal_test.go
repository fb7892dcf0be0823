package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeutral(t *testing.T) {
	assert := assert.New(t)

	n := Neutral()
	assert.Equal(0.0, n.Toxicity)
	assert.Empty(n.Categories)
	assert.Equal(SentimentUnknown, n.Sentiment)
	assert.Equal(0.0, n.WeightedScore())
}

func TestWeightedScore(t *testing.T) {
	assert := assert.New(t)

	a := &Assessment{
		Categories: map[string]float64{
			"threat": 0.5,
			"insult": 0.25,
			"toxic":  0.1,
			// unknown labels are ignored
			"spam": 0.9,
		},
	}
	assert.InDelta(0.5*3+0.25*2+0.1, a.WeightedScore(), 0.0001)
}

func TestHTTPClientAssess(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("POST", r.Method)
		assert.Equal("/classify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"label": "toxic", "score": 0.91},
				{"label": "insult", "score": 0.42}
			],
			"sentiment": {"label": "NEGATIVE", "score": 0.98}
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	got, err := c.Assess(context.Background(), "some text")
	require.NoError(t, err)
	assert.InDelta(0.91, got.Toxicity, 0.0001)
	assert.Equal(SentimentNegative, got.Sentiment)
	assert.InDelta(0.91+0.42*2, got.WeightedScore(), 0.0001)
}

func TestHTTPClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.Assess(context.Background(), "some text")
	assert.Error(t, err)
}

func TestHTTPClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.Assess(context.Background(), "some text")
	assert.Error(t, err)
}

func TestHTTPClientUnreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := c.Assess(context.Background(), "some text")
	assert.Error(t, err)
}
