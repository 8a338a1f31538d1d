package github

import (
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerSecond = 10.0
	defaultRetryMax          = 3
)

// rateLimitedTransport waits on a token bucket before every request.
type rateLimitedTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

// retryLogger routes go-retryablehttp messages to logrus at debug level.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Warn(msg)
}

func fields(keysAndValues []interface{}) logger.Fields {
	result := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		result[key] = keysAndValues[i+1]
	}
	return result
}

// newHTTPClient builds the client shared by every call to one instance.
// Retries for 5xx and connection errors happen here and nowhere else; every
// attempt, retries included, waits on the instance's rate limiter.
func newHTTPClient(requestsPerSecond float64) *http.Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRequestsPerSecond
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = defaultRetryMax
	retryClient.Logger = retryLogger{}
	retryClient.HTTPClient.Transport = &rateLimitedTransport{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		next:    retryClient.HTTPClient.Transport,
	}

	return retryClient.StandardClient()
}
