package ai

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Transport returns an otel-instrumented RoundTripper so outbound provider
// calls join the trace the evaluation span starts.
func Transport(provider string) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s %s", provider, r.Method, r.URL.Host)
		}),
	)
}
