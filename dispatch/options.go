package dispatch

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/s0up4200/lmsctl/oauth"
)

// DefaultUserAgent is sent on every mutating request.
const DefaultUserAgent = "convergence.net/8.6.15(CSE+1.8.3.7)"

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	timeout        time.Duration
	userAgent      string
	httpClient     *http.Client
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	signerOpts     []oauth.SignerOption
}

func defaultOptions() options {
	return options{
		timeout:   30 * time.Second,
		userAgent: DefaultUserAgent,
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent overrides the user agent sent on mutating requests.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider the request counter is created from.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithSignerOptions passes options through to the request signer.
func WithSignerOptions(opts ...oauth.SignerOption) Option {
	return func(o *options) {
		o.signerOpts = append(o.signerOpts, opts...)
	}
}
