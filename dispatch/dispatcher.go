package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/lmsctl/oauth"
	"github.com/s0up4200/lmsctl/xmlwire"
)

// ErrorHeader carries a human readable failure message on error responses.
const ErrorHeader = "ConvergenceError"

const (
	servicePath  = "/services4/publicservice.svc"
	uploaderPath = "/Convergence.ContentHost/uploader/upload.aspx"
)

// Dispatcher sends signed and legacy requests to the training registry.
type Dispatcher struct {
	baseURL    string
	creds      oauth.Credentials
	signer     *oauth.Signer
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
	telemetry  *telemetry
}

// New creates a Dispatcher for the service rooted at baseURL.
func New(baseURL string, creds oauth.Credentials, logger zerolog.Logger, opts ...Option) (*Dispatcher, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrInvalidConfig, baseURL)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	signer, err := oauth.NewSigner(creds, o.signerOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	tel, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry: %w", err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Dispatcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		signer:     signer,
		httpClient: httpClient,
		userAgent:  o.userAgent,
		logger:     logger,
		telemetry:  tel,
	}, nil
}

// BaseURL returns the service root without a trailing slash.
func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

type request struct {
	op       string
	method   string
	endpoint string
	query    url.Values
	body     []byte
	target   string // overrides baseURL+endpoint+query
	signed   bool
	mutating bool
	check    func(body []byte) error
}

// Get issues a signed GET and returns the response body.
func (d *Dispatcher) Get(ctx context.Context, op, endpoint string, query url.Values) ([]byte, error) {
	return d.do(ctx, request{
		op:       op,
		method:   http.MethodGet,
		endpoint: endpoint,
		query:    query,
		signed:   true,
	})
}

// Send issues a signed POST or PUT. A []byte payload is sent as is; any other
// non-nil payload is encoded with xmlwire.Marshal.
func (d *Dispatcher) Send(ctx context.Context, op, method, endpoint string, query url.Values, payload any) ([]byte, error) {
	var body []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = p
	default:
		encoded, err := xmlwire.Marshal(p)
		if err != nil {
			return nil, d.Report(op, &ProtocolError{Op: op, Err: err})
		}
		body = encoded
	}

	return d.do(ctx, request{
		op:       op,
		method:   method,
		endpoint: endpoint,
		query:    query,
		body:     body,
		signed:   true,
		mutating: true,
	})
}

// Legacy issues an unsigned GET carrying the secondary secret key as the
// secretkey query parameter. The call succeeds only when the plain text
// response contains one of successPhrases.
func (d *Dispatcher) Legacy(ctx context.Context, op, endpoint string, query url.Values, successPhrases ...string) (string, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("secretkey", d.creds.SecondarySecretKey)

	body, err := d.do(ctx, request{
		op:       op,
		method:   http.MethodGet,
		endpoint: endpoint,
		query:    q,
		check: func(body []byte) error {
			text := string(body)
			for _, phrase := range successPhrases {
				if strings.Contains(text, phrase) {
					return nil
				}
			}
			return &ApplicationError{Op: op, Message: strings.TrimSpace(text), Body: text}
		},
	})
	return string(body), err
}

// UploaderURL is the content uploader page that sits next to the service.
func (d *Dispatcher) UploaderURL() string {
	return strings.Replace(d.baseURL, servicePath, uploaderPath, 1)
}

// PingUploader checks that the content uploader answers 200.
func (d *Dispatcher) PingUploader(ctx context.Context) error {
	target := d.UploaderURL()
	d.logger.Info().Str("url", target).Msg("Pinging content uploader")

	_, err := d.do(ctx, request{
		op:       "PingContentUploader",
		method:   http.MethodGet,
		endpoint: uploaderPath,
		target:   target,
	})
	if err != nil {
		return fmt.Errorf("%w at %s: %w", ErrUploaderUnreachable, target, err)
	}
	return nil
}

// Decode unmarshals body into v, reporting a ProtocolError on failure.
func (d *Dispatcher) Decode(op string, body []byte, v any) error {
	if err := xmlwire.Unmarshal(body, v); err != nil {
		return d.Report(op, &ProtocolError{Op: op, Err: err})
	}
	return nil
}

// DecodeList unmarshals an ArrayOf… body. An empty body is an empty list.
func DecodeList[T any](d *Dispatcher, op string, body []byte) ([]T, error) {
	if xmlwire.IsEmpty(body) {
		return nil, nil
	}
	items, err := xmlwire.UnmarshalList[T](body)
	if err != nil {
		return nil, d.Report(op, &ProtocolError{Op: op, Err: err})
	}
	return items, nil
}

// Report logs err against op and returns it unchanged. Every failure leaving
// the dispatcher goes through here once; callers wrapping an error that was
// already reported must not report the wrapper again.
func (d *Dispatcher) Report(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := Classify(err)
	event := d.logger.Error()
	if kind == KindCanceled {
		event = d.logger.Warn()
	}
	event = event.Err(err).Str("op", op).Stringer("kind", kind)

	suffix := ""
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.StatusCode > 0 {
			event = event.Int("status", transportErr.StatusCode)
		}
		if transportErr.ServerMessage != "" {
			event = event.Str("server_message", transportErr.ServerMessage)
			suffix = " - " + transportErr.ServerMessage
		}
	}
	event.Msg(op + " failed" + suffix)
	return err
}

func (d *Dispatcher) do(ctx context.Context, r request) ([]byte, error) {
	ctx, span := d.telemetry.start(ctx, r.op, r.method, r.endpoint)
	body, status, err := d.roundTrip(ctx, r)
	d.telemetry.end(ctx, span, r.op, r.method, status, err)
	if err != nil {
		return nil, d.Report(r.op, err)
	}
	return body, nil
}

func (d *Dispatcher) roundTrip(ctx context.Context, r request) ([]byte, int, error) {
	target := r.target
	if target == "" {
		target = d.baseURL + r.endpoint
		if q := oauth.EncodeQuery(r.query); q != "" {
			target += "?" + q
		}
	}
	// Query strings may carry secrets; errors only name the path.
	redacted, _, _ := strings.Cut(target, "?")

	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if r.signed {
		header, err := d.signer.Sign(r.method, target)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Authorization", header)
	}
	if r.mutating {
		req.Header.Set("User-Agent", d.userAgent)
		req.Header.Set("UserAgent", d.userAgent)
		req.Header.Set("Content-Type", "application/xml")
	}

	d.logger.Debug().
		Str("op", r.op).
		Str("method", r.method).
		Str("url", redacted).
		Msg("Making LMS API request")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: r.op, Method: r.method, URL: redacted, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{
			Op:         r.op,
			Method:     r.method,
			URL:        redacted,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &TransportError{
			Op:            r.op,
			Method:        r.method,
			URL:           redacted,
			StatusCode:    resp.StatusCode,
			ServerMessage: resp.Header.Get(ErrorHeader),
			Body:          string(body),
		}
	}

	if r.check != nil {
		if err := r.check(body); err != nil {
			return nil, resp.StatusCode, err
		}
	}
	return body, resp.StatusCode, nil
}
