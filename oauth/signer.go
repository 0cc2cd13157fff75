package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"
)

// Credentials identify a caller to the remote service. SecondarySecretKey is
// only sent by the unsigned legacy endpoints.
type Credentials struct {
	Identity           string
	SharedSecret       string
	SecondarySecretKey string
}

// Signer computes one-legged OAuth 1.0 Authorization headers.
type Signer struct {
	identity string
	secret   string
	nonce    func() string
	now      func() time.Time
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithNonceSource replaces the random nonce generator.
func WithNonceSource(fn func() string) SignerOption {
	return func(s *Signer) {
		s.nonce = fn
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(fn func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = fn
	}
}

// NewSigner creates a Signer for the given credentials.
func NewSigner(creds Credentials, opts ...SignerOption) (*Signer, error) {
	if creds.Identity == "" {
		return nil, fmt.Errorf("%w: identity is required", ErrInvalidCredentials)
	}
	if creds.SharedSecret == "" {
		return nil, fmt.Errorf("%w: shared secret is required", ErrInvalidCredentials)
	}

	s := &Signer{
		identity: creds.Identity,
		secret:   creds.SharedSecret,
		nonce:    randomNonce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func randomNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sign returns the Authorization header value for method and rawURL. The URL
// must already carry its full query; request bodies are never signed.
func (s *Signer) Sign(method, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrRelativeURL, rawURL)
	}

	nonce := s.nonce()
	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	signature, err := s.Signature(method, u, nonce, timestamp)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`OAuth oauth_nonce="%s", oauth_signature_method="%s", oauth_timestamp="%s", oauth_consumer_key="%s", oauth_signature="%s", oauth_version="%s"`,
		EncodeRFC3986(nonce),
		SignatureMethod,
		EncodeRFC3986(timestamp),
		EncodeRFC3986(s.identity),
		EncodeRFC3986(signature),
		Version,
	), nil
}

// Signature computes the base64 HMAC-SHA1 signature of the base string for
// the given request.
func (s *Signer) Signature(method string, u *url.URL, nonce, timestamp string) (string, error) {
	base := BaseString(method, u, s.oauthParams(nonce, timestamp))

	mac := hmac.New(sha1.New, []byte(Encode(s.secret)+"&"))
	if _, err := mac.Write([]byte(base)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignature, err)
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (s *Signer) oauthParams(nonce, timestamp string) []Param {
	return []Param{
		{Key: "oauth_consumer_key", Value: s.identity},
		{Key: "oauth_nonce", Value: nonce},
		{Key: "oauth_signature_method", Value: SignatureMethod},
		{Key: "oauth_timestamp", Value: timestamp},
		{Key: "oauth_version", Value: Version},
	}
}

// Param is a single signature base string parameter.
type Param struct {
	Key, Value string
}

// BaseString builds METHOD&enc(normalized url)&enc(normalized parameters).
func BaseString(method string, u *url.URL, extra []Param) string {
	params := append(queryParams(u.RawQuery), extra...)
	for i := range params {
		params[i] = Param{Key: Encode(params[i].Key), Value: Encode(params[i].Value)}
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].Key != params[j].Key {
			return params[i].Key < params[j].Key
		}
		return params[i].Value < params[j].Value
	})

	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = p.Key + "=" + p.Value
	}

	return strings.ToUpper(method) + "&" +
		Encode(NormalizeURL(u)) + "&" +
		Encode(strings.Join(pairs, "&"))
}

// NormalizeURL returns scheme://host[:port]/path with the port omitted when it
// is the scheme default.
func NormalizeURL(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" {
		if !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
			host += ":" + port
		}
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// queryParams splits a raw query into decoded pairs, dropping oauth_ fields.
func queryParams(rawQuery string) []Param {
	var params []Param
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = unescape(key)
		if strings.HasPrefix(key, "oauth_") {
			continue
		}
		params = append(params, Param{Key: key, Value: unescape(value)})
	}
	return params
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
