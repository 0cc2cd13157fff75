package lms

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/lmsctl/dispatch"
	"github.com/s0up4200/lmsctl/oauth"
)

const servicePath = "/services4/publicservice.svc"

var (
	testCreds = oauth.Credentials{
		Identity:           "sean",
		SharedSecret:       "s3cr3t!",
		SecondarySecretKey: "legacy-key",
	}
	testNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	testUID = uuid.MustParse("6f1c2b7e-3d4a-4e5f-8a9b-0c1d2e3f4a5b")
)

// fakeLMS routes "METHOD /path" patterns below the service path and records
// what it receives.
type fakeLMS struct {
	*httptest.Server
	mux *http.ServeMux

	mu     sync.Mutex
	calls  map[string]int
	bodies map[string][]string
	header map[string]http.Header
}

func newFakeLMS(t *testing.T) *fakeLMS {
	t.Helper()
	f := &fakeLMS{
		mux:    http.NewServeMux(),
		calls:  make(map[string]int),
		bodies: make(map[string][]string),
		header: make(map[string]http.Header),
	}
	f.Server = httptest.NewServer(f.mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeLMS) handle(pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	f.mux.HandleFunc(method+" "+servicePath+path, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.calls[pattern]++
		f.bodies[pattern] = append(f.bodies[pattern], string(body))
		f.header[pattern] = r.Header.Clone()
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		h(w, r)
	})
}

func (f *fakeLMS) reply(pattern, body string) {
	f.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
}

func (f *fakeLMS) count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pattern]
}

func (f *fakeLMS) lastBody(pattern string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := f.bodies[pattern]
	if len(bodies) == 0 {
		return ""
	}
	return bodies[len(bodies)-1]
}

func (f *fakeLMS) lastHeader(pattern string) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header[pattern]
}

func newTestClient(t *testing.T, f *fakeLMS, opts ...Option) *Client {
	t.Helper()
	return newLoggedTestClient(t, f, zerolog.Nop(), opts...)
}

func newLoggedTestClient(t *testing.T, f *fakeLMS, logger zerolog.Logger, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithUIDSource(func() uuid.UUID { return testUID }),
		WithDispatchOptions(dispatch.WithSignerOptions(
			oauth.WithNonceSource(func() string { return "1861532" }),
			oauth.WithClock(func() time.Time { return time.Unix(1438814674, 0) }),
		)),
	}, opts...)
	client, err := NewClient(f.URL+servicePath, testCreds, logger, opts...)
	require.NoError(t, err)
	return client
}

const acmeNodes = `<ArrayOfNode>
	<Node><Name>Acme Corp</Name><NodeID>10</NodeID><ObjectID>110</ObjectID><TypeID>1</TypeID></Node>
</ArrayOfNode>`

func TestTestConnection(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", acmeNodes)

	client := newTestClient(t, f)
	require.NoError(t, client.TestConnection(context.Background()))
	assert.Contains(t, f.lastBody("POST /nodes"), "<MaxResults>1</MaxResults>")
}

func TestTestConnectionUnauthorized(t *testing.T) {
	f := newFakeLMS(t)
	f.handle("POST /nodes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ConvergenceError", "Invalid signature")
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := newTestClient(t, f)
	err := client.TestConnection(context.Background())
	require.Error(t, err)
	assert.True(t, dispatch.IsTransport(err))
	assert.Equal(t, "Invalid signature", dispatch.ServerMessage(err))
}

func TestGetOrganizationIsCached(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", acmeNodes)

	client := newTestClient(t, f)
	ctx := context.Background()

	org, err := client.GetOrganization(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, 10, org.NodeID)
	assert.Equal(t, 110, org.ObjectID)
	assert.Equal(t, NodeTypeOrganization, org.TypeID)

	again, err := client.GetOrganization(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Same(t, org, again)

	assert.Equal(t, 1, f.count("POST /nodes"))
	body := f.lastBody("POST /nodes")
	assert.Contains(t, body, "<Name>Acme Corp</Name>")
	assert.Contains(t, body, "<NodeType>Organization</NodeType>")
	assert.Contains(t, body, "<NodeState>Active</NodeState>")

	header := f.lastHeader("POST /nodes")
	assert.True(t, strings.HasPrefix(header.Get("Authorization"), `OAuth oauth_nonce="1861532"`))
	assert.Equal(t, "application/xml", header.Get("Content-Type"))

	stats := client.CacheStats()
	assert.Equal(t, int64(1), stats.Nodes.Hits)
	assert.Equal(t, int64(1), stats.Nodes.Misses)
}

func TestGetOrganizationWithoutCache(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", acmeNodes)

	client := newTestClient(t, f, WithCache(false))
	for range 2 {
		_, err := client.GetOrganization(context.Background(), "Acme Corp")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.count("POST /nodes"))
}

func TestGetNodeMatchesDecoratedName(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", `<ArrayOfNode>
		<Node><Name>Denver Site</Name><NodeID>21</NodeID><ParentID>20</ParentID><TypeID>2</TypeID><SubTypeID>2</SubTypeID></Node>
		<Node><Name>sean</Name><NodeID>99</NodeID><ParentID>21</ParentID><TypeID>3</TypeID></Node>
	</ArrayOfNode>`)

	client := newTestClient(t, f)
	ctx := context.Background()

	nodes, err := client.GetNodes(ctx, 20, true)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Denver Site", nodes[0].Name)

	site, err := client.GetSite(ctx, 20, "Denver")
	require.NoError(t, err)
	assert.Equal(t, 21, site.NodeID)
	assert.Equal(t, 1, f.count("POST /nodes"))
}

func TestGetNodeNotFound(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", `<ArrayOfNode/>`)

	client := newTestClient(t, f)
	_, err := client.GetRegion(context.Background(), 10, "West")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	// misses are not cached
	_, err = client.GetRegion(context.Background(), 10, "West")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, f.count("POST /nodes"))
}

func TestRegistryNotFound(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		transport bool
	}{
		{
			name: "empty listing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<ArrayOfNode/>`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("ConvergenceError", "Directory unavailable")
				w.WriteHeader(http.StatusInternalServerError)
			},
			transport: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeLMS(t)
			f.handle("POST /nodes", tt.handler)
			f.reply("POST /qualifications", `<ArrayOfQualification/>`)

			client := newTestClient(t, f)
			_, err := client.GetQualification(context.Background(), 10, "Forklift Cert")
			require.ErrorIs(t, err, ErrRegistryNotFound)
			assert.Equal(t, dispatch.KindPrecondition, dispatch.Classify(err))
			assert.Contains(t, err.Error(), `"Forklift Cert"`)
			assert.Zero(t, f.count("POST /qualifications"))

			var transportErr *dispatch.TransportError
			assert.Equal(t, tt.transport, errors.As(err, &transportErr))
		})
	}
}

func TestRegistryLookupFailureLoggedOnce(t *testing.T) {
	f := newFakeLMS(t)
	f.handle("POST /nodes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ConvergenceError", "Directory unavailable")
		w.WriteHeader(http.StatusInternalServerError)
	})

	var buf bytes.Buffer
	client := newLoggedTestClient(t, f, zerolog.New(&buf))
	_, err := client.GetQualification(context.Background(), 10, "Forklift Cert")
	require.ErrorIs(t, err, ErrRegistryNotFound)

	errorLines := 0
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"level":"error"`) {
			errorLines++
			assert.Contains(t, line, `"server_message":"Directory unavailable"`)
		}
	}
	assert.Equal(t, 1, errorLines)
}

func TestGetNodeAnyType(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", acmeNodes)

	client := newTestClient(t, f)
	node, err := client.GetNode(context.Background(), 0, "Acme Corp", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, node.NodeID)

	body := f.lastBody("POST /nodes")
	assert.NotContains(t, body, "<NodeType>")
	assert.NotContains(t, body, "<NodeSubType>")
	assert.Empty(t, NodeType(0).String())
}

func TestResetCache(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", acmeNodes)

	client := newTestClient(t, f)
	ctx := context.Background()
	_, err := client.GetOrganization(ctx, "Acme Corp")
	require.NoError(t, err)

	client.ResetCache()
	_, err = client.GetOrganization(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("POST /nodes"))
}

func TestSingleReportsAmbiguousMatch(t *testing.T) {
	f := newFakeLMS(t)
	client := newTestClient(t, f)

	_, err := single(client, "GetThing", []int{1, 2, 3}, func(i int) bool { return i > 1 }, "thing")
	require.ErrorIs(t, err, ErrAmbiguousMatch)
	assert.True(t, dispatch.IsProtocol(err))

	_, err = single(client, "GetThing", []int{1}, func(i int) bool { return i > 1 }, "thing")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := single(client, "GetThing", []int{1, 2}, func(i int) bool { return i > 1 }, "thing")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func readBody(r *http.Request) string {
	body, _ := io.ReadAll(r.Body)
	return string(body)
}
