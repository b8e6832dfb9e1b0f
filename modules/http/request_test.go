package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/control"
	"github.com/vk/actorgrid/internal/executor"
	"github.com/vk/actorgrid/internal/localexecutor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/testutil"
	"github.com/vk/actorgrid/internal/token"
	httpmod "github.com/vk/actorgrid/modules/http"
)

func newRequest(t *testing.T, opts map[string]any) *httpmod.Request {
	t.Helper()
	r := testutil.Named(httpmod.NewRequest(), "req")
	o := options.MustFromMap(opts)
	require.NoError(t, r.Configure(o))
	require.Empty(t, o.Unused())
	return r
}

func run(t *testing.T, src *testutil.Source, req *httpmod.Request, out *testutil.Collector) *executor.Result {
	t.Helper()
	f := testutil.Named(control.NewFlow(), "flow")
	require.NoError(t, f.Add(src))
	require.NoError(t, f.Add(req))
	require.NoError(t, f.Add(out))
	return localexecutor.New(f).Run(context.Background())
}

func TestRequestGetsURLFromToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Path", r.URL.Path)
		_, _ = io.WriteString(w, "hello "+r.Method)
	}))
	defer srv.Close()

	out := testutil.NewCollector("out")
	res := run(t, testutil.NewSource("src", srv.URL+"/a"), newRequest(t, nil), out)

	require.NoError(t, res.Error())
	require.Len(t, out.Got(), 1)
	resp, ok := token.AsContainer(out.Got()[0])
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, resp["status_code"])
	assert.Equal(t, "hello GET", resp["body"])
	headers, ok := token.AsContainer(resp["headers"])
	require.True(t, ok)
	assert.Equal(t, "/a", headers["X-Path"])
}

func TestRequestPostsTokenAsBody(t *testing.T) {
	var gotBody, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("X-Run")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	req := newRequest(t, map[string]any{
		"url":     srv.URL,
		"method":  "post",
		"headers": map[string]any{"X-Run": "r1"},
	})
	out := testutil.NewCollector("out")
	res := run(t, testutil.NewSource("src", 42), req, out)

	require.NoError(t, res.Error())
	assert.Equal(t, "42", gotBody)
	assert.Equal(t, "r1", gotHeader)
	resp, _ := token.AsContainer(out.Got()[0])
	assert.Equal(t, http.StatusCreated, resp["status_code"])
}

func TestRequestFailOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	testCases := []struct {
		name     string
		fail     bool
		wantCode any
	}{
		{"passes response on", false, http.StatusNotFound},
		{"fails", true, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := testutil.NewCollector("out")
			req := newRequest(t, map[string]any{"fail_on_status": tc.fail})
			res := run(t, testutil.NewSource("src", srv.URL), req, out)

			if tc.fail {
				require.Equal(t, executor.StatusFailed, res.Status)
				assert.Contains(t, res.Message, "flow.req: GET")
				assert.Contains(t, res.Message, "404 Not Found")
				assert.Empty(t, out.Got())
				return
			}
			require.NoError(t, res.Error())
			resp, _ := token.AsContainer(out.Got()[0])
			assert.Equal(t, tc.wantCode, resp["status_code"])
		})
	}
}

func TestRequestRejectsBadHeaders(t *testing.T) {
	r := httpmod.NewRequest()
	err := r.Configure(options.MustFromMap(map[string]any{"headers": "nope"}))
	assert.ErrorContains(t, err, `option "headers"`)
}

func TestRequestAcceptsAnythingWithFixedURL(t *testing.T) {
	assert.Equal(t, []token.Kind{token.KindString}, httpmod.NewRequest().Accepts())
	assert.Equal(t, []token.Kind{token.KindUnknown}, newRequest(t, map[string]any{"url": "http://x"}).Accepts())
}
