package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/testutil"
	"github.com/rs/zerolog"
)

func newGet(t *testing.T, target string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	testutil.AssertNoError(t, err, "NewRequest")
	return req
}

func receive(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func TestDispatcher_Submit(t *testing.T) {
	mock := testutil.NewMockHTTPClient("<h1>Shopping Cart Updated</h1>", 200, map[string]string{"Content-Type": "text/html"}, nil)
	d := NewDispatcher(zerolog.Nop(), mock)

	result := receive(t, d.Submit(context.Background(), newGet(t, "http://localhost:8000/grocerylist/update?id=3")))

	testutil.AssertNoError(t, result.Err, "Submit")
	testutil.AssertEqual(t, len(result.RequestID), 10, "request id length")
	testutil.AssertStringEqual(t, result.Response.RequestID, result.RequestID, "response request id")
	testutil.AssertEqual(t, result.Response.StatusCode, 200, "status")
	testutil.AssertStringEqual(t, string(result.Response.Body), "<h1>Shopping Cart Updated</h1>", "body")
	testutil.AssertStringEqual(t, result.Response.URL, "http://localhost:8000/grocerylist/update?id=3", "url")
	testutil.AssertEqual(t, len(mock.Requests), 1, "requests sent")
}

func TestDispatcher_DistinctRequestIDs(t *testing.T) {
	mock := testutil.NewMockHTTPClient("ok", 200, nil, nil)
	d := NewDispatcher(zerolog.Nop(), mock)

	first := d.Submit(context.Background(), newGet(t, "http://localhost:8000/blog"))
	second := d.Submit(context.Background(), newGet(t, "http://localhost:8000/blog"))
	r1, r2 := receive(t, first), receive(t, second)

	if r1.RequestID == r2.RequestID {
		t.Errorf("request ids should differ, both %q", r1.RequestID)
	}
	d.Wait()
}

func TestDispatcher_NetworkError(t *testing.T) {
	mock := testutil.NewMockHTTPClient("", 0, nil, testutil.NewMockError("connection refused"))
	d := NewDispatcher(zerolog.Nop(), mock)

	result := receive(t, d.Submit(context.Background(), newGet(t, "http://localhost:8000/blog")))

	testutil.AssertErrorContains(t, result.Err, "connection refused", "Submit")
	if !errors.IsType(result.Err, errors.ErrorTypeNetwork) {
		t.Errorf("error type = %s, want network", errors.GetType(result.Err))
	}
	if result.Response != nil {
		t.Error("failed request should carry no response")
	}
}

func TestDispatcher_LastRequestWins(t *testing.T) {
	release := make(chan struct{})
	server, started := testutil.NewBlockingTestServer(release)
	defer server.Close()

	d := NewDispatcher(zerolog.Nop(), server.Client())
	ctx := context.Background()

	first := d.Submit(ctx, newGet(t, server.URL+"/blog?title=Pasta"))
	<-started

	second := d.Submit(ctx, newGet(t, server.URL+"/blog?title=Pasta%20Night"))

	r1 := receive(t, first)
	testutil.AssertError(t, r1.Err, "first submission")
	if !errors.IsType(r1.Err, errors.ErrorTypeSuperseded) {
		t.Fatalf("first error type = %s (%v), want superseded", errors.GetType(r1.Err), r1.Err)
	}

	close(release)
	r2 := receive(t, second)
	testutil.AssertNoError(t, r2.Err, "second submission")
	testutil.AssertStringEqual(t, string(r2.Response.Body), "released: title=Pasta%20Night", "second body")

	d.Wait()
}

func TestDispatcher_Cancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	server, started := testutil.NewBlockingTestServer(release)
	defer server.Close()

	d := NewDispatcher(zerolog.Nop(), server.Client())
	results := d.Submit(context.Background(), newGet(t, server.URL+"/blog"))
	<-started

	d.Cancel()
	result := receive(t, results)

	testutil.AssertError(t, result.Err, "cancelled submission")
	if errors.IsType(result.Err, errors.ErrorTypeSuperseded) {
		t.Error("an explicit cancel is not a supersession")
	}
	if !strings.Contains(result.Err.Error(), "canceled") {
		t.Errorf("error = %v, want context cancellation", result.Err)
	}
}
