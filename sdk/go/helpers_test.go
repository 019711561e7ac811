package launchsdk_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	launchsdk "launchline/sdk/go"
)

const testRoot = "http://ll.test/1.4"

// fakeFetcher serves canned documents by URL and counts every call.
type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	calls map[string]int
}

func newFakeFetcher(docs map[string]string) *fakeFetcher {
	return &fakeFetcher{docs: docs, calls: map[string]int{}}
}

func (f *fakeFetcher) FetchJSON(_ context.Context, url string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	doc, ok := f.docs[url]
	if !ok {
		return nil, &launchsdk.TransportError{URL: url, StatusCode: 404, Body: "not found"}
	}
	return json.RawMessage(doc), nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func newTestClient(t *testing.T, f launchsdk.Fetcher, opts ...launchsdk.Option) *launchsdk.Client {
	t.Helper()
	opts = append([]launchsdk.Option{
		launchsdk.WithBaseURL("http://ll.test", "1.4"),
		launchsdk.WithFetcher(f),
	}, opts...)
	c, err := launchsdk.New(opts...)
	require.NoError(t, err)
	return c
}

const (
	statusGo  = `{"types":[{"id":1,"name":"Go","description":"Go for launch"}]}`
	statusTBD = `{"types":[{"id":2,"name":"TBD","description":"To be determined"}]}`
)
