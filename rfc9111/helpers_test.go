package rfc9111

import (
	"net/http"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// freezeClock pins the cache clock for the duration of the test.
func freezeClock(t *testing.T) {
	t.Helper()
	now = func() time.Time { return testNow }
	t.Cleanup(func() { now = time.Now })
}

func getRequest(headers ...string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/resource", nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Add(headers[i], headers[i+1])
	}
	return req
}

// storedResponse returns a response received age ago, carrying the given header pairs.
func storedResponse(age time.Duration, headers ...string) *http.Response {
	res := &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Request:    getRequest(),
	}
	res.Header.Set("Date", ToHttpDate(testNow.Add(-age)))
	for i := 0; i+1 < len(headers); i += 2 {
		res.Header.Add(headers[i], headers[i+1])
	}
	return res
}
