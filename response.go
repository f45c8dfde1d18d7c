package revalidate

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNoResponse is the transport failure of an outcome carrying neither a response nor an error.
var ErrNoResponse = errors.New("revalidate: no response")

// Source tells which attempt produced a response.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Response is a completed HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Set by the coordinator before delivery.
	Source Source
}

// from returns a copy of the response attributed to the given source.
func (r *Response) from(source Source) *Response {
	res := *r
	res.Source = source
	return &res
}

// Outcome is the result of a single fetch: either a response or a transport failure.
type Outcome struct {
	Response *Response
	Err      error
}

// NewOutcome converts the return values of an HTTP round trip into an Outcome.
// The response body is read and closed. Failing to read it is a transport failure.
func NewOutcome(res *http.Response, err error) Outcome {
	if err != nil {
		if res != nil && res.Body != nil {
			res.Body.Close()
		}
		return Outcome{Err: err}
	}
	if res == nil {
		return Outcome{Err: ErrNoResponse}
	}
	var body []byte
	if res.Body != nil {
		defer res.Body.Close()
		body, err = io.ReadAll(res.Body)
		if err != nil {
			return Outcome{Err: fmt.Errorf("revalidate: reading body: %w", err)}
		}
	}
	return Outcome{
		Response: &Response{
			StatusCode: res.StatusCode,
			Header:     res.Header,
			Body:       body,
		},
	}
}

// normalize makes sure exactly one of the outcome fields is set.
func normalize(o Outcome) Outcome {
	if o.Err != nil {
		return Outcome{Err: o.Err}
	}
	if o.Response == nil {
		return Outcome{Err: ErrNoResponse}
	}
	return o
}
