package revalidate

// ResultSink receives the results of a coordinated request.
//
// OnResult is called zero, one or two times: first with the cached response,
// then with the network response, whichever of them is successful.
// OnFailure is called at most once, only when no result has been delivered
// and the network attempt failed at the transport level.
// The calls for the network attempt happen on the fetcher's goroutine.
type ResultSink interface {
	OnResult(res *Response)
	OnFailure(err error)
}

// SinkFuncs adapts plain functions to a ResultSink. Nil functions are ignored.
type SinkFuncs struct {
	Result  func(res *Response)
	Failure func(err error)
}

func (s SinkFuncs) OnResult(res *Response) {
	if s.Result != nil {
		s.Result(res)
	}
}

func (s SinkFuncs) OnFailure(err error) {
	if s.Failure != nil {
		s.Failure(err)
	}
}

// Result is a single delivery on the channel returned by Coordinator.Results.
// Exactly one of the fields is set.
type Result struct {
	Response *Response
	Err      error
}
