package serializer

import (
	"bufio"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestResponseToBytesBodyIntact(t *testing.T) {
	response := "HTTP/1.1 200 OK\r\nServer: Test\r\nContent-Length: 16\r\n\r\nThis is the body"

	res, err := http.ReadResponse(bufio.NewReader(strings.NewReader(response)), nil)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	_, err = responseToBytes(res)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if string(body) != "This is the body" {
		t.Fatalf("Body: %s", body)
	}
}

func TestTimedResponseSerialization(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://example.com/page?q=1", nil)
	req.Header.Set("Accept-Language", "fi")
	res := http.Response{
		StatusCode: 201,
		Header:     map[string][]string{},
		Body:       io.NopCloser(strings.NewReader("stored body")),
		Request:    req,
	}
	res.Header.Add("Test", "-ing")
	// create times now and now + 1s
	reqTime := time.Now()
	resTime := reqTime.Add(time.Second)
	bts, err := StoredResponseToBytes(TimedResponse{
		Response:     &res,
		ResponseTime: resTime,
		RequestTime:  reqTime,
	})
	if err != nil {
		t.Fatalf("Error creating bytes: %+v", err)
	}
	// deserialize
	res2, err := BytesToStoredResponse(bts)
	if err != nil {
		t.Fatalf("Error creating response: %+v", err)
	}
	// check header, times
	if res2.Response.StatusCode != 201 {
		t.Fatalf("Status code is %d", res2.Response.StatusCode)
	}
	if res2.Response.Header.Get("Test") != "-ing" {
		t.Fatalf("Test header wrong %+v", res2.Response.Header)
	}
	if res2.Response.Header.Get(responseTimeHeaderName) != "" || res2.Response.Header.Get(requestTimeHeaderName) != "" {
		t.Fatalf("Wrong amount of headers %+v", res2.Response.Header)
	}
	if res.Header.Get(responseTimeHeaderName) != "" {
		t.Fatalf("Original response headers modified %+v", res.Header)
	}
	if res2.RequestTime.UnixMilli() != reqTime.UnixMilli() || res2.ResponseTime.UnixMilli() != resTime.UnixMilli() {
		t.Fatalf("Times are %v, %v", res2.RequestTime, res2.ResponseTime)
	}
	if body, _ := io.ReadAll(res2.Response.Body); string(body) != "stored body" {
		t.Fatalf("Stored body is %s", body)
	}
	if body, _ := io.ReadAll(res.Body); string(body) != "stored body" {
		t.Fatalf("Original body is %s", body)
	}
	// check request
	storedReq := res2.Response.Request
	if storedReq == nil {
		t.Fatalf("Stored request missing")
	}
	if storedReq.URL.String() != "http://example.com/page?q=1" {
		t.Fatalf("Stored request URL is %s", storedReq.URL)
	}
	if storedReq.Header.Get("Accept-Language") != "fi" {
		t.Fatalf("Stored request headers are %+v", storedReq.Header)
	}
}

func TestResponseWithoutRequest(t *testing.T) {
	res := http.Response{
		StatusCode: 200,
		Header:     map[string][]string{},
	}
	bts, err := StoredResponseToBytes(TimedResponse{Response: &res, RequestTime: time.Now(), ResponseTime: time.Now()})
	if err != nil {
		t.Fatalf("Error creating bytes: %+v", err)
	}
	res2, err := BytesToStoredResponse(bts)
	if err != nil {
		t.Fatalf("Error creating response: %+v", err)
	}
	if res2.Response.Request != nil {
		t.Fatalf("Request is %+v", res2.Response.Request)
	}
}

func TestMalformedBytes(t *testing.T) {
	if _, err := BytesToStoredResponse([]byte("garbage")); err == nil {
		t.Fatalf("Expected error")
	}
}
