package rfc9111

import (
	"net/http"
	"testing"
)

func TestGetInvalidateURIs(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "http://example.com/items", nil)
	res := &http.Response{StatusCode: http.StatusCreated, Header: make(http.Header)}
	res.Header.Set("Location", "/items/1")
	res.Header.Set("Content-Location", "http://other.example.com/items/1")

	uris := GetInvalidateURIs(req, res)
	if len(uris) != 2 {
		t.Fatalf("Invalidate URIs are %v", uris)
	}
	if uris[0].String() != "http://example.com/items" || uris[1].String() != "http://example.com/items/1" {
		t.Fatalf("Invalidate URIs are %v", uris)
	}
}

func TestGetInvalidateURIsErrorResponse(t *testing.T) {
	req, _ := http.NewRequest(http.MethodDelete, "http://example.com/items/1", nil)
	res := &http.Response{StatusCode: http.StatusInternalServerError, Header: make(http.Header)}
	if uris := GetInvalidateURIs(req, res); len(uris) != 0 {
		t.Fatalf("Invalidate URIs are %v", uris)
	}
}

func TestGetInvalidateURIsSafeRequest(t *testing.T) {
	res := &http.Response{StatusCode: http.StatusOK, Header: make(http.Header)}
	if uris := GetInvalidateURIs(getRequest(), res); len(uris) != 0 {
		t.Fatalf("Invalidate URIs are %v", uris)
	}
}
