package rfc9111

import (
	"net/http"
	"testing"
	"time"
)

func TestDeltaSecondsParam(t *testing.T) {
	res := &http.Response{
		Header: make(http.Header),
	}
	res.Header.Add("Age", "7200;foo=bar")
	if age, ok := getAge(res); !ok || age != time.Second*7200 {
		t.Fatalf("Age is %v", age)
	}
}

func TestAgeList(t *testing.T) {
	res := &http.Response{
		Header: make(http.Header),
	}
	res.Header.Add("Age", "30, 60")
	if age, ok := getAge(res); !ok || age != time.Second*30 {
		t.Fatalf("Age is %v", age)
	}
}

func TestAgeInvalid(t *testing.T) {
	res := &http.Response{
		Header: make(http.Header),
	}
	res.Header.Add("Age", "-1")
	if _, ok := getAge(res); ok {
		t.Fatalf("Invalid age accepted")
	}
}
