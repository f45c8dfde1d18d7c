package rfc9111

import (
	"net/http"
	"time"
)

// §  4.2.3.  Calculating Age
// §
// §     The following data is used for the age calculation:
// §
// §     age_value
// §        The term "age_value" denotes the value of the Age header field
// §        (Section 5.1), in a form appropriate for arithmetic operation; or
// §        0, if not available.
func age_value(res *http.Response) time.Duration {
	if age, present := getAge(res); present {
		return age
	}
	return 0
}

// §     date_value
// §        The term "date_value" denotes the value of the Date header field,
// §        in a form appropriate for arithmetic operations.
//
// Responses are stored with a Date, the zero time is only returned for broken entries.
func date_value(res *http.Response) time.Time {
	if dateHeader := res.Header.Get("Date"); dateHeader != "" {
		if date, err := HttpDate(dateHeader); err == nil {
			return date
		}
	}
	return time.Time{}
}

// §     now
// §        The term "now" means the current value of this implementation's
// §        clock (Section 5.6.7 of [HTTP]).
var now = time.Now

// §        apparent_age = max(0, response_time - date_value);
func apparent_age(res *http.Response, responseTime time.Time) time.Duration {
	return durationMax(0, responseTime.Sub(date_value(res)))
}

// §        response_delay = response_time - request_time;
func response_delay(requestTime, responseTime time.Time) time.Duration {
	return durationMax(0, responseTime.Sub(requestTime))
}

// §        corrected_age_value = age_value + response_delay;
func corrected_age_value(res *http.Response, requestTime, responseTime time.Time) time.Duration {
	return age_value(res) + response_delay(requestTime, responseTime)
}

// §        corrected_initial_age = max(apparent_age, corrected_age_value);
func correctedInitialAge(res *http.Response, requestTime, responseTime time.Time) time.Duration {
	return durationMax(apparent_age(res, responseTime), corrected_age_value(res, requestTime, responseTime))
}

// §        resident_time = now - response_time;
func resident_time(responseTime time.Time) time.Duration {
	return now().Sub(responseTime)
}

// §        current_age = corrected_initial_age + resident_time;
func currentAge(res *http.Response, requestTime, responseTime time.Time) time.Duration {
	return correctedInitialAge(res, requestTime, responseTime) + resident_time(responseTime)
}

func durationMax(d1, d2 time.Duration) time.Duration {
	if d1 > d2 {
		return d1
	}
	return d2
}
