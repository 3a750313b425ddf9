package main

import "testing"

func TestParseExpectations(t *testing.T) {
	got, err := parseExpectations([]string{"capital=Paris", "year=1889"})
	if err != nil {
		t.Fatal(err)
	}
	if got["capital"] != "Paris" || got["year"] != "1889" {
		t.Errorf("parsed = %v", got)
	}
}

func TestParseExpectationsEmpty(t *testing.T) {
	got, err := parseExpectations(nil)
	if err != nil || got != nil {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestParseExpectationsKeepsEqualsInValue(t *testing.T) {
	got, err := parseExpectations([]string{"formula=E=mc2"})
	if err != nil {
		t.Fatal(err)
	}
	if got["formula"] != "E=mc2" {
		t.Errorf("value = %q", got["formula"])
	}
}

func TestParseExpectationsRejectsBadPair(t *testing.T) {
	for _, pair := range []string{"noequals", "=value"} {
		if _, err := parseExpectations([]string{pair}); err == nil {
			t.Errorf("%q should be rejected", pair)
		}
	}
}
