package geoip

import (
	"errors"
	"testing"
)

func TestNewResolverWithoutPath(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Enabled() {
		t.Fatal("expected disabled resolver")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver(t.TempDir() + "/missing.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountryCodeWithoutDatabase(t *testing.T) {
	var r *Resolver
	cases := []struct {
		ip      string
		want    string
		wantErr error
	}{
		{ip: "127.0.0.1"},
		{ip: "10.1.2.3"},
		{ip: "::ffff:192.168.1.1"},
		{ip: "::1"},
		{ip: "8.8.8.8", wantErr: ErrUnavailable},
	}
	for _, tc := range cases {
		got, err := r.CountryCode(tc.ip)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s: expected %v, got %v", tc.ip, tc.wantErr, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s: got %q, %v", tc.ip, got, err)
		}
	}
	if _, err := r.CountryCode("not-an-ip"); err == nil {
		t.Fatal("expected error for invalid ip")
	}
}
