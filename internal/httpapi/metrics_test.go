package httpapi

import (
	"net/http/httptest"
	"testing"
)

func TestItoa(t *testing.T) {
	cases := map[int]string{0: "0", 200: "200", 404: "404", 429: "429", 7: "7"}
	for n, want := range cases {
		if got := itoa(n); got != want {
			t.Errorf("itoa(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRoutePatternFallsBackToPath(t *testing.T) {
	r := httptest.NewRequest("GET", "/sessions/s1/progress", nil)
	// No chi route context attached: must fall back to the raw path.
	if got := routePatternOrPath(r); got != "/sessions/s1/progress" {
		t.Fatalf("routePatternOrPath = %q", got)
	}
}
