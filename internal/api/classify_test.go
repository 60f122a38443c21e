package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyMalformed(t *testing.T) {
	require.Equal(t, Malformed, Classify(500, nil, "data").Kind)
	require.Equal(t, Malformed, Classify(502, []byte("<html>bad gateway</html>"), "data").Kind)
}

func TestClassifyErrorEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{
			name: "not authenticated",
			body: `{"status":"error","data":{"message":"Not permitted: not authenticated"}}`,
			want: AuthExpired,
		},
		{
			name: "rate limited",
			body: `{"status":"error","data":{"message":"Not permitted: rate limit exceeded"}}`,
			want: RateLimited,
		},
		{
			name: "datastore miss",
			body: `{"status":"error","data":{"message":"Could not load data from datastore"}}`,
			want: NotFound,
		},
		{
			name: "top-level message",
			body: `{"status":"error","message":"user not authenticated"}`,
			want: AuthExpired,
		},
		{
			name: "unknown error",
			body: `{"status":"error","data":{"message":"something else"}}`,
			want: NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(200, []byte(tt.body), "data").Kind)
		})
	}
}

func TestClassifySuccess(t *testing.T) {
	body := []byte(`{"status":"success","data":{"lifetime":{"mode":{"br_all":{"properties":{"kills":50}}}}}}`)

	out := Classify(200, body, "data.lifetime.mode.br_all")
	require.Equal(t, Success, out.Kind)
	require.Equal(t, int64(50), out.Body.Get("data.lifetime.mode.br_all.properties.kills").Int())
}

func TestClassifySuccessWithoutExpectedPayload(t *testing.T) {
	body := []byte(`{"status":"success","data":{"lifetime":{"mode":{}}}}`)
	require.Equal(t, NotFound, Classify(200, body, "data.lifetime.mode.br_all").Kind)
}

func TestClassifyHTTPStatusOnly(t *testing.T) {
	require.Equal(t, AuthExpired, Classify(401, []byte(`{}`), "data").Kind)
	require.Equal(t, AuthExpired, Classify(403, []byte(`{}`), "data").Kind)
	require.Equal(t, RateLimited, Classify(429, []byte(`{}`), "data").Kind)
	require.Equal(t, NotFound, Classify(404, []byte(`{}`), "data").Kind)
}
