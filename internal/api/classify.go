package api

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the closed set of upstream response classifications.
type Kind int

const (
	Success Kind = iota
	AuthExpired
	RateLimited
	NotFound
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case AuthExpired:
		return "auth_expired"
	case RateLimited:
		return "rate_limited"
	case NotFound:
		return "not_found"
	default:
		return "malformed"
	}
}

// Outcome is a classified upstream response. Body is populated only for
// Success.
type Outcome struct {
	Kind Kind
	Body gjson.Result
}

// Classify maps a raw upstream response onto an Outcome. This is the one
// place that inspects upstream shape: some responses carry a top-level
// status/message envelope, others speak through the HTTP status code alone,
// and the payload expected under a success varies per endpoint (dataPath).
func Classify(statusCode int, body []byte, dataPath string) Outcome {
	if !gjson.ValidBytes(body) {
		return Outcome{Kind: Malformed}
	}

	root := gjson.ParseBytes(body)
	status := root.Get("status")

	switch status.String() {
	case "error":
		// Messages are matched by substring; upstream wording shifts between
		// providers but these fragments have been stable.
		msg := errorMessage(root)
		switch {
		case strings.Contains(msg, "not authenticated"):
			return Outcome{Kind: AuthExpired}
		case strings.Contains(msg, "limit exceeded"):
			return Outcome{Kind: RateLimited}
		default:
			// Includes "Could not load data from datastore".
			return Outcome{Kind: NotFound}
		}
	case "success":
		if dataPath == "" || root.Get(dataPath).Exists() {
			return Outcome{Kind: Success, Body: root}
		}
		return Outcome{Kind: NotFound}
	}

	// Parseable bodies with no status envelope speak through the HTTP code
	// alone. Anything it doesn't cover, including unexpected status values,
	// reads as missing data rather than a hard failure.
	if !status.Exists() {
		switch statusCode {
		case 401, 403:
			return Outcome{Kind: AuthExpired}
		case 429:
			return Outcome{Kind: RateLimited}
		}
	}
	return Outcome{Kind: NotFound}
}

func errorMessage(root gjson.Result) string {
	if m := root.Get("data.message"); m.Exists() {
		return m.String()
	}
	return root.Get("message").String()
}
