package xmlship

// StatusTransportFailure is the sentinel status code recorded when no HTTP
// response was received for an attempt (dial failure, timeout, bad URL).
// It is outside the valid HTTP status range, so it never collides with a
// real server response.
const StatusTransportFailure = 0

// DeliveryOutcome describes a single delivery attempt. It is immutable once
// produced; the Body of a transport failure carries the error text.
type DeliveryOutcome struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"status_code"`
	Body       string            `json:"body,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func transportFailure(err error) DeliveryOutcome {
	return DeliveryOutcome{
		StatusCode: StatusTransportFailure,
		Body:       err.Error(),
	}
}
