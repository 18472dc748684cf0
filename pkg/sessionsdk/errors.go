package sessionsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response decoded into a typed error. Status carries
// the HTTP status code and Detail the server's detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// IsUnauthorized reports whether the error is a 401 APIError.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Detail == "" {
		return &APIError{Status: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	}
	return &APIError{Status: resp.StatusCode, Detail: er.Detail}
}
