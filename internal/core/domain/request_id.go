package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRequestID renders the human-facing request id, e.g. "TST-12".
func FormatRequestID(projectCode string, n int64) string {
	return projectCode + "-" + strconv.FormatInt(n, 10)
}

// ParseRequestID splits a request id into project code and sequence number.
// Codes may themselves contain dashes; the number is taken after the last one.
func ParseRequestID(requestID string) (string, int64, error) {
	i := strings.LastIndex(requestID, "-")
	if i <= 0 || i == len(requestID)-1 {
		return "", 0, fmt.Errorf("malformed request id %q", requestID)
	}
	code, num := requestID[:i], requestID[i+1:]
	if num[0] == '0' {
		return "", 0, fmt.Errorf("malformed request id %q: leading zero", requestID)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("malformed request id %q", requestID)
	}
	return code, n, nil
}
