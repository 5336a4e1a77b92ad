package api

import "time"

// Result is the uniform envelope every service operation returns. Failures
// are reported inside the envelope; no error escapes the service surface.
type Result struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message,omitempty"`
	Error     string  `json:"error,omitempty"`
	Data      any     `json:"data,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

func ok(message string, data any) Result {
	return Result{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: nowSeconds(),
	}
}

func fail(err error) Result {
	return Result{
		Success:   false,
		Error:     err.Error(),
		Timestamp: nowSeconds(),
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
