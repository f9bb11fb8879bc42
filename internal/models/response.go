package models

// ErrorResponse is the body of every failed API call. Details stay in the
// server log.
type ErrorResponse struct {
	Error string `json:"error"`
}

type SaveResponse struct {
	Success bool `json:"success"`
}
