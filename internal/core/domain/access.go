package domain

import "time"

// AccessLog records one validation attempt against a pass, success or
// failure. One row per attempt, keyed to the pass it resolved to.
type AccessLog struct {
	ID          string    `json:"id"`
	PassID      string    `json:"pass_id"`
	SessionKey  string    `json:"session_key"`
	HTTPMethod  string    `json:"http_method"`
	RequestURI  string    `json:"request_uri"`
	QueryString string    `json:"query_string"`
	UserAgent   string    `json:"user_agent"`
	Referer     string    `json:"referer"`
	RemoteAddr  string    `json:"remote_addr"`
	StatusCode  int       `json:"status_code"`
	CreatedAt   time.Time `json:"created_at"`
}
