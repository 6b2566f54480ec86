// Package entity defines the response shapes of the console's JSON replies.
package entity

// Msg is the reply to an XHR form submission.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}
