package ratelimit

import (
	"fmt"
	"strings"
)

// Actions throttled per client.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

// KeyForClient builds a limiter key for an action attempted by a client IP.
func KeyForClient(action, clientIP string) string {
	action = strings.TrimSpace(action)
	clientIP = strings.TrimSpace(clientIP)
	if action == "" || clientIP == "" {
		return ""
	}
	return fmt.Sprintf("a:%s:ip:%s", action, clientIP)
}
