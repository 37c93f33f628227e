package utils

import (
	"log"
	"strings"
)

// LogEvent prints one line per event. module groups related actions
// (booking, notify, auth); message must not carry payload data such as
// document paths or citizen details.
func LogEvent(requestID, module, action, message string) {
	if requestID == "" {
		requestID = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, requestID, message)
}
