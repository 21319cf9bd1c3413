package middlewares

import (
	"regexp"

	"matchbox.io/application/interfaces"
	"matchbox.io/application/utils"
	"matchbox.io/infrastructure/useragent"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// RequestContextMiddleware tags the request with an id and the parsed user
// agent. Telegram webviews sometimes send no user agent so it never rejects.
func RequestContextMiddleware(ctx *interfaces.ApplicationContext[any]) (*interfaces.ApplicationContext[any], bool) {
	requestID := ctx.GetHeader("X-Request-Id")
	if requestID != nil && requestIDPattern.MatchString(*requestID) {
		ctx.RequestID = *requestID
	} else {
		ctx.RequestID = utils.GenerateUULDString()
	}
	agent := ctx.GetHeader("User-Agent")
	if agent != nil && *agent != "" {
		agentDetails := useragent.ParseUserAgent(*agent)
		ctx.UserAgent = *agent
		ctx.DeviceName = agentDetails.Name
		if agentDetails.OS != "" {
			ctx.DeviceName = agentDetails.Name + " on " + agentDetails.OS
		}
	}
	return ctx, true
}
