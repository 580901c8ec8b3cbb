package qrcode

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/zombor/paydesk/internal/agent"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// AgentURL builds the customer onboarding link encoded into an agent's QR code:
//
//	<origin>/empty/agents/<id>/add-customer?agentId=<id>&agentName=<name>&agentLocation=<location>
func AgentURL(origin string, a *agent.Agent) string {
	return fmt.Sprintf("%s/empty/agents/%s/add-customer?agentId=%s&agentName=%s&agentLocation=%s",
		strings.TrimSuffix(origin, "/"),
		url.PathEscape(a.ID),
		percentEncode(a.ID),
		percentEncode(a.Name),
		percentEncode(a.Location),
	)
}

// percentEncode escapes a query value, spaces included, as %XX sequences
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Filename is the download name of an agent's QR code. Whitespace runs in the name
// collapse to a single hyphen; the ID is embedded as is.
func Filename(a *agent.Agent) string {
	return fmt.Sprintf("agent-%s-%s-qrcode.png", a.ID, whitespaceRun.ReplaceAllString(a.Name, "-"))
}
