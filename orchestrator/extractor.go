package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/salesmesh/core"
)

// Fact extraction runs on every turn, so the patterns stay deliberately
// narrow: a fact is only merged when the message states it explicitly, and
// facts already known are never overwritten by the conversation context.

var (
	// introPattern covers self-introductions that carry both facts at once,
	// e.g. "I'm Jane from Acme Corp".
	introPattern    = regexp.MustCompile(`(?i)\b(?:i'm|i am)\s+([A-Z][\w.\- ]{1,40}?)\s+(?:from|at|with)\s+([A-Z][\w&.\- ]{1,40}?)(?:\s+(?:and|with|located|based)\b|[,.!?]|$)`)
	companyPattern  = regexp.MustCompile(`(?i)(?:we are|this is|calling from|i'm from|i am from)\s+([A-Z][\w&.\- ]{1,40}?)(?:\s+(?:and|with|located|based)\b|[,.!?]|$)`)
	contactPattern  = regexp.MustCompile(`(?i)my name is\s+([A-Z][\w.\- ]{1,40}?)(?:\s+(?:and|from)\b|[,.!?]|$)`)
	employeePattern = regexp.MustCompile(`(?i)(\d+)\s+employees`)
	addressPattern  = regexp.MustCompile(`(?i)(?:at|address is|located at)\s+([\w.\- ]+(?:,\s*[\w.\- ]+)*\b\d{5}\b)`)
)

// interestKeywords signal interest in a connectivity product.
var interestKeywords = []string{"internet", "fiber", "voice", "wifi", "bandwidth", "connectivity"}

// extractFacts pulls business facts out of one user message.
func extractFacts(message string) core.ProspectContext {
	var pc core.ProspectContext

	if m := introPattern.FindStringSubmatch(message); m != nil {
		pc.ContactName = strings.TrimSpace(m[1])
		pc.CompanyName = strings.TrimSpace(m[2])
	}
	if pc.CompanyName == "" {
		if m := companyPattern.FindStringSubmatch(message); m != nil {
			pc.CompanyName = strings.TrimSpace(m[1])
		}
	}
	if pc.ContactName == "" {
		if m := contactPattern.FindStringSubmatch(message); m != nil {
			pc.ContactName = strings.TrimSpace(m[1])
		}
	}
	if m := employeePattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			pc.EmployeeCount = n
		}
	}
	if m := addressPattern.FindStringSubmatch(message); m != nil {
		pc.Address = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(message)
	for _, kw := range interestKeywords {
		if strings.Contains(lower, kw) {
			pc.ServiceInterest = true
			break
		}
	}
	return pc
}

// extractProducts finds catalog product names mentioned in the message.
func extractProducts(message string, catalog []string) []string {
	lower := strings.ToLower(message)
	var out []string
	for _, p := range catalog {
		if strings.Contains(lower, strings.ToLower(p)) {
			out = append(out, p)
		}
	}
	return out
}
