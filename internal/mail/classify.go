// Package mail converts inbound mailbox messages into tickets.
package mail

import (
	"strings"

	"github.com/deskhive/deskhive/internal/models"
)

// automationMarkers is the denylist of substrings that mark a message as
// automated rather than human support mail. Matched case-insensitively
// against sender, subject and body.
var automationMarkers = []string{
	"noreply",
	"no-reply",
	"donotreply",
	"automated",
	"notification",
	"mailer-daemon",
	"postmaster",
	"delivery-status",
	"bounced",
	"unsubscribe",
	"newsletter",
	"marketing",
}

// IsTicketEmail reports whether a message should become a ticket.
//
// The policy is inclusive by default: a support inbox should convert unknown
// mail into tickets rather than silently drop it, so only messages carrying
// an automation marker are rejected.
func IsTicketEmail(from, subject, body string) bool {
	haystacks := []string{
		strings.ToLower(from),
		strings.ToLower(subject),
		strings.ToLower(body),
	}
	for _, marker := range automationMarkers {
		for _, h := range haystacks {
			if strings.Contains(h, marker) {
				return false
			}
		}
	}
	return true
}

type keywordRule struct {
	keywords []string
	value    string
}

// Category rules, checked in order; first match wins.
var categoryRules = []keywordRule{
	{[]string{"password", "login", "access"}, "account"},
	{[]string{"payment", "billing", "invoice"}, "billing"},
	{[]string{"bug", "error", "issue", "problem"}, "technical"},
	{[]string{"feature", "request", "enhancement"}, "feature-request"},
	{[]string{"help", "how to", "tutorial"}, "support"},
	{[]string{"urgent", "emergency"}, "urgent"},
}

// DeriveCategory scans subject+body for the first matching category rule.
func DeriveCategory(subject, body string) string {
	text := strings.ToLower(subject + " " + body)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.value
			}
		}
	}
	return "general"
}

// Priority rules, independent of category; first match wins.
var priorityRules = []struct {
	keywords []string
	value    models.TicketPriority
}{
	{[]string{"critical", "down", "emergency", "system down"}, models.PriorityCritical},
	{[]string{"urgent", "asap", "!!!"}, models.PriorityHigh},
	{[]string{"low priority", "no rush"}, models.PriorityLow},
}

// DerivePriority scans subject+body for the first matching priority rule.
func DerivePriority(subject, body string) models.TicketPriority {
	text := strings.ToLower(subject + " " + body)
	for _, rule := range priorityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.value
			}
		}
	}
	return models.PriorityMedium
}
