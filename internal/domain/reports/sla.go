package reports

import (
	"strings"
	"time"
)

// SLATarget is the response and resolution target of a priority, in hours.
type SLATarget struct {
	ResponseHours   float64 `json:"responseHours"`
	ResolutionHours float64 `json:"resolutionHours"`
}

var slaTargets = map[string]SLATarget{
	"critical": {ResponseHours: 4, ResolutionHours: 24},
	"high":     {ResponseHours: 8, ResolutionHours: 48},
	"medium":   {ResponseHours: 24, ResolutionHours: 72},
	"low":      {ResponseHours: 48, ResolutionHours: 120},
}

// TargetFor returns the SLA target of priority. Unknown priorities get the medium target.
func TargetFor(priority string) SLATarget {
	p := strings.ToLower(strings.TrimSpace(priority))
	switch p {
	case "p1", "urgent":
		p = "critical"
	case "p2":
		p = "high"
	case "p3", "normal":
		p = "medium"
	case "p4":
		p = "low"
	}
	if t, ok := slaTargets[p]; ok {
		return t
	}
	return slaTargets["medium"]
}

// SLAResult is the measured outcome of a ticket.
type SLAResult struct {
	ResponseHours   any // float64 or nil when the ticket has no report time
	ResolutionHours any
	Target          SLATarget
	ResponseMet     bool
	Breached        bool
}

// EvaluateSLA measures a ticket. Open tickets are measured at now.
func EvaluateSLA(priority string, reported, responded, resolved any, now time.Time) SLAResult {
	res := SLAResult{
		Target:          TargetFor(priority),
		ResponseHours:   hoursBetween(reported, responded, now),
		ResolutionHours: hoursBetween(reported, resolved, now),
	}

	if h, ok := res.ResponseHours.(float64); ok {
		res.ResponseMet = h <= res.Target.ResponseHours
	}
	if h, ok := res.ResolutionHours.(float64); ok {
		res.Breached = h > res.Target.ResolutionHours
	}
	return res
}
