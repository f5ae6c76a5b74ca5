// Package agents contains the sales-domain sub-agents. Each agent satisfies
// core.Agent and owns exactly one capability slice of the B2B sales journey:
// prospect qualification, lead scoring, serviceability, offers, orders,
// fulfillment, service activation and policy lookups.
//
// Agents communicate only via envelopes. The order agent sub-orchestrates
// its serviceability and fulfillment steps through a channel.Caller, so the
// same timeout, retry and cycle rules apply on every level of the call tree.
package agents
