// Package channel is the transport abstraction each registered agent listens
// on, decoupling the orchestrator from agent implementations. Send produces a
// lazy single-shot Future that resolves to the RESPONSE or ERROR envelope for
// the request, or fails with a timeout.
//
// Two transports are provided: Local delivers in-process to core.Agent
// endpoints, NATS delivers over a message broker. Both guarantee at-most-once
// delivery per envelope; retries are the caller's responsibility and are
// implemented by Caller, which adds the timeout/retry/status-marking policy
// on top of a raw channel.
package channel
