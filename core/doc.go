// Package core contains the shared protocol types of SalesMesh: the message
// Envelope exchanged between agents, the Agent contract every sub-agent
// implements, per-conversation state with its workflow stage machine, the
// activity trace returned to callers, the error taxonomy, and the interfaces
// of the external collaborators (language model, retrieval, persistence).
//
// Everything else in the repository depends on this package; it depends on
// nothing but the standard library and uuid generation.
package core
