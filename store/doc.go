// Package store contains concrete ConversationStore implementations. The
// store interface and Conversation type reside in the core package. Import
// github.com/hupe1980/salesmesh/core and depend on core.ConversationStore in
// your code; select an implementation at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (Redis, document stores, etc.) to be added without introducing
// dependency cycles.
package store
