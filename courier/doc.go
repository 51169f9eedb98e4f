// Package courier implements the routing slip saga pattern for
// distributed transactions.
//
// A workflow is described as an itinerary of activities and travels as a
// routing slip: each hop, an independently deployed host executes the next
// activity, appends a compensation log entry, and forwards the slip to the
// following activity's address. When an activity faults, the slip walks
// its activity log backward, compensating completed work in reverse order.
// There is no central coordinator; the slip itself is the authoritative
// state and ownership transfers with message delivery.
//
// Lifecycle transitions are published as typed events, fanned out to the
// slip's subscriptions with per-subscription content redaction, plus a
// default broadcast when no exclusive subscriber is configured.
//
// The engine depends only on the narrow Send/Publish primitives in the
// transport package and assumes at-least-once delivery; redelivered hops
// are deduplicated by execution id through the dedup package.
package courier
