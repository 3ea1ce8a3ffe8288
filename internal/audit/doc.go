// Package audit records who changed a number entity's value, and from where.
//
// Transports tag the request context with an Actor before calling into the
// entity platform. The Recorder, registered as a state listener, turns every
// state write that carries an Actor into an audit_logs row. Writes without an
// Actor (attach, restore, periodic refresh) are not recorded.
package audit
