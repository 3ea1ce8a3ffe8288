// Package influxdb records entity and cover history in InfluxDB v2.
//
// It is optional: Connect returns ErrDisabled when influxdb.enabled is
// false, and callers simply skip wiring the recorder.
//
// Measurements:
//
//	number_state    tags entry_id, key, unique_id   field value
//	cover_position  tags entry_id                   fields position, sun_azimuth,
//	                                                sun_elevation, distance, sun_in_window
//
// Writes are non-blocking and batched by the client library; write errors
// are delivered to the SetOnError callback.
package influxdb
