// Package coordinator owns the shared state of one cover entry and its
// refresh cycle.
//
// A Coordinator holds the distance override written by the number entity,
// recomputes the cover position on Refresh and pushes the new Data to its
// listeners (MQTT, InfluxDB, WebSocket). Refreshes are serialised per
// coordinator; reads never block on a running refresh.
//
// Usage:
//
//	c := coordinator.New(entry, site, coordinator.WithLogger(log))
//	c.AddListener(func(d coordinator.Data) { publish(d) })
//	c.SetDistanceOverride(0.8)
//	if err := c.Refresh(ctx); err != nil {
//	    return err
//	}
//	go c.Run(ctx, 2*time.Minute)
package coordinator
