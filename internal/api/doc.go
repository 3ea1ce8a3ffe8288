// Package api provides the HTTP REST API and WebSocket server.
//
// Routes live under /api/v1:
//
//	GET  /health                   liveness plus dependency checks
//	GET  /entities                 all number entity states
//	GET  /entities/{id}            one entity state
//	PUT  /entities/{id}/value      set a value: {"value": 0.8}
//	GET  /entries/{id}/cover       latest coordinator data of an entry
//	GET  /ws                       WebSocket event stream
//	GET  /audit                    value change log (admin, when wired)
//
// When security.jwt.secret is set every route except /health requires a
// bearer token (or ?token= for /ws) issued by package auth.
//
// Lifecycle:
//
//	server, err := api.New(deps)
//	platform.AddListener(server.Hub())
//	server.Start(ctx)
//	defer server.Close()
package api
