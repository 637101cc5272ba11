// Package server exposes claimdesk search over HTTP.
//
// Routes:
//   - GET /api/search?q=...   one-shot search, the outcome as JSON
//   - GET /ws                 live search-as-you-type over a websocket
//   - GET /healthz            liveness probe
//
// One-shot searches always answer 200; a failed search is reported in the
// body's status and error fields.
//
// Each websocket connection gets its own session id and session.Controller.
// Clients send frames of the form
//
//	{"type":"query","query":"steel"}
//	{"type":"hide"}
//	{"type":"show"}
//
// and receive a "snapshot" frame for every controller transition. Query
// frames are rate limited per connection; frames over the limit wait.
package server
