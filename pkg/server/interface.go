/*
Package server implements msgpack IPC for ranked word completion.

The server reads a stream of msgpack encoded requests from its input
(stdin in production) and writes one msgpack response per request to its
output (stdout). Requests are handled synchronously, in order, against a
single suggest.Completer, so the index is never mutated concurrently.

# IPC

Every request carries an ID that is echoed in the response, and an action.
An empty action means "complete":

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with the index's suggestion first, then the remaining
completions by priority:

	{"id": "req_001", "s": [{"w": "america", "r": 1, "p": 7}, {"w": "amenity", "r": 2, "p": 3}], "c": 2, "t": 145}

t is the time spent in microseconds. Other actions:

	{"id": "2", "action": "suggest", "p": "ame"}   -> {"id": "2", "w": "america", "p": 7, "ok": true}
	{"id": "3", "action": "confirm", "w": "amenity"} -> {"id": "3", "status": "ok", "w": "amenity", "p": 4}
	{"id": "4", "action": "insert", "w": "amend"}    -> {"id": "4", "status": "inserted", "w": "amend", "p": 0}
	{"id": "5", "action": "stats"}                   -> {"id": "5", "stats": {"nodes": 1024, ...}}

Failures are reported as CompletionError with an HTTP-like code: 400 for
malformed requests, 404 for confirming an unknown word.

# Config

Server limits come from the [server] section of the config file, which is
watched and reloaded while the server runs. The ranking policy is fixed when
the index is built and is not affected by reloads.
*/
package server

// Request actions.
const (
	ActionComplete = "complete"
	ActionSuggest  = "suggest"
	ActionConfirm  = "confirm"
	ActionInsert   = "insert"
	ActionStats    = "stats"
)

// Request is the single request envelope for every action.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Word   string `msgpack:"w,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word     string `msgpack:"w"`
	Rank     uint16 `msgpack:"r"`
	Priority uint64 `msgpack:"p"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// SuggestResponse carries the single best completion of a prefix.
type SuggestResponse struct {
	ID       string `msgpack:"id"`
	Word     string `msgpack:"w"`
	Priority uint64 `msgpack:"p"`
	OK       bool   `msgpack:"ok"`
}

// ConfirmResponse reports the state of a confirmed or inserted word.
type ConfirmResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Word     string `msgpack:"w"`
	Priority uint64 `msgpack:"p"`
}

// StatsResponse carries index counters.
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Stats map[string]int `msgpack:"stats"`
}

// CompletionError holds basic error information for any request
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
