package scryfall

import "encoding/json"

// Envelope is the list wrapper returned by the Scryfall API.
type Envelope struct {
	Data    []json.RawMessage `json:"data"`
	HasMore bool              `json:"has_more"`
}

// APIError is the error object Scryfall returns with non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}
