package models

// MStreamMessage is pushed to websocket subscribers.
type MStreamMessage struct {
	Type   string          `json:"type"` // "snapshot" or "error"
	Ticker string          `json:"ticker"`
	Data   *MPriceSnapshot `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// MStreamCommand is a client message; "subscribe" switches the ticker.
type MStreamCommand struct {
	Command string `json:"command"`
	Ticker  string `json:"ticker"`
}
