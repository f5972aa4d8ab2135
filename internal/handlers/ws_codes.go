// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided auth token was invalid or expired.
	SessionReplacedError  = 3002 // The player connected again from another client.
)
