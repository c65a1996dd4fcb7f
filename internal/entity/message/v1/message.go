// Package message defines the v1 JSON wire protocol spoken over the duplex
// display and controller sockets. Every frame carries a "type" discriminator.
package message

import (
	"encoding/json"
	"errors"
	"time"
)

// Type is the frame discriminator.
type Type string

// Display -> gateway.
const (
	TypeAnnounce         Type = "announce"
	TypeHeartbeat        Type = "heartbeat"
	TypeReconnect        Type = "reconnect"
	TypeScreenshotUpload Type = "screenshot_upload"
)

// Gateway -> display.
const (
	TypePairingCode       Type = "pairing_code"
	TypePaired            Type = "paired"
	TypeContentUpdate     Type = "content_update"
	TypeScreenshotRequest Type = "screenshot_request"
	TypeSessionClosed     Type = "session_closed"
)

// Controller -> gateway.
const (
	TypeClaimCode         Type = "claim_code"
	TypePushContent       Type = "push_content"
	TypeRequestScreenshot Type = "request_screenshot"
	TypeUnpair            Type = "unpair"
)

// Gateway -> controller.
const (
	TypePairSuccess      Type = "pair_success"
	TypePairFailed       Type = "pair_failed"
	TypeDisplayStatus    Type = "display_status"
	TypeScreenshotResult Type = "screenshot_result"
)

// TypeError is sent to either party on a typed protocol failure.
const TypeError Type = "error"

var ErrMissingType = errors.New("message has no type discriminator")

// Envelope is the minimal frame used to sniff the discriminator before typed
// decoding.
type Envelope struct {
	Type Type `json:"type"`
}

// DecodeType extracts the discriminator from a raw frame.
func DecodeType(data []byte) (Type, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}

	if env.Type == "" {
		return "", ErrMissingType
	}

	return env.Type, nil
}

// Decode unmarshals a raw frame into the given typed message.
func Decode[T any](data []byte) (T, error) {
	var msg T
	err := json.Unmarshal(data, &msg)

	return msg, err
}

// Encode marshals a typed message for the wire.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// DisplayInfo is the self-description a display sends when announcing.
type DisplayInfo struct {
	Name            string `json:"name,omitempty"`
	Model           string `json:"model,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
}

// Announce is the first frame from an unpaired display.
type Announce struct {
	Type    Type        `json:"type"`
	Display DisplayInfo `json:"display_info"`
}

// Heartbeat keeps a display connection alive.
type Heartbeat struct {
	Type Type `json:"type"`
}

// Reconnect resumes a previously paired display using its device token.
type Reconnect struct {
	Type  Type   `json:"type"`
	Token string `json:"token"`
}

// ScreenshotUpload carries the display's answer to a screenshot request.
type ScreenshotUpload struct {
	Type      Type   `json:"type"`
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
}

// PairingCode tells the display which code to show.
type PairingCode struct {
	Type      Type      `json:"type"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Paired confirms a successful claim to the display and delivers its device
// token for future reconnects.
type Paired struct {
	Type                  Type   `json:"type"`
	SessionID             string `json:"session_id"`
	ControllerPrincipalID string `json:"controller_principal_id"`
	Token                 string `json:"token"`
}

// ContentUpdate pushes new content state to the display.
type ContentUpdate struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ScreenshotRequest asks the display to capture and upload its screen.
type ScreenshotRequest struct {
	Type      Type   `json:"type"`
	RequestID string `json:"request_id"`
}

// SessionClosed tells a party its session ended and why.
type SessionClosed struct {
	Type   Type   `json:"type"`
	Reason string `json:"reason"`
}

// ClaimCode submits a pairing code typed in by the controller's user.
type ClaimCode struct {
	Type Type   `json:"type"`
	Code string `json:"code"`
}

// PushContent forwards content state to a bound display.
type PushContent struct {
	Type      Type            `json:"type"`
	DisplayID string          `json:"display_id"`
	Payload   json.RawMessage `json:"payload"`
}

// RequestScreenshot asks the gateway to fetch a screenshot from a display.
type RequestScreenshot struct {
	Type      Type   `json:"type"`
	DisplayID string `json:"display_id"`
}

// Unpair terminates the session with the given display.
type Unpair struct {
	Type      Type   `json:"type"`
	DisplayID string `json:"display_id"`
}

// PairSuccess reports a successful claim to the controller.
type PairSuccess struct {
	Type      Type   `json:"type"`
	DisplayID string `json:"display_id"`
	SessionID string `json:"session_id"`
}

// PairFailed reports a failed claim with the specific error kind.
type PairFailed struct {
	Type   Type   `json:"type"`
	Reason string `json:"reason"`
}

// DisplayStatus notifies the controller of display connectivity changes.
type DisplayStatus struct {
	Type      Type   `json:"type"`
	DisplayID string `json:"display_id"`
	Online    bool   `json:"online"`
}

// ScreenshotResult delivers a completed screenshot to the controller.
type ScreenshotResult struct {
	Type      Type   `json:"type"`
	DisplayID string `json:"display_id"`
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
}

// Error is a typed protocol failure addressed to the originating client.
type Error struct {
	Type    Type   `json:"type"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}
