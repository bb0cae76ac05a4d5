// Package flash defines one-shot notification messages carried across a redirect.
package flash

import (
	"encoding/json"
	"errors"
)

// SessionKey is the session value holding the encoded message.
const SessionKey = "flash"

// Kind selects the message styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

var ErrDecode = errors.New("flash: malformed message")

// Message is a single notification.
type Message struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Success(msg string) Message { return Message{Kind: KindSuccess, Message: msg} }
func Error(msg string) Message   { return Message{Kind: KindError, Message: msg} }
func Warning(msg string) Message { return Message{Kind: KindWarning, Message: msg} }

// Class returns the CSS classes used to render the message.
func (m Message) Class() string {
	return "flash-message flash-message-" + string(m.Kind)
}

// Encode serializes m for session storage.
func Encode(m Message) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a value produced by Encode.
func Decode(s string) (Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return Message{}, errors.Join(ErrDecode, err)
	}
	if m.Kind == "" {
		return Message{}, ErrDecode
	}
	return m, nil
}
