package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Conversation is a stored chat record. Only "id" is interpreted; every other
// field is kept as raw JSON so a saved payload comes back unchanged.
type Conversation map[string]json.RawMessage

var ErrNotObject = errors.New("conversation must be a JSON object")

// ParseConversation decodes data, which must be a single JSON object.
func ParseConversation(data []byte) (Conversation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var c Conversation
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = Conversation{}
	}
	return c, nil
}

// FileStem returns the filename stem stored under id, rendered the way
// string interpolation renders the value in the browser: strings verbatim,
// numbers in shortest form, arrays comma-joined, objects as
// "[object Object]" and a missing id as "undefined".
func (c Conversation) FileStem() string {
	raw, ok := c["id"]
	if !ok {
		return "undefined"
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return stringify(v, true)
}

// stringify follows JS String(); inside arrays null becomes "".
func stringify(v any, top bool) string {
	switch x := v.(type) {
	case nil:
		if top {
			return "null"
		}
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return formatNumber(x)
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			parts[i] = stringify(el, false)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func formatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	if err != nil {
		return n.String()
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		// 1e-07 → 1e-7, 1e+21 stays.
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Messages decodes the "messages" field. A missing field yields no messages.
func (c Conversation) Messages() ([]Message, error) {
	raw, ok := c["messages"]
	if !ok {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarshalPretty renders the conversation with two-space indentation.
func (c Conversation) MarshalPretty() ([]byte, error) {
	if c == nil {
		c = Conversation{}
	}
	return json.MarshalIndent(c, "", "  ")
}

const EventConversationSaved = "conversation_saved"

// ConversationEvent is pushed to WebSocket clients when the store changes.
type ConversationEvent struct {
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`
}
