package network

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageNewSession    MessageType = "newSession"
	MessageSessionState  MessageType = "sessionState"
	MessageHit           MessageType = "hit"
	MessageHitResult     MessageType = "hitResult"
	MessagePutter        MessageType = "putter"
	MessageRoll          MessageType = "roll"
	MessageRollResult    MessageType = "rollResult"
	MessageNextCourse    MessageType = "nextCourse"
	MessageCourseStarted MessageType = "courseStarted"
	MessageError         MessageType = "error"
)

type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type NewSession struct {
	Seed *int64 `json:"seed,omitempty"`
}

// SessionRef addresses an existing session; putter, roll and nextCourse
// requests carry only this.
type SessionRef struct {
	SessionID string `json:"sessionId"`
}

type Hit struct {
	SessionID string `json:"sessionId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

type Roll struct {
	Base     int  `json:"base"`
	Modifier int  `json:"modifier"`
	Final    int  `json:"final"`
	Putter   bool `json:"putter,omitempty"`
}

type RollResult struct {
	SessionID string `json:"sessionId"`
	Roll      Roll   `json:"roll"`
	Stuck     bool   `json:"stuck"`
}

type HitResult struct {
	SessionID   string `json:"sessionId"`
	Accepted    bool   `json:"accepted"`
	Reason      string `json:"reason"`
	From        Point  `json:"from"`
	Position    Point  `json:"position"`
	Strokes     int    `json:"strokes"`
	Win         bool   `json:"win"`
	Reaction    string `json:"reaction,omitempty"`
	Roll        Roll   `json:"roll"`
	NextCourse  string `json:"nextCourse,omitempty"`
	Rerolls     int    `json:"rerolls,omitempty"`
	Terrain     string `json:"terrain"`
	HolesPlayed int    `json:"holesPlayed"`
	// Error is set when the hole was won but the next course could not be
	// started.
	Error string `json:"error,omitempty"`
}

type SessionState struct {
	SessionID   string    `json:"sessionId"`
	CourseID    string    `json:"courseId"`
	Seed        int64     `json:"seed"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	TileSize    int       `json:"tileSize"`
	Par         int       `json:"par"`
	Hole        Point     `json:"hole"`
	Ball        Point     `json:"ball"`
	Position    Point     `json:"position"`
	Lie         string    `json:"lie"`
	Strokes     int       `json:"strokes"`
	State       string    `json:"state"`
	Roll        Roll      `json:"roll"`
	HolesPlayed int       `json:"holesPlayed"`
	LastActive  time.Time `json:"lastActive"`
}

type CourseStarted struct {
	SessionID string `json:"sessionId"`
	CourseID  string `json:"courseId"`
	Seed      int64  `json:"seed"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Hole      Point  `json:"hole"`
	Ball      Point  `json:"ball"`
}

type Error struct {
	SessionID string `json:"sessionId,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func Encode(msg Envelope) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}

// DecodePayload unmarshals the payload of env into v.
func DecodePayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(env.Payload, v)
}
