package domain

// EventType es lo que manda el servidor de juego a /api/v1/events.
type EventType string

const (
	EventJoin        EventType = "join"
	EventLeave       EventType = "leave"
	EventChat        EventType = "chat"
	EventDeath       EventType = "death"
	EventAdvancement EventType = "advancement"
	EventServerStart EventType = "server_start"
	EventServerStop  EventType = "server_stop"
)

func (t EventType) Valid() bool {
	switch t {
	case EventJoin, EventLeave, EventChat, EventDeath, EventAdvancement, EventServerStart, EventServerStop:
		return true
	}
	return false
}

type GameEvent struct {
	Type           EventType `json:"type"`
	Player         string    `json:"player,omitempty"`
	Message        string    `json:"message,omitempty"`
	Advancement    string    `json:"advancement,omitempty"`     // título visible
	AdvancementKey string    `json:"advancement_key,omitempty"` // ej. minecraft:story/mine_stone
	Online         *int      `json:"online,omitempty"`
	Max            *int      `json:"max,omitempty"`
}
