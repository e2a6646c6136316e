package cachectl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MessageType discriminates page/controller messages.
type MessageType string

const (
	TypeSkipWaiting  MessageType = "SKIP_WAITING"
	TypeSyncData     MessageType = "SYNC_DATA"
	TypeSyncSuccess  MessageType = "SYNC_SUCCESS"
	TypeCacheUpdated MessageType = "CACHE_UPDATED"
	TypeOpenWindow   MessageType = "OPEN_WINDOW"
)

// Inbound is a message sent by a page to the controller.
type Inbound interface {
	inbound()
}

// SkipWaiting asks the controller to activate a waiting install now.
type SkipWaiting struct{}

// SyncData forwards a key/value pair into the sync relay.
type SyncData struct {
	Key  string
	Data json.RawMessage
}

func (SkipWaiting) inbound() {}
func (SyncData) inbound()    {}

// DecodeMessage validates raw and returns the concrete message.
func DecodeMessage(raw []byte) (Inbound, error) {
	var env struct {
		Type MessageType     `json:"type"`
		Key  *string         `json:"key"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	switch env.Type {
	case TypeSkipWaiting:
		return SkipWaiting{}, nil
	case TypeSyncData:
		if env.Key == nil || strings.TrimSpace(*env.Key) == "" {
			return nil, fmt.Errorf("%w: %s requires a key", ErrInvalidMessage, env.Type)
		}
		return SyncData{Key: *env.Key, Data: env.Data}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, env.Type)
	}
}

// Outbound is a message sent by the controller to pages.
type Outbound interface {
	MessageType() MessageType
}

// SyncSuccess acknowledges a sync. Key is empty for tag-triggered syncs.
type SyncSuccess struct {
	Key string `json:"key,omitempty"`
}

// CacheUpdated tells pages that stale cache versions were removed.
type CacheUpdated struct{}

// OpenWindow asks a page to show path.
type OpenWindow struct {
	URL string `json:"url"`
}

func (SyncSuccess) MessageType() MessageType  { return TypeSyncSuccess }
func (CacheUpdated) MessageType() MessageType { return TypeCacheUpdated }
func (OpenWindow) MessageType() MessageType   { return TypeOpenWindow }

func (m SyncSuccess) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		Key  string      `json:"key,omitempty"`
	}{m.MessageType(), m.Key})
}

func (m CacheUpdated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type MessageType `json:"type"`
	}{m.MessageType()})
}

func (m OpenWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		URL  string      `json:"url"`
	}{m.MessageType(), m.URL})
}
