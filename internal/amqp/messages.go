package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Routing keys on the dashboard exchange.
const (
	RoutingDatasetLoaded  = "dataset.loaded"
	RoutingDatasetRefresh = "dataset.refresh"
)

// DatasetLoadedMessage announces a successful load with new content.
type DatasetLoadedMessage struct {
	Fingerprint   string    `json:"fingerprint"`
	Source        string    `json:"source"`
	Factories     int       `json:"factories"`
	Suppliers     int       `json:"suppliers"`
	Subcategories int       `json:"subcategories"`
	Warnings      int       `json:"warnings"`
	LoadedAt      time.Time `json:"loaded_at"`
}

func (m *DatasetLoadedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetLoadedMessageFromJSON(data []byte) (*DatasetLoadedMessage, error) {
	var msg DatasetLoadedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RefreshRequest asks the dashboard to reload its data, typically sent by
// the job that publishes new extracts.
type RefreshRequest struct {
	RequestedBy string    `json:"requested_by"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewRefreshRequest(requestedBy, reason string) *RefreshRequest {
	return &RefreshRequest{
		RequestedBy: requestedBy,
		Reason:      reason,
		Timestamp:   time.Now(),
	}
}

func (m *RefreshRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestFromJSON decodes a refresh request. An empty body is a
// valid request from an anonymous sender.
func RefreshRequestFromJSON(data []byte) (*RefreshRequest, error) {
	if len(data) == 0 {
		return &RefreshRequest{RequestedBy: "unknown"}, nil
	}
	var msg RefreshRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RequestedBy == "" {
		return nil, errors.New("refresh request without requested_by")
	}
	return &msg, nil
}
