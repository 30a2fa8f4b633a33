package amqp

import (
	"encoding/json"
	"time"
)

// DatasetIngestedMessage announces a stored upload. It carries identifiers
// only; consumers fetch the rows from the dataset store.
type DatasetIngestedMessage struct {
	DatasetID string    `json:"dataset_id"`
	Filename  string    `json:"filename"`
	SHA256    string    `json:"sha256"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetIngestedMessage creates an ingestion event for a stored dataset.
func NewDatasetIngestedMessage(datasetID, filename, sha256 string, rows int) *DatasetIngestedMessage {
	return &DatasetIngestedMessage{
		DatasetID: datasetID,
		Filename:  filename,
		SHA256:    sha256,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetIngestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetIngestedMessageFromJSON creates a message from JSON bytes
func DatasetIngestedMessageFromJSON(data []byte) (*DatasetIngestedMessage, error) {
	var msg DatasetIngestedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
