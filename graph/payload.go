package graph

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/record"
)

// DatasetType is the message type of dataset payloads.
var DatasetType = message.Type{Domain: "geocrosswalk", Category: "dataset", Version: "v1"}

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      DatasetType.Domain,
		Category:    DatasetType.Category,
		Version:     DatasetType.Version,
		Description: "Crosswalked dataset record flattened to graph triples",
		Factory:     func() any { return &DatasetPayload{} },
	})
	if err != nil {
		panic("failed to register DatasetPayload: " + err.Error())
	}
}

// DatasetPayload carries one crosswalked dataset through the semstreams
// message bus. Its triples all describe Entity.
type DatasetPayload struct {
	Entity    string           `json:"id"`
	RecordID  string           `json:"record_id"`
	Source    string           `json:"source"`
	Facts     []message.Triple `json:"triples"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewDatasetPayload flattens a sealed record.
func NewDatasetPayload(rec *record.Record, source string, now time.Time) (*DatasetPayload, error) {
	if err := export.CheckSealed(rec); err != nil {
		return nil, err
	}
	entity := DatasetEntityID(rec.Identity.ID)
	return &DatasetPayload{
		Entity:    entity,
		RecordID:  rec.Identity.ID,
		Source:    source,
		Facts:     RecordTriples(rec, entity, source, now),
		UpdatedAt: now,
	}, nil
}

// Ingest returns the graph ingestion message for the payload.
func (p *DatasetPayload) Ingest() EntityIngestMessage {
	return EntityIngestMessage{ID: p.Entity, Triples: p.Facts, UpdatedAt: p.UpdatedAt}
}

func (p *DatasetPayload) EntityID() string          { return p.Entity }
func (p *DatasetPayload) Triples() []message.Triple { return p.Facts }
func (p *DatasetPayload) Schema() message.Type      { return DatasetType }

// Validate requires an entity, at least one triple and that every triple
// describes the entity.
func (p *DatasetPayload) Validate() error {
	if p.Entity == "" {
		return errors.New("dataset entity ID is required")
	}
	if len(p.Facts) == 0 {
		return fmt.Errorf("dataset %s has no triples", p.Entity)
	}
	for _, t := range p.Facts {
		if t.Subject != p.Entity {
			return fmt.Errorf("triple %s describes %s, not %s", t.Predicate, t.Subject, p.Entity)
		}
	}
	return nil
}

func (p *DatasetPayload) MarshalJSON() ([]byte, error) {
	type plain DatasetPayload
	return json.Marshal((*plain)(p))
}

func (p *DatasetPayload) UnmarshalJSON(data []byte) error {
	type plain DatasetPayload
	return json.Unmarshal(data, (*plain)(p))
}
