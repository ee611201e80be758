// Package graph publishes crosswalk records to a knowledge graph as entity
// ingestion messages over NATS JetStream.
package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
	vocab "github.com/c360studio/geocrosswalk/vocabulary/geodcat"
	"github.com/c360studio/semstreams/message"
)

// Subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// DefaultStream captures every graph ingestion subject.
const DefaultStream = "GRAPH_INGEST"

// EntityIngestMessage is the message format for graph ingestion.
type EntityIngestMessage struct {
	ID        string           `json:"id"`
	Triples   []message.Triple `json:"triples"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Publisher sends one message to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// JetStreamPublisher publishes to a JetStream stream and waits for the
// acknowledgement.
type JetStreamPublisher struct {
	js jetstream.JetStream
}

// NewJetStreamPublisher wraps an open connection.
func NewJetStreamPublisher(nc *nats.Conn) (*JetStreamPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &JetStreamPublisher{js: js}, nil
}

// EnsureStream creates or updates the stream that stores graph ingestion
// messages.
func (p *JetStreamPublisher) EnsureStream(ctx context.Context, name string) error {
	if name == "" {
		name = DefaultStream
	}
	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{"graph.ingest.>"},
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", name, err)
	}
	return nil
}

// Publish implements Publisher.
func (p *JetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return err
	}
	return nil
}

// PublishRecord publishes a sealed record as a dataset entity. source names
// the producing component in every triple.
func PublishRecord(ctx context.Context, p Publisher, rec record.Record, source string, now time.Time) error {
	if p == nil {
		return nil // Skip publishing if no publisher (graceful degradation)
	}
	payload, err := NewDatasetPayload(&rec, source, now)
	if err != nil {
		return err
	}

	data, err := json.Marshal(payload.Ingest())
	if err != nil {
		return fmt.Errorf("marshal dataset entity: %w", err)
	}

	if err := p.Publish(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish dataset entity: %w", err)
	}

	return nil
}

// RecordTriples describes the dataset-level facts of a record. Bands and
// distribution entries are summarized by name.
func RecordTriples(rec *record.Record, entityID, source string, now time.Time) []message.Triple {
	var triples []message.Triple
	add := func(predicate string, object any) {
		if s, ok := object.(string); ok && s == "" {
			return
		}
		triples = append(triples, message.Triple{
			Subject:    entityID,
			Predicate:  predicate,
			Object:     object,
			Source:     source,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}

	id := rec.Identity
	add(vocab.DatasetIdentifier, id.ID)
	add(vocab.DatasetTitle, id.Name)
	add(vocab.DatasetDescription, id.Description)
	add(vocab.DatasetVersion, id.Version)
	add(vocab.DatasetLicense, id.License)
	add(vocab.DatasetLandingPage, id.URL)
	if ts, ok := id.Published.Get(); ok {
		add(vocab.DatasetIssued, temporal.Format(ts))
	}
	for _, k := range rec.Keywords {
		add(vocab.DatasetKeyword, k)
	}

	if box, ok := rec.Spatial.Box.Get(); ok {
		add(vocab.LocationGeometry, spatial.WKT(box))
	}
	switch rec.Spatial.CRS.Kind {
	case record.CRSEPSG:
		add(vocab.DatasetCRS, spatial.FormatCRS(rec.Spatial.CRS))
	case record.CRSText:
		add(vocab.DatasetCRSText, rec.Spatial.CRS.Text)
	}
	if iv, ok := rec.Temporal.Get(); ok {
		if ts, ok := iv.Start.Get(); ok {
			add(vocab.PeriodStart, temporal.Format(ts))
		}
		if ts, ok := iv.End.Get(); ok {
			add(vocab.PeriodEnd, temporal.Format(ts))
		}
	}

	if inst, ok := rec.Instrument.Get(); ok {
		add(vocab.DatasetPlatform, inst.Platform)
		add(vocab.DatasetInstrument, inst.Instrument)
	}
	for _, b := range rec.Bands {
		add(vocab.BandName, b.Name)
	}
	for _, e := range rec.Distribution {
		add(vocab.DistributionIdentifier, e.ID)
	}
	for _, c := range rec.Creators {
		add(vocab.AgentName, c.Name)
	}
	return triples
}

// DatasetEntityID generates a consistent entity ID for a dataset.
// Format: geocrosswalk.local.dataset.<id>
func DatasetEntityID(id string) string {
	return "geocrosswalk.local.dataset." + entitySafe.Replace(id)
}

// Dots separate entity ID segments.
var entitySafe = strings.NewReplacer(".", "-", "/", "-", " ", "_", ":", "-")
