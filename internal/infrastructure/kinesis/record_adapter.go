package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/example/storefront/internal/infrastructure/store"
)

// ConvertFromKinesisRecord decodes one Kinesis record carrying a DynamoDB
// Streams change into a store.Event. The events table is append-only, so
// only INSERT changes carry new events; everything else yields nil.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var change events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &change); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}

	return ConvertFromDynamoDBStreamRecord(change)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB Stream record to a
// store.Event, used when consuming DynamoDB Streams directly
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	if record.EventName != "INSERT" {
		return nil, nil
	}

	return eventFromImage(record.Change.NewImage)
}

func eventFromImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	event := &store.Event{}

	// The typed accessors on DynamoDBAttributeValue panic on a type
	// mismatch, so every attribute is checked before reading.
	if v, ok := image["id"]; ok && v.DataType() == events.DataTypeString {
		event.ID = v.String()
	}
	if v, ok := image["aggregate_id"]; ok && v.DataType() == events.DataTypeString {
		event.AggregateID = v.String()
	}
	if v, ok := image["aggregate_type"]; ok && v.DataType() == events.DataTypeString {
		event.AggregateType = v.String()
	}
	if v, ok := image["event_type"]; ok && v.DataType() == events.DataTypeString {
		event.EventType = v.String()
	}
	if v, ok := image["data"]; ok && v.DataType() == events.DataTypeString {
		event.Data = json.RawMessage(v.String())
	}
	if v, ok := image["created_at"]; ok {
		if v.DataType() != events.DataTypeString {
			return nil, fmt.Errorf("created_at attribute is not a string")
		}
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		event.Timestamp = t
	}
	if v, ok := image["version"]; ok {
		if v.DataType() != events.DataTypeNumber {
			return nil, fmt.Errorf("version attribute is not a number")
		}
		version, err := v.Integer()
		if err != nil {
			return nil, fmt.Errorf("failed to parse version: %w", err)
		}
		event.Version = int(version)
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, aggregate_id=%s, event_type=%s",
			event.ID, event.AggregateID, event.EventType)
	}

	return event, nil
}

// BatchConvertFromKinesisEvent converts every record in a Kinesis batch.
// Bad records are collected as errors without stopping the batch.
func BatchConvertFromKinesisEvent(kinesisEvent events.KinesisEvent) ([]*store.Event, []error) {
	var eventList []*store.Event
	var errs []error

	for _, record := range kinesisEvent.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		if event != nil {
			eventList = append(eventList, event)
		}
	}

	return eventList, errs
}
