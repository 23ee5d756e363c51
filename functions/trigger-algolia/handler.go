package main

import (
	"context"
	"log/slog"

	"github.com/letmevibethatforyou/hitview"
	"github.com/letmevibethatforyou/hitview/internal/ddb"
	"github.com/letmevibethatforyou/hitview/render"
)

// imagesAttribute holds the image manifest added to every indexed question.
const imagesAttribute = "images"

type objectIndexer interface {
	SaveObject(ctx context.Context, indexName string, object map[string]any) error
	DeleteObject(ctx context.Context, indexName string, objectID string) error
}

type Handler struct {
	tableName string
	indexer   objectIndexer
	extractor *render.ImageExtractor
}

func NewHandler(tableName string, indexer objectIndexer) *Handler {
	return &Handler{
		tableName: tableName,
		indexer:   indexer,
		extractor: render.NewImageExtractor(),
	}
}

func (h *Handler) HandleDynamoDBEvent(ctx context.Context, e ddb.DynamoDBEvent) error {
	slog.InfoContext(ctx, "Processing DynamoDB stream records", "table", h.tableName, "record_count", len(e.Records))

	for _, record := range e.Records {
		if err := h.processRecord(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Error processing record", "event_id", record.EventID, "error", err)
			return err
		}
	}

	return nil
}

func (h *Handler) processRecord(ctx context.Context, record ddb.DynamoDBEventRecord) error {
	switch ddb.DynamoDBOperationType(record.EventName) {
	case ddb.DynamoDBOperationTypeInsert, ddb.DynamoDBOperationTypeModify:
		if record.Change.NewImage == nil {
			slog.WarnContext(ctx, "No new image for insert/modify operation, skipping record")
			return nil
		}

		parsedRecord, err := ddb.UnmarshalRecord(record.Change.NewImage)
		if err != nil {
			slog.WarnContext(ctx, "Failed to unmarshal record, skipping", "error", err)
			return nil
		}

		if parsedRecord.ID == "" {
			slog.WarnContext(ctx, "Missing ID (pk) in record, skipping record")
			return nil
		}
		if parsedRecord.IndexName == "" {
			slog.WarnContext(ctx, "Missing IndexName (sk) in record, skipping record")
			return nil
		}
		if parsedRecord.Object == nil {
			slog.WarnContext(ctx, "Missing Object in record, skipping record", "id", parsedRecord.ID, "index", parsedRecord.IndexName)
			return nil
		}

		return h.handleUpsert(ctx, &parsedRecord)

	case ddb.DynamoDBOperationTypeRemove:
		parsedRecord, err := ddb.UnmarshalRecord(record.Change.Keys)
		if err != nil {
			slog.WarnContext(ctx, "Failed to unmarshal keys for delete operation, skipping", "error", err)
			return nil
		}

		if parsedRecord.ID == "" || parsedRecord.IndexName == "" {
			slog.WarnContext(ctx, "Missing ID or IndexName in delete record, skipping record")
			return nil
		}

		return h.handleDelete(ctx, parsedRecord.IndexName, parsedRecord.ID)

	default:
		slog.InfoContext(ctx, "Ignoring event type", "event_type", record.EventName)
		return nil
	}
}

func (h *Handler) handleUpsert(ctx context.Context, record *ddb.Record) error {
	object := make(map[string]any, len(record.Object)+2)
	for k, v := range record.Object {
		object[k] = v
	}
	object["objectID"] = record.ID
	object[imagesAttribute] = h.imageManifest(record.ID, record.Object)

	slog.InfoContext(ctx, "Saving object to Algolia", "object_id", record.ID, "index", record.IndexName)
	return h.indexer.SaveObject(ctx, record.IndexName, object)
}

// imageManifest lists the images embedded in each display field so
// consumers can show them without re-parsing the stored markup.
func (h *Handler) imageManifest(id string, fields map[string]any) []render.ImageGroup {
	groups := h.extractor.ImageGroups(hitview.Hit{ID: id, Fields: fields})
	if groups == nil {
		return []render.ImageGroup{}
	}
	return groups
}

func (h *Handler) handleDelete(ctx context.Context, indexName, objectID string) error {
	slog.InfoContext(ctx, "Deleting object from Algolia", "object_id", objectID, "index", indexName)
	return h.indexer.DeleteObject(ctx, indexName, objectID)
}
