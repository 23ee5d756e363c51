// Package algolia implements hitview.Searcher on top of an Algolia index and
// provides the indexing writes used by the sync function.
package algolia

import (
	"context"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials. Searching only needs a
// search-only key; the sync function needs a write key.
type Secrets struct {
	AppID  string `json:"app_id"`
	APIKey string `json:"api_key"`
}

// FetchSecrets retrieves Algolia credentials.
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns fixed credentials.
func StaticSecrets(appID, apiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{
			AppID:  appID,
			APIKey: apiKey,
		}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{
			AppID:  appID,
			APIKey: apiKey,
		}, nil
	}
}

// Client lazily builds the SDK client on first use.
type Client struct {
	getClient func() (*search.Client, error)
	tracer    trace.Tracer
}

func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}

		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}

		if secrets.APIKey == "" {
			return nil, errors.New("APIKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.APIKey), nil
	})

	return &Client{
		getClient: getClient,
		tracer:    otel.Tracer("hitview-algolia"),
	}
}

func (c *Client) index(indexName string) (*search.Index, error) {
	client, err := c.getClient()
	if err != nil {
		return nil, err
	}
	return client.InitIndex(indexName), nil
}

func (c *Client) SaveObject(ctx context.Context, indexName string, object map[string]any) error {
	ctx, span := c.tracer.Start(ctx, "algolia.save_object",
		trace.WithAttributes(attribute.String("algolia.index_name", indexName)),
	)
	defer span.End()

	if id, ok := object["objectID"].(string); ok {
		span.SetAttributes(attribute.String("algolia.object_id", id))
	}

	index, err := c.index(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := index.SaveObject(object, ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save object failed")
		return errors.Wrapf(err, "failed to save object to Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, "object saved")
	return nil
}

func (c *Client) DeleteObject(ctx context.Context, indexName string, objectID string) error {
	ctx, span := c.tracer.Start(ctx, "algolia.delete_object",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.String("algolia.object_id", objectID),
		),
	)
	defer span.End()

	index, err := c.index(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := index.DeleteObject(objectID, ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete object failed")
		return errors.Wrapf(err, "failed to delete object from Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, "object deleted")
	return nil
}

func (c *Client) BatchSaveObjects(ctx context.Context, indexName string, objects []map[string]any) error {
	if len(objects) == 0 {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "algolia.batch_save_objects",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(objects)),
		),
	)
	defer span.End()

	index, err := c.index(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := index.SaveObjects(objects, ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch save failed")
		return errors.Wrapf(err, "failed to batch save %d objects to Algolia index %s", len(objects), indexName)
	}

	span.SetStatus(codes.Ok, "objects saved")
	return nil
}
