package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/hitview"
	"github.com/letmevibethatforyou/hitview/algolia"
	"github.com/letmevibethatforyou/hitview/internal/ddb"
	"github.com/letmevibethatforyou/hitview/render"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

const defaultIndex = "question_objects"

type topic struct {
	subject  string
	organ    string
	function string
	wrong    []string
}

var (
	topics = []topic{
		{subject: "Biology", organ: "kidney", function: "filters blood", wrong: []string{"liver", "spleen", "pancreas"}},
		{subject: "Biology", organ: "heart", function: "pumps blood", wrong: []string{"lung", "stomach", "kidney"}},
		{subject: "Physiology", organ: "lung", function: "exchanges gases", wrong: []string{"heart", "colon", "thyroid"}},
		{subject: "Physiology", organ: "pancreas", function: "secretes insulin", wrong: []string{"adrenal gland", "liver", "spleen"}},
		{subject: "Anatomy", organ: "femur", function: "bears the body's weight", wrong: []string{"tibia", "humerus", "radius"}},
		{subject: "Anatomy", organ: "cornea", function: "refracts incoming light", wrong: []string{"retina", "iris", "sclera"}},
	}

	tests    = []string{"MCAT", "DAT", "OAT", "USMLE"}
	statuses = []string{"live", "live", "live", "draft", "archived"}
	imageCDN = "https://cdn.bootcamp.com/images"
)

// imageMarkup returns one of the reference styles the renderer has to
// cope with: plain src, lazy data-src, protocol-relative or bare text.
func imageMarkup(name string) string {
	switch rand.IntN(4) {
	case 0:
		return fmt.Sprintf(`<img src="%s/%s.png" alt="%s">`, imageCDN, name, name)
	case 1:
		return fmt.Sprintf(`<img data-src="%s/%s.jpg" class="lazy">`, imageCDN, name)
	case 2:
		return fmt.Sprintf(`<figure><img src="//cdn.bootcamp.com/images/%s.webp"></figure>`, name)
	default:
		return fmt.Sprintf(`See %s/%s.gif for reference.`, imageCDN, name)
	}
}

func generateRandomQuestion() ddb.Question {
	t := topics[rand.IntN(len(topics))]

	answers := []ddb.Answer{{Text: capitalize(t.organ), Correct: true}}
	for _, w := range t.wrong {
		answers = append(answers, ddb.Answer{Text: capitalize(w)})
	}
	rand.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

	q := ddb.Question{
		Prompt: fmt.Sprintf("<p>Which structure <strong>%s</strong>?</p>", t.function),
		Answers: answers,
		Explanation: fmt.Sprintf(
			"<p>The %s %s. %s</p><ul><li>Review the %s chapter.</li></ul>",
			t.organ, t.function, imageMarkup(t.organ), t.subject,
		),
		Hyperlinks: []ddb.Hyperlink{{
			URL:   fmt.Sprintf("https://en.wikipedia.org/wiki/%s", capitalize(t.organ)),
			Title: capitalize(t.organ),
		}},
		Meta: fmt.Sprintf("%s &middot; difficulty %d", t.subject, rand.IntN(5)+1),
		TagCategories: map[string][]string{
			"tests":    {tests[rand.IntN(len(tests))]},
			"subjects": {t.subject},
		},
		Status:    statuses[rand.IntN(len(statuses))],
		CreatedAt: time.Now().Unix(),
	}

	if rand.IntN(2) == 0 {
		q.QuestionHeader = imageMarkup(t.organ + "-diagram")
	}
	return q
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func insertQuestion(ctx context.Context, client *dynamodb.Client, tableName, indexName string, q ddb.Question) (map[string]types.AttributeValue, error) {
	id := ksuid.New().String()

	item, err := ddb.MarshalQuestion(id, indexName, q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question record: %w", err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}

	slog.InfoContext(ctx, "Successfully inserted question",
		"id", id,
		"index", indexName,
		"answers", len(q.Answers),
		"status", q.Status,
	)

	return item, nil
}

type batchIndexer interface {
	BatchSaveObjects(ctx context.Context, indexName string, objects []map[string]any) error
}

// searchObject builds the index object for a stored item, shaped like the
// objects the stream sync writes: objectID plus the image manifest.
func searchObject(item map[string]types.AttributeValue, extractor *render.ImageExtractor) (map[string]any, error) {
	record, err := ddb.UnmarshalRecord(item)
	if err != nil {
		return nil, err
	}

	object := make(map[string]any, len(record.Object)+2)
	for k, v := range record.Object {
		object[k] = v
	}
	object["objectID"] = record.ID

	groups := extractor.ImageGroups(hitview.Hit{ID: record.ID, Fields: record.Object})
	if groups == nil {
		groups = []render.ImageGroup{}
	}
	object["images"] = groups
	return object, nil
}

// indexItems writes the seeded items to the index in one batch, for tables
// without a stream sync attached.
func indexItems(ctx context.Context, indexer batchIndexer, indexName string, items []map[string]types.AttributeValue) error {
	extractor := render.NewImageExtractor()
	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		object, err := searchObject(item, extractor)
		if err != nil {
			return fmt.Errorf("failed to build index object: %w", err)
		}
		objects = append(objects, object)
	}

	if err := indexer.BatchSaveObjects(ctx, indexName, objects); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Indexed generated questions", "index", indexName, "count", len(objects))
	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	tableName := c.String("table-name")
	indexName := c.String("index")
	count := c.Int("count")

	slog.InfoContext(ctx, "Starting question generator",
		"environment", env,
		"table", tableName,
		"index", indexName,
		"count", count,
	)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg)

	items := make([]map[string]types.AttributeValue, 0, count)
	for i := 0; i < count; i++ {
		item, err := insertQuestion(ctx, client, tableName, indexName, generateRandomQuestion())
		if err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i+1, err)
		}
		items = append(items, item)
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all questions", "count", count)

	if !c.Bool("index-now") {
		return nil
	}

	indexer := algolia.NewClient(algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env))
	return indexItems(ctx, indexer, indexName, items)
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random question records and insert them into DynamoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Aliases:  []string{"e"},
				Usage:    "Environment name",
				EnvVars:  []string{"ENVIRONMENT"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "table-name",
				Aliases:  []string{"t"},
				Usage:    "DynamoDB table name",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Algolia index the records sync into",
				EnvVars: []string{"ALGOLIA_INDEX"},
				Value:   defaultIndex,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of questions to generate",
				Value:   1,
			},
			&cli.BoolFlag{
				Name:  "index-now",
				Usage: "Also batch-write the generated questions to Algolia using the {env}/algolia secret",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
