package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/hitview/algolia"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "trigger-algolia",
		Usage: "Sync the questions table stream into Algolia",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table-name",
				Usage:    "DynamoDB table name to sync from",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia write API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")
	env := c.String("env")
	algoliaAppID := c.String("algolia-app-id")
	algoliaAPIKey := c.String("algolia-api-key")

	slog.InfoContext(ctx, "Starting DynamoDB to Algolia sync", "table", tableName, "environment", env)

	var fetchSecrets algolia.FetchSecrets

	switch {
	case env != "":
		slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
			return err
		}
		fetchSecrets = algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env)
	case algoliaAppID != "" && algoliaAPIKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(algoliaAppID, algoliaAPIKey)
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	handler := NewHandler(tableName, algolia.NewClient(fetchSecrets))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
		return nil
	}

	slog.InfoContext(ctx, "Running in Lambda environment")
	lambda.Start(handler.HandleDynamoDBEvent)
	return nil
}
