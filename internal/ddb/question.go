package ddb

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// Record is one row of the questions table as seen by the stream. Object
// stays untyped so attributes the sync does not know about still reach the
// index.
type Record struct {
	ID        string         `dynamodbav:"pk"`
	IndexName string         `dynamodbav:"sk"`
	Object    map[string]any `dynamodbav:"object"`
}

// UnmarshalRecord converts a stream image (or the keys of a REMOVE) into a
// Record.
func UnmarshalRecord(image map[string]types.AttributeValue) (Record, error) {
	var record Record
	if err := attributevalue.UnmarshalMap(image, &record); err != nil {
		return Record{}, errors.Wrap(err, "failed to unmarshal record")
	}
	return record, nil
}

// Question is the stored shape of a question-bank entry. Field names match
// the display fields rendered for each hit.
type Question struct {
	QuestionHeader string              `dynamodbav:"questionHeader,omitempty"`
	Prompt         string              `dynamodbav:"prompt"`
	Answers        []Answer            `dynamodbav:"answers"`
	Explanation    string              `dynamodbav:"explanation,omitempty"`
	Hyperlinks     []Hyperlink         `dynamodbav:"hyperlinks,omitempty"`
	Meta           string              `dynamodbav:"meta,omitempty"`
	TagCategories  map[string][]string `dynamodbav:"tag_categories,omitempty"`
	Status         string              `dynamodbav:"status"`
	CreatedAt      int64               `dynamodbav:"created_at"`
}

// Answer is one answer choice. Text may hold HTML.
type Answer struct {
	Text    string `dynamodbav:"text"`
	Correct bool   `dynamodbav:"correct"`
}

// Hyperlink is a reference link attached to a question.
type Hyperlink struct {
	URL   string `dynamodbav:"url"`
	Title string `dynamodbav:"title,omitempty"`
}

type questionItem struct {
	ID        string   `dynamodbav:"pk"`
	IndexName string   `dynamodbav:"sk"`
	Object    Question `dynamodbav:"object"`
}

// MarshalQuestion builds the table item for a question destined for the
// given index.
func MarshalQuestion(id, indexName string, q Question) (map[string]types.AttributeValue, error) {
	if id == "" {
		return nil, errors.New("question id is empty")
	}
	if indexName == "" {
		return nil, errors.New("index name is empty")
	}

	item, err := attributevalue.MarshalMap(questionItem{
		ID:        id,
		IndexName: indexName,
		Object:    q,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal question %s", id)
	}
	return item, nil
}
