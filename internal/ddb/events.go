// Package ddb decodes DynamoDB stream events for the questions table and
// encodes question records for writing to it.
package ddb

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// DynamoDBEvent is the payload a stream-triggered Lambda receives.
type DynamoDBEvent struct {
	Records []DynamoDBEventRecord `json:"Records"`
}

// DynamoDBEventRecord is a single stream record.
type DynamoDBEventRecord struct {
	AWSRegion      string               `json:"awsRegion"`
	Change         DynamoDBStreamRecord `json:"dynamodb"`
	EventID        string               `json:"eventID"`
	EventName      string               `json:"eventName"`
	EventSource    string               `json:"eventSource"`
	EventVersion   string               `json:"eventVersion"`
	EventSourceArn string               `json:"eventSourceARN"`
}

// DynamoDBStreamRecord holds the changed item. Images arrive in DynamoDB
// JSON ({"S": "..."}, {"M": {...}}) and are decoded into SDK attribute
// values.
type DynamoDBStreamRecord struct {
	ApproximateCreationDateTime int64                           `json:"ApproximateCreationDateTime,omitempty"`
	Keys                        map[string]types.AttributeValue `json:"Keys,omitempty"`
	NewImage                    map[string]types.AttributeValue `json:"NewImage,omitempty"`
	OldImage                    map[string]types.AttributeValue `json:"OldImage,omitempty"`
	SequenceNumber              string                          `json:"SequenceNumber"`
	SizeBytes                   int64                           `json:"SizeBytes"`
	StreamViewType              string                          `json:"StreamViewType"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *DynamoDBStreamRecord) UnmarshalJSON(data []byte) error {
	var wire struct {
		ApproximateCreationDateTime int64           `json:"ApproximateCreationDateTime,omitempty"`
		Keys                        json.RawMessage `json:"Keys,omitempty"`
		NewImage                    json.RawMessage `json:"NewImage,omitempty"`
		OldImage                    json.RawMessage `json:"OldImage,omitempty"`
		SequenceNumber              string          `json:"SequenceNumber"`
		SizeBytes                   int64           `json:"SizeBytes"`
		StreamViewType              string          `json:"StreamViewType"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	keys, err := optionalAttributeValueMap(wire.Keys)
	if err != nil {
		return errors.Wrap(err, "Keys")
	}
	newImage, err := optionalAttributeValueMap(wire.NewImage)
	if err != nil {
		return errors.Wrap(err, "NewImage")
	}
	oldImage, err := optionalAttributeValueMap(wire.OldImage)
	if err != nil {
		return errors.Wrap(err, "OldImage")
	}

	*r = DynamoDBStreamRecord{
		ApproximateCreationDateTime: wire.ApproximateCreationDateTime,
		Keys:                        keys,
		NewImage:                    newImage,
		OldImage:                    oldImage,
		SequenceNumber:              wire.SequenceNumber,
		SizeBytes:                   wire.SizeBytes,
		StreamViewType:              wire.StreamViewType,
	}
	return nil
}

func optionalAttributeValueMap(raw json.RawMessage) (map[string]types.AttributeValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return UnmarshalAttributeValueMap(raw)
}

// DynamoDBOperationType is the stream event name.
type DynamoDBOperationType string

const (
	DynamoDBOperationTypeInsert DynamoDBOperationType = "INSERT"
	DynamoDBOperationTypeModify DynamoDBOperationType = "MODIFY"
	DynamoDBOperationTypeRemove DynamoDBOperationType = "REMOVE"
)

// UnmarshalAttributeValueMap decodes a DynamoDB JSON item.
func UnmarshalAttributeValueMap(data []byte) (map[string]types.AttributeValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal DynamoDB item")
	}

	item := make(map[string]types.AttributeValue, len(raw))
	for name, value := range raw {
		av, err := unmarshalAttributeValue(value)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", name)
		}
		item[name] = av
	}
	return item, nil
}

func unmarshalAttributeValue(data json.RawMessage) (types.AttributeValue, error) {
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal attribute value")
	}
	if len(typed) != 1 {
		return nil, errors.Newf("attribute value must have exactly one type, got %d", len(typed))
	}

	for kind, value := range typed {
		switch kind {
		case "S":
			var s string
			err := json.Unmarshal(value, &s)
			return &types.AttributeValueMemberS{Value: s}, err
		case "N":
			var n string
			err := json.Unmarshal(value, &n)
			return &types.AttributeValueMemberN{Value: n}, err
		case "B":
			var b []byte
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberB{Value: b}, err
		case "BOOL":
			var b bool
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberBOOL{Value: b}, err
		case "NULL":
			return &types.AttributeValueMemberNULL{Value: true}, nil
		case "SS":
			var ss []string
			err := json.Unmarshal(value, &ss)
			return &types.AttributeValueMemberSS{Value: ss}, err
		case "NS":
			var ns []string
			err := json.Unmarshal(value, &ns)
			return &types.AttributeValueMemberNS{Value: ns}, err
		case "BS":
			var bs [][]byte
			err := json.Unmarshal(value, &bs)
			return &types.AttributeValueMemberBS{Value: bs}, err
		case "M":
			m, err := UnmarshalAttributeValueMap(value)
			return &types.AttributeValueMemberM{Value: m}, err
		case "L":
			var items []json.RawMessage
			if err := json.Unmarshal(value, &items); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal list")
			}
			list := make([]types.AttributeValue, 0, len(items))
			for i, item := range items {
				av, err := unmarshalAttributeValue(item)
				if err != nil {
					return nil, errors.Wrapf(err, "list element %d", i)
				}
				list = append(list, av)
			}
			return &types.AttributeValueMemberL{Value: list}, nil
		default:
			return nil, errors.Newf("unknown attribute value type %q", kind)
		}
	}
	return nil, nil
}
