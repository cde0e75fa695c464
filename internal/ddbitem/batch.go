package ddbitem

import "backend2/internal/value"

// batchLimit mirrors DynamoDB's real per-call cap and the teacher's
// event_store.go batching idiom (SaveEvents chunks WriteRequests into
// groups of 25); BatchGetItem/BatchWriteItem fan out in chunks of this size
// (SPEC_FULL.md §5.K).
const batchLimit = 25

// BatchGetRequest is one (table, key) pair requested from BatchGetItem.
type BatchGetRequest struct {
	TableName string
	Key       map[string]value.AttributeValue
}

// BatchGetItemOutput is BatchGetItem's result: every item found, skipping
// keys with no match (DynamoDB never reports a "not found" error per key).
type BatchGetItemOutput struct {
	Items []map[string]value.AttributeValue
}

// BatchGetItem fetches many items across one or more tables, processing
// requests in chunks of batchLimit.
func (s *Service) BatchGetItem(requests []BatchGetRequest) (*BatchGetItemOutput, error) {
	out := &BatchGetItemOutput{}
	for start := 0; start < len(requests); start += batchLimit {
		end := start + batchLimit
		if end > len(requests) {
			end = len(requests)
		}
		for _, req := range requests[start:end] {
			res, err := s.GetItem(GetItemInput{TableName: req.TableName, Key: req.Key})
			if err != nil {
				return nil, err
			}
			if res.Item != nil {
				out.Items = append(out.Items, res.Item)
			}
		}
	}
	return out, nil
}

// WriteRequestKind discriminates a BatchWriteRequest's action.
type WriteRequestKind int

const (
	WriteRequestPut WriteRequestKind = iota
	WriteRequestDelete
)

// BatchWriteRequest is one put-or-delete action requested from
// BatchWriteItem.
type BatchWriteRequest struct {
	TableName string
	Kind      WriteRequestKind
	Item      map[string]value.AttributeValue // for WriteRequestPut
	Key       map[string]value.AttributeValue // for WriteRequestDelete
}

// BatchWriteItemOutput is BatchWriteItem's result: the count of requests
// applied.
type BatchWriteItemOutput struct {
	Processed int
}

// BatchWriteItem applies many put/delete requests across one or more
// tables, processing requests in chunks of batchLimit so no single
// underlying call exceeds DynamoDB's real per-batch item cap.
func (s *Service) BatchWriteItem(requests []BatchWriteRequest) (*BatchWriteItemOutput, error) {
	processed := 0
	for start := 0; start < len(requests); start += batchLimit {
		end := start + batchLimit
		if end > len(requests) {
			end = len(requests)
		}
		for _, req := range requests[start:end] {
			switch req.Kind {
			case WriteRequestPut:
				if _, err := s.PutItem(PutItemInput{TableName: req.TableName, Item: req.Item}); err != nil {
					return nil, err
				}
			case WriteRequestDelete:
				if _, err := s.DeleteItem(DeleteItemInput{TableName: req.TableName, Key: req.Key}); err != nil {
					return nil, err
				}
			}
			processed++
		}
	}
	return &BatchWriteItemOutput{Processed: processed}, nil
}
