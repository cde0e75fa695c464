package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/auth"
	"backend2/internal/ddbitem"
	"backend2/internal/ddbstore"
	"backend2/internal/ddbtable"
	"backend2/internal/ddbwire"
	"backend2/internal/observability"
	"backend2/internal/value"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DynamoRouter is the single-endpoint HTTP surface for the DynamoDB item
// and table operation layers (SPEC_FULL.md §6): one POST route, dispatched
// by the X-Amz-Target header's trailing operation name the way the real
// DynamoDB JSON 1.0 protocol does, with SigV4 authentication in front.
// Grounded on interfaces/http/rest/router.go's chi wiring, generalized
// from path-based REST routing to target-header dispatch.
type DynamoRouter struct {
	items    *ddbitem.Service
	tables   *ddbtable.Registry
	logger   *zap.Logger
	resolver *auth.StaticResolver
	tracer   *observability.Tracer
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewDynamoRouter constructs the DynamoDB HTTP surface.
func NewDynamoRouter(items *ddbitem.Service, tables *ddbtable.Registry, resolver *auth.StaticResolver, logger *zap.Logger, tracer *observability.Tracer, metrics *observability.Metrics) *DynamoRouter {
	return &DynamoRouter{items: items, tables: tables, resolver: resolver, logger: logger, tracer: tracer, metrics: metrics, now: func() time.Time { return time.Now().UTC() }}
}

// Handler builds the chi router.
func (d *DynamoRouter) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(Logging(d.logger))
	r.Use(sigv4Auth(d.resolver))
	r.Post("/", d.dispatch)
	return r
}

// operationName extracts the operation from "DynamoDB_20120810.PutItem".
func operationName(target string) string {
	idx := strings.LastIndex(target, ".")
	if idx < 0 {
		return target
	}
	return target[idx+1:]
}

func (d *DynamoRouter) dispatch(w http.ResponseWriter, r *http.Request) {
	op := operationName(r.Header.Get("X-Amz-Target"))
	start := time.Now()
	d.tracer.TraceOperation(r.Context(), op, func(ctx context.Context) error {
		r = r.WithContext(ctx)
		switch op {
		case "CreateTable":
			d.createTable(w, r)
		case "DeleteTable":
			d.deleteTable(w, r)
		case "DescribeTable":
			d.describeTable(w, r)
		case "ListTables":
			d.listTables(w, r)
		case "PutItem":
			d.putItem(w, r)
		case "GetItem":
			d.getItem(w, r)
		case "DeleteItem":
			d.deleteItem(w, r)
		case "UpdateItem":
			d.updateItem(w, r)
		case "Query":
			d.query(w, r)
		case "Scan":
			d.scan(w, r)
		case "BatchGetItem":
			d.batchGetItem(w, r)
		case "BatchWriteItem":
			d.batchWriteItem(w, r)
		default:
			writeError(w, apperr.NotImplemented("unsupported DynamoDB operation: "+op))
		}
		return nil
	})
	d.metrics.RecordOperation(r.Context(), "DynamoDB", op, time.Since(start), nil)
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidArgument("failed to parse request body: " + err.Error())
	}
	return nil
}

func (d *DynamoRouter) createTable(w http.ResponseWriter, r *http.Request) {
	var req ddbwire.CreateTableRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	partitionKey, sortKey := req.ToKeySchema()
	if partitionKey == "" {
		writeError(w, apperr.InvalidArgument("KeySchema must include a HASH key"))
		return
	}
	schema := ddbstore.KeySchema{PartitionKey: partitionKey, SortKey: sortKey}

	desc, err := d.tables.CreateTable(aws.ToString(req.TableName), schema, req.ToAttributeDefinitions(), d.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"TableDescription": ddbwire.NewTableDescription(desc)})
}

func (d *DynamoRouter) deleteTable(w http.ResponseWriter, r *http.Request) {
	var req ddbwire.TableNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	desc, err := d.tables.DeleteTable(aws.ToString(req.TableName))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"TableDescription": ddbwire.NewTableDescription(desc)})
}

func (d *DynamoRouter) describeTable(w http.ResponseWriter, r *http.Request) {
	var req ddbwire.TableNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	desc, err := d.tables.DescribeTable(aws.ToString(req.TableName))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"Table": ddbwire.NewTableDescription(desc)})
}

func (d *DynamoRouter) listTables(w http.ResponseWriter, r *http.Request) {
	var req ddbwire.ListTablesRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	exclusiveStart, limit := req.Resolve()
	names, lastEvaluated := d.tables.ListTables(exclusiveStart, limit)
	resp := ddbwire.ListTablesResponse{TableNames: names}
	if lastEvaluated != "" {
		resp.LastEvaluatedTableName = aws.String(lastEvaluated)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *DynamoRouter) putItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName                string                           `json:"TableName"`
		Item                     map[string]value.AttributeValue `json:"Item"`
		ConditionExpression      string                           `json:"ConditionExpression"`
		ExpressionAttributeNames map[string]string                `json:"ExpressionAttributeNames"`
		ExpressionAttributeValues map[string]value.AttributeValue `json:"ExpressionAttributeValues"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := d.items.PutItem(ddbitem.PutItemInput{
		TableName: req.TableName,
		Item:      req.Item,
		Condition: ddbitem.Expression{Expr: req.ConditionExpression, Names: req.ExpressionAttributeNames, Values: req.ExpressionAttributeValues},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]interface{}{}
	if out.OldItem != nil {
		resp["Attributes"] = out.OldItem
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *DynamoRouter) getItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName            string                           `json:"TableName"`
		Key                  map[string]value.AttributeValue `json:"Key"`
		ProjectionExpression string                           `json:"ProjectionExpression"`
		ExpressionAttributeNames map[string]string            `json:"ExpressionAttributeNames"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := d.items.GetItem(ddbitem.GetItemInput{
		TableName:             req.TableName,
		Key:                   req.Key,
		ProjectionExpression:  req.ProjectionExpression,
		ProjectionNames:       req.ExpressionAttributeNames,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]interface{}{}
	if out.Item != nil {
		resp["Item"] = out.Item
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *DynamoRouter) deleteItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName                 string                           `json:"TableName"`
		Key                       map[string]value.AttributeValue `json:"Key"`
		ConditionExpression       string                           `json:"ConditionExpression"`
		ExpressionAttributeNames  map[string]string                `json:"ExpressionAttributeNames"`
		ExpressionAttributeValues map[string]value.AttributeValue `json:"ExpressionAttributeValues"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := d.items.DeleteItem(ddbitem.DeleteItemInput{
		TableName: req.TableName,
		Key:       req.Key,
		Condition: ddbitem.Expression{Expr: req.ConditionExpression, Names: req.ExpressionAttributeNames, Values: req.ExpressionAttributeValues},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]interface{}{}
	if out.OldItem != nil {
		resp["Attributes"] = out.OldItem
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *DynamoRouter) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName                 string                           `json:"TableName"`
		Key                       map[string]value.AttributeValue `json:"Key"`
		UpdateExpression          string                           `json:"UpdateExpression"`
		ConditionExpression       string                           `json:"ConditionExpression"`
		ExpressionAttributeNames  map[string]string                `json:"ExpressionAttributeNames"`
		ExpressionAttributeValues map[string]value.AttributeValue `json:"ExpressionAttributeValues"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := d.items.UpdateItem(ddbitem.UpdateItemInput{
		TableName:        req.TableName,
		Key:              req.Key,
		UpdateExpression: req.UpdateExpression,
		ExpressionNames:  req.ExpressionAttributeNames,
		ExpressionValues: req.ExpressionAttributeValues,
		Condition:        ddbitem.Expression{Expr: req.ConditionExpression, Names: req.ExpressionAttributeNames, Values: req.ExpressionAttributeValues},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"Attributes": out.Item})
}

func (d *DynamoRouter) query(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName                 string                           `json:"TableName"`
		KeyConditionExpression    string                           `json:"KeyConditionExpression"`
		FilterExpression          string                           `json:"FilterExpression"`
		ExpressionAttributeNames  map[string]string                `json:"ExpressionAttributeNames"`
		ExpressionAttributeValues map[string]value.AttributeValue `json:"ExpressionAttributeValues"`
		ScanIndexForward          *bool                            `json:"ScanIndexForward"`
		Limit                     int                              `json:"Limit"`
		ExclusiveStartKey         map[string]value.AttributeValue `json:"ExclusiveStartKey"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	table, err := d.tables.DescribeTable(req.TableName)
	if err != nil {
		writeError(w, err)
		return
	}
	pk, sortCond, err := ddbitem.ParseKeyCondition(req.KeyConditionExpression, req.ExpressionAttributeNames, req.ExpressionAttributeValues, table)
	if err != nil {
		writeError(w, err)
		return
	}

	scanForward := true
	if req.ScanIndexForward != nil {
		scanForward = *req.ScanIndexForward
	}
	var startSort *value.AttributeValue
	if req.ExclusiveStartKey != nil && table.KeySchema.SortKey != "" {
		if v, ok := req.ExclusiveStartKey[table.KeySchema.SortKey]; ok {
			startSort = &v
		}
	}

	out, err := d.items.Query(ddbitem.QueryInput{
		TableName:          req.TableName,
		PartitionKey:       pk,
		SortCondition:      sortCond,
		ScanForward:        scanForward,
		Limit:              req.Limit,
		ExclusiveStartSort: startSort,
		FilterExpression:   req.FilterExpression,
		ExpressionNames:    req.ExpressionAttributeNames,
		ExpressionValues:   req.ExpressionAttributeValues,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]interface{}{"Items": out.Items, "Count": len(out.Items)}
	if out.LastEvaluatedKey != nil {
		resp["LastEvaluatedKey"] = out.LastEvaluatedKey
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *DynamoRouter) scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName                 string                           `json:"TableName"`
		FilterExpression          string                           `json:"FilterExpression"`
		ExpressionAttributeNames  map[string]string                `json:"ExpressionAttributeNames"`
		ExpressionAttributeValues map[string]value.AttributeValue `json:"ExpressionAttributeValues"`
		Limit                     int                              `json:"Limit"`
		ExclusiveStartKey         map[string]value.AttributeValue `json:"ExclusiveStartKey"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := d.items.Scan(ddbitem.ScanInput{
		TableName:         req.TableName,
		Limit:             req.Limit,
		ExclusiveStartKey: req.ExclusiveStartKey,
		FilterExpression:  req.FilterExpression,
		ExpressionNames:   req.ExpressionAttributeNames,
		ExpressionValues:  req.ExpressionAttributeValues,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]interface{}{"Items": out.Items, "Count": len(out.Items)}
	if out.LastEvaluatedKey != nil {
		resp["LastEvaluatedKey"] = out.LastEvaluatedKey
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *DynamoRouter) batchGetItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestItems map[string]struct {
			Keys []map[string]value.AttributeValue `json:"Keys"`
		} `json:"RequestItems"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var reqs []ddbitem.BatchGetRequest
	for table, spec := range req.RequestItems {
		for _, key := range spec.Keys {
			reqs = append(reqs, ddbitem.BatchGetRequest{TableName: table, Key: key})
		}
	}
	out, err := d.items.BatchGetItem(reqs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"Responses": out.Items})
}

func (d *DynamoRouter) batchWriteItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestItems map[string][]struct {
			PutRequest *struct {
				Item map[string]value.AttributeValue `json:"Item"`
			} `json:"PutRequest"`
			DeleteRequest *struct {
				Key map[string]value.AttributeValue `json:"Key"`
			} `json:"DeleteRequest"`
		} `json:"RequestItems"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var reqs []ddbitem.BatchWriteRequest
	for table, writes := range req.RequestItems {
		for _, wr := range writes {
			switch {
			case wr.PutRequest != nil:
				reqs = append(reqs, ddbitem.BatchWriteRequest{TableName: table, Kind: ddbitem.WriteRequestPut, Item: wr.PutRequest.Item})
			case wr.DeleteRequest != nil:
				reqs = append(reqs, ddbitem.BatchWriteRequest{TableName: table, Kind: ddbitem.WriteRequestDelete, Key: wr.DeleteRequest.Key})
			}
		}
	}
	out, err := d.items.BatchWriteItem(reqs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"Processed": out.Processed})
}
