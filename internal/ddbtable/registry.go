// Package ddbtable is the DynamoDB table registry and table-level lifecycle
// operations (SPEC_FULL.md §5.G′): CreateTable/DeleteTable/DescribeTable/
// ListTables layered over the per-table item storage in internal/ddbstore.
//
// Grounded on the S3 bucket registry (internal/s3registry) for the
// registry-of-entities shape; built on the shared internal/registry.Map
// generic helper instead of duplicating that sync.RWMutex-guarded map.
package ddbtable

import (
	"sort"
	"time"

	"backend2/internal/apperr"
	"backend2/internal/ddbstore"
	"backend2/internal/registry"
)

// AttributeDefinition names one key attribute and its scalar type ("S", "N",
// or "B"), the subset of a CreateTable request's AttributeDefinitions this
// emulator core cares about.
type AttributeDefinition struct {
	Name string
	Type string
}

// Descriptor is a table's metadata record (spec.md §5.G′, §3).
type Descriptor struct {
	Name                 string
	KeySchema            ddbstore.KeySchema
	AttributeDefinitions []AttributeDefinition
	CreationDateTime     time.Time

	Storage *ddbstore.Table
}

// ItemCount and TableSizeBytes proxy the live storage counters.
func (d *Descriptor) ItemCount() int64      { return d.Storage.ItemCount() }
func (d *Descriptor) TableSizeBytes() int64 { return d.Storage.TotalBytes() }

// Registry is the process-wide table registry (spec.md §9 "Global
// registry").
type Registry struct {
	tables *registry.Map[string, Descriptor]
}

// NewRegistry constructs an empty table registry.
func NewRegistry() *Registry {
	return &Registry{tables: registry.New[string, Descriptor]()}
}

// CreateTable registers a new table, rejecting a duplicate name (spec.md
// §5.G′).
func (r *Registry) CreateTable(name string, schema ddbstore.KeySchema, attrs []AttributeDefinition, now time.Time) (*Descriptor, error) {
	if _, exists := r.tables.Get(name); exists {
		return nil, apperr.ResourceInUse("Table already exists: " + name)
	}
	d := &Descriptor{
		Name:                 name,
		KeySchema:            schema,
		AttributeDefinitions: attrs,
		CreationDateTime:     now,
		Storage:              ddbstore.New(schema),
	}
	r.tables.Set(name, d)
	return d, nil
}

// DeleteTable removes a table and its storage, or ResourceNotFoundException
// if it does not exist.
func (r *Registry) DeleteTable(name string) (*Descriptor, error) {
	d, ok := r.tables.Get(name)
	if !ok {
		return nil, apperr.ResourceNotFound("Requested resource not found: Table: " + name + " not found")
	}
	r.tables.Delete(name)
	return d, nil
}

// DescribeTable resolves a table's descriptor by name.
func (r *Registry) DescribeTable(name string) (*Descriptor, error) {
	d, ok := r.tables.Get(name)
	if !ok {
		return nil, apperr.ResourceNotFound("Requested resource not found: Table: " + name + " not found")
	}
	return d, nil
}

// ListTables returns table names in ascending order, paginated by
// exclusiveStart (the last name seen) and limit (0 means unbounded).
func (r *Registry) ListTables(exclusiveStart string, limit int) (names []string, lastEvaluated string) {
	all := r.tables.Keys()
	sort.Strings(all)

	start := 0
	if exclusiveStart != "" {
		start = sort.SearchStrings(all, exclusiveStart)
		if start < len(all) && all[start] == exclusiveStart {
			start++
		}
	}
	all = all[start:]

	if limit > 0 && len(all) > limit {
		return all[:limit], all[limit-1]
	}
	return all, ""
}
