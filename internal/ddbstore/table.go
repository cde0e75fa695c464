// Package ddbstore is the DynamoDB table storage engine (spec.md §4.G): a
// concurrent partition map, each partition an ordered map keyed by sortable
// scalar values, with atomically maintained item-count and size counters.
//
// Grounded on the teacher's bucket object store (internal/s3meta) for the
// sorted-slice-plus-map idiom and the per-entity-lock discipline, adapted
// from a single flat key space to a two-level partition/sort-key space.
package ddbstore

import (
	"sort"
	"sync"
	"sync/atomic"

	"backend2/internal/apperr"
	"backend2/internal/value"
)

// KeySchema names the partition key attribute and, optionally, the sort key
// attribute (spec.md §3, §4.G).
type KeySchema struct {
	PartitionKey string
	SortKey      string // empty when the table has no sort key
}

func (ks KeySchema) hasSortKey() bool { return ks.SortKey != "" }

// Table is one DynamoDB table's item storage.
type Table struct {
	Schema KeySchema

	mu         sync.RWMutex
	partitions map[string]*partition

	itemCount  int64
	totalBytes int64
}

// partition holds every item sharing one partition-key value, ordered by
// sort-key value (or the single NoSortKey equivalence class).
type partition struct {
	mu      sync.Mutex
	pkValue value.AttributeValue
	keys    []value.Sortable // sorted ascending
	items   map[string]map[string]value.AttributeValue
}

// New constructs an empty table over the given key schema.
func New(schema KeySchema) *Table {
	return &Table{Schema: schema, partitions: make(map[string]*partition)}
}

// ItemCount and TotalBytes expose the atomically maintained counters
// surfaced by DescribeTable (spec.md §5.G′).
func (t *Table) ItemCount() int64  { return atomic.LoadInt64(&t.itemCount) }
func (t *Table) TotalBytes() int64 { return atomic.LoadInt64(&t.totalBytes) }

func (t *Table) extractKey(item map[string]value.AttributeValue) (pk value.Sortable, sk value.Sortable, err error) {
	pkAttr, ok := item[t.Schema.PartitionKey]
	if !ok {
		return value.Sortable{}, value.Sortable{}, apperr.MissingKeyAttribute(t.Schema.PartitionKey)
	}
	pk, err = value.FromAttributeValue(t.Schema.PartitionKey, pkAttr)
	if err != nil {
		return value.Sortable{}, value.Sortable{}, apperr.InvalidKeyType(t.Schema.PartitionKey)
	}

	if !t.Schema.hasSortKey() {
		return pk, value.NoSortKey, nil
	}
	skAttr, ok := item[t.Schema.SortKey]
	if !ok {
		return value.Sortable{}, value.Sortable{}, apperr.MissingKeyAttribute(t.Schema.SortKey)
	}
	sk, err = value.FromAttributeValue(t.Schema.SortKey, skAttr)
	if err != nil {
		return value.Sortable{}, value.Sortable{}, apperr.InvalidKeyType(t.Schema.SortKey)
	}
	return pk, sk, nil
}

func itemSize(item map[string]value.AttributeValue) int64 {
	var n int64
	for name, v := range item {
		n += int64(len(name))
		n += attributeSize(v)
	}
	return n
}

func attributeSize(v value.AttributeValue) int64 {
	switch v.Kind {
	case value.KindString:
		return int64(len(v.S))
	case value.KindNumber:
		return int64(len(v.N))
	case value.KindBinary:
		return int64(len(v.B))
	case value.KindBool, value.KindNull:
		return 1
	case value.KindStringSet:
		var n int64
		for _, s := range v.SS {
			n += int64(len(s))
		}
		return n
	case value.KindNumberSet:
		var n int64
		for _, s := range v.NS {
			n += int64(len(s))
		}
		return n
	case value.KindBinarySet:
		var n int64
		for _, b := range v.BS {
			n += int64(len(b))
		}
		return n
	case value.KindList:
		var n int64
		for _, e := range v.L {
			n += attributeSize(e)
		}
		return n
	case value.KindMap:
		var n int64
		for k, e := range v.M {
			n += int64(len(k)) + attributeSize(e)
		}
		return n
	default:
		return 0
	}
}

func (t *Table) getOrCreatePartition(pk value.Sortable, pkValue value.AttributeValue) *partition {
	key := pk.CacheKey()

	t.mu.RLock()
	p, ok := t.partitions[key]
	t.mu.RUnlock()
	if ok {
		return p
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.partitions[key]; ok {
		return p
	}
	p = &partition{pkValue: pkValue, items: make(map[string]map[string]value.AttributeValue)}
	t.partitions[key] = p
	return p
}

func (t *Table) lookupPartition(pk value.Sortable) (*partition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.partitions[pk.CacheKey()]
	return p, ok
}

func (p *partition) insertKeyLocked(sk value.Sortable) {
	i := sort.Search(len(p.keys), func(i int) bool { return value.Compare(p.keys[i], sk) >= 0 })
	if i < len(p.keys) && p.keys[i].Equal(sk) {
		return
	}
	p.keys = append(p.keys, value.Sortable{})
	copy(p.keys[i+1:], p.keys[i:])
	p.keys[i] = sk
}

func (p *partition) removeKeyLocked(sk value.Sortable) {
	i := sort.Search(len(p.keys), func(i int) bool { return value.Compare(p.keys[i], sk) >= 0 })
	if i < len(p.keys) && p.keys[i].Equal(sk) {
		p.keys = append(p.keys[:i], p.keys[i+1:]...)
	}
}

// PutItem inserts or replaces an item, returning the prior item if one was
// replaced (spec.md §4.G).
func (t *Table) PutItem(item map[string]value.AttributeValue) (prior map[string]value.AttributeValue, err error) {
	pk, sk, err := t.extractKey(item)
	if err != nil {
		return nil, err
	}
	pkValue := item[t.Schema.PartitionKey]
	p := t.getOrCreatePartition(pk, pkValue)

	stored := value.CloneItem(item)

	p.mu.Lock()
	skKey := sk.CacheKey()
	old, hadOld := p.items[skKey]
	p.items[skKey] = stored
	if !hadOld {
		p.insertKeyLocked(sk)
	}
	p.mu.Unlock()

	newSize := itemSize(stored)
	if hadOld {
		atomic.AddInt64(&t.totalBytes, newSize-itemSize(old))
	} else {
		atomic.AddInt64(&t.itemCount, 1)
		atomic.AddInt64(&t.totalBytes, newSize)
	}

	if hadOld {
		return value.CloneItem(old), nil
	}
	return nil, nil
}

// GetItem looks up one item by its full primary key (spec.md §4.G).
func (t *Table) GetItem(pkAttr, skAttr value.AttributeValue) (map[string]value.AttributeValue, error) {
	pk, err := value.FromAttributeValue(t.Schema.PartitionKey, pkAttr)
	if err != nil {
		return nil, apperr.InvalidKeyType(t.Schema.PartitionKey)
	}
	sk := value.NoSortKey
	if t.Schema.hasSortKey() {
		sk, err = value.FromAttributeValue(t.Schema.SortKey, skAttr)
		if err != nil {
			return nil, apperr.InvalidKeyType(t.Schema.SortKey)
		}
	}

	p, ok := t.lookupPartition(pk)
	if !ok {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	item, ok := p.items[sk.CacheKey()]
	if !ok {
		return nil, nil
	}
	return value.CloneItem(item), nil
}

// DeleteItem removes an item by its full primary key, returning the prior
// item if present (spec.md §4.G).
func (t *Table) DeleteItem(pkAttr, skAttr value.AttributeValue) (map[string]value.AttributeValue, error) {
	pk, err := value.FromAttributeValue(t.Schema.PartitionKey, pkAttr)
	if err != nil {
		return nil, apperr.InvalidKeyType(t.Schema.PartitionKey)
	}
	sk := value.NoSortKey
	if t.Schema.hasSortKey() {
		sk, err = value.FromAttributeValue(t.Schema.SortKey, skAttr)
		if err != nil {
			return nil, apperr.InvalidKeyType(t.Schema.SortKey)
		}
	}

	p, ok := t.lookupPartition(pk)
	if !ok {
		return nil, nil
	}

	p.mu.Lock()
	skKey := sk.CacheKey()
	old, hadOld := p.items[skKey]
	if hadOld {
		delete(p.items, skKey)
		p.removeKeyLocked(sk)
	}
	p.mu.Unlock()

	if !hadOld {
		return nil, nil
	}
	atomic.AddInt64(&t.itemCount, -1)
	atomic.AddInt64(&t.totalBytes, -itemSize(old))
	return value.CloneItem(old), nil
}
