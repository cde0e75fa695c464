package ddbstore

import (
	"sort"

	"backend2/internal/value"
)

// SortKeyOp identifies a sort-key condition's shape (spec.md §4.G).
type SortKeyOp int

const (
	OpEq SortKeyOp = iota
	OpLt
	OpLe
	OpGt
	OpGe
	OpBetween
	OpBeginsWith
)

// SortKeyCondition narrows a Query to a bounded range of a partition's sort
// keys (spec.md §4.G).
type SortKeyCondition struct {
	Op     SortKeyOp
	Value  value.AttributeValue // Eq/Lt/Le/Gt/Ge/BeginsWith operand, or Between's lower bound
	Hi     value.AttributeValue // Between's upper bound
}

// bounds converts a condition into a [lower, upper] range over Sortable
// values, with one flag per side marking that bound exclusive; a nil bound
// side is unbounded.
func (c *SortKeyCondition) bounds(schema KeySchema) (lower, upper *value.Sortable, lowerExclusive, upperExclusive bool, err error) {
	v, err := value.FromAttributeValue(schema.SortKey, c.Value)
	if err != nil {
		return nil, nil, false, false, err
	}

	switch c.Op {
	case OpEq:
		return &v, &v, false, false, nil
	case OpLt:
		return nil, &v, false, true, nil
	case OpLe:
		return nil, &v, false, false, nil
	case OpGt:
		return &v, nil, true, false, nil
	case OpGe:
		return &v, nil, false, false, nil
	case OpBetween:
		hi, err := value.FromAttributeValue(schema.SortKey, c.Hi)
		if err != nil {
			return nil, nil, false, false, err
		}
		return &v, &hi, false, false, nil
	case OpBeginsWith:
		// BeginsWith only matches string (and, mirroring the string rule
		// per spec.md §9, binary) sort keys; other types never match.
		if v.Kind != value.SortableString && v.Kind != value.SortableBinary {
			none := value.Sortable{Kind: v.Kind + 100} // unreachable rank, yields empty range
			return &none, &none, false, false, nil
		}
		upperSortable, ok := incrementSortable(v)
		if !ok {
			return &v, nil, false, false, nil
		}
		return &v, &upperSortable, false, true, nil
	default:
		return nil, nil, false, false, nil
	}
}

func incrementSortable(v value.Sortable) (value.Sortable, bool) {
	switch v.Kind {
	case value.SortableString:
		upper, ok := value.IncrementPrefix([]byte(v.S))
		if !ok {
			return value.Sortable{}, false
		}
		return value.Sortable{Kind: value.SortableString, S: string(upper)}, true
	case value.SortableBinary:
		upper, ok := value.IncrementPrefix(v.B)
		if !ok {
			return value.Sortable{}, false
		}
		return value.Sortable{Kind: value.SortableBinary, B: upper}, true
	default:
		return value.Sortable{}, false
	}
}

// QueryInput parameterizes Query (spec.md §4.G).
type QueryInput struct {
	PartitionKey        value.AttributeValue
	Condition           *SortKeyCondition // nil matches every item in the partition
	ScanForward         bool
	Limit               int // 0 means unbounded
	ExclusiveStartSort  *value.AttributeValue
}

// QueryResult is Query's output: matched items plus the DynamoDB-style
// pagination cursor (spec.md §4.G).
type QueryResult struct {
	Items                []map[string]value.AttributeValue
	LastEvaluatedKey     map[string]value.AttributeValue
}

// Query returns the items in one partition whose sort key satisfies
// Condition, in the requested direction, applying limit-based pagination
// (spec.md §4.G).
func (t *Table) Query(in QueryInput) (*QueryResult, error) {
	pk, err := value.FromAttributeValue(t.Schema.PartitionKey, in.PartitionKey)
	if err != nil {
		return nil, err
	}

	p, ok := t.lookupPartition(pk)
	if !ok {
		return &QueryResult{}, nil
	}

	var lower, upper *value.Sortable
	var lowerExclusive, upperExclusive bool
	if in.Condition != nil {
		lower, upper, lowerExclusive, upperExclusive, err = in.Condition.bounds(t.Schema)
		if err != nil {
			return nil, err
		}
	}

	if in.ExclusiveStartSort != nil {
		startSortable, err := value.FromAttributeValue(t.Schema.SortKey, *in.ExclusiveStartSort)
		if err != nil {
			return nil, err
		}
		if in.ScanForward {
			if lower == nil || value.Compare(startSortable, *lower) >= 0 {
				lower = &startSortable
				lowerExclusive = true
			}
		} else {
			if upper == nil || value.Compare(startSortable, *upper) <= 0 {
				upper = &startSortable
				upperExclusive = true
			}
		}
	}

	p.mu.Lock()
	keys := make([]value.Sortable, len(p.keys))
	copy(keys, p.keys)
	itemsByKey := make(map[string]map[string]value.AttributeValue, len(p.items))
	for k, v := range p.items {
		itemsByKey[k] = v
	}
	p.mu.Unlock()

	lo, hi := rangeIndices(keys, lower, upper, lowerExclusive, upperExclusive)
	matched := keys[lo:hi]

	if !in.ScanForward {
		reversed := make([]value.Sortable, len(matched))
		for i, k := range matched {
			reversed[len(matched)-1-i] = k
		}
		matched = reversed
	}

	truncated := false
	if in.Limit > 0 && len(matched) > in.Limit {
		matched = matched[:in.Limit]
		truncated = true
	}

	items := make([]map[string]value.AttributeValue, 0, len(matched))
	for _, k := range matched {
		item := itemsByKey[k.CacheKey()]
		items = append(items, value.CloneItem(item))
	}

	result := &QueryResult{Items: items}
	if truncated && len(items) > 0 {
		result.LastEvaluatedKey = lastKeyFor(t.Schema, items[len(items)-1])
	}
	return result, nil
}

// rangeIndices finds [lo, hi) over keys (already ascending) satisfying the
// given inclusive/exclusive bounds.
func rangeIndices(keys []value.Sortable, lower, upper *value.Sortable, lowerExclusive, upperExclusive bool) (lo, hi int) {
	lo = 0
	if lower != nil {
		lo = sort.Search(len(keys), func(i int) bool { return value.Compare(keys[i], *lower) >= 0 })
		if lowerExclusive {
			for lo < len(keys) && keys[lo].Equal(*lower) {
				lo++
			}
		}
	}
	hi = len(keys)
	if upper != nil {
		hi = sort.Search(len(keys), func(i int) bool { return value.Compare(keys[i], *upper) > 0 })
		if upperExclusive {
			for hi > 0 && keys[hi-1].Equal(*upper) {
				hi--
			}
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func lastKeyFor(schema KeySchema, item map[string]value.AttributeValue) map[string]value.AttributeValue {
	out := map[string]value.AttributeValue{
		schema.PartitionKey: item[schema.PartitionKey],
	}
	if schema.hasSortKey() {
		out[schema.SortKey] = item[schema.SortKey]
	}
	return out
}

// ScanInput parameterizes Scan (spec.md §4.G).
type ScanInput struct {
	Limit              int
	ExclusiveStartKey  map[string]value.AttributeValue
}

// Scan enumerates every item across every partition in the deterministic
// order fixed by spec.md §4.G/§9: partitions sorted by the display form of
// their partition-key value, then sort-key order within each partition.
func (t *Table) Scan(in ScanInput) (*QueryResult, error) {
	t.mu.RLock()
	parts := make([]*partition, 0, len(t.partitions))
	for _, p := range t.partitions {
		parts = append(parts, p)
	}
	t.mu.RUnlock()

	sort.Slice(parts, func(i, j int) bool {
		return partitionDisplay(parts[i].pkValue) < partitionDisplay(parts[j].pkValue)
	})

	var skipUntilPK, skipUntilSK *value.Sortable
	var skipUntilDisplay string
	if in.ExclusiveStartKey != nil {
		pkAttr := in.ExclusiveStartKey[t.Schema.PartitionKey]
		pk, err := value.FromAttributeValue(t.Schema.PartitionKey, pkAttr)
		if err != nil {
			return nil, err
		}
		skipUntilPK = &pk
		skipUntilDisplay = partitionDisplay(pkAttr)
		if t.Schema.hasSortKey() {
			skAttr := in.ExclusiveStartKey[t.Schema.SortKey]
			sk, err := value.FromAttributeValue(t.Schema.SortKey, skAttr)
			if err != nil {
				return nil, err
			}
			skipUntilSK = &sk
		}
	}

	var items []map[string]value.AttributeValue
	truncated := false

	skipping := skipUntilPK != nil
	for _, p := range parts {
		p.mu.Lock()
		keys := make([]value.Sortable, len(p.keys))
		copy(keys, p.keys)
		itemsByKey := make(map[string]map[string]value.AttributeValue, len(p.items))
		for k, v := range p.items {
			itemsByKey[k] = v
		}
		pkValue := p.pkValue
		p.mu.Unlock()

		pkSortable, _ := value.FromAttributeValue(t.Schema.PartitionKey, pkValue)

		// skipSK is the per-partition sort-key cutoff: nil once there is
		// nothing left to skip in this partition. Resolved by comparing the
		// partition's display form (the scan order above) to the cursor's
		// partition rather than searching for an exact
		// sort-key match, so a cursor whose entry was deleted since it was
		// issued still resumes correctly instead of leaving `skipping` set
		// and silently dropping every later partition.
		var skipSK *value.Sortable
		if skipping {
			switch {
			case partitionDisplay(pkValue) < skipUntilDisplay:
				// Sorts entirely before the cursor's partition.
				continue
			case pkSortable.Equal(*skipUntilPK):
				skipping = false
				if skipUntilSK == nil {
					// No sort key: the cursor's partition held exactly
					// one item, already returned on the prior page.
					continue
				}
				skipSK = skipUntilSK
			default:
				// The cursor's partition no longer exists (e.g. deleted
				// since the cursor was issued); resume normally here
				// instead of skipping every partition from now on.
				skipping = false
			}
		}

		for _, k := range keys {
			if skipSK != nil {
				if value.Compare(k, *skipSK) <= 0 {
					continue
				}
				skipSK = nil
			}
			if in.Limit > 0 && len(items) >= in.Limit {
				truncated = true
				break
			}
			items = append(items, value.CloneItem(itemsByKey[k.CacheKey()]))
		}
		if truncated {
			break
		}
	}

	result := &QueryResult{Items: items}
	if truncated && len(items) > 0 {
		result.LastEvaluatedKey = lastKeyFor(t.Schema, items[len(items)-1])
	}
	return result, nil
}

// partitionDisplay renders a partition key's display form for scan ordering
// (spec.md §4.G/§9: "sorting partition keys by their string display").
func partitionDisplay(v value.AttributeValue) string {
	switch v.Kind {
	case value.KindString:
		return v.S
	case value.KindNumber:
		return v.N
	case value.KindBinary:
		return string(v.B)
	default:
		return ""
	}
}
