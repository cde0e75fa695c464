package s3meta

import "strings"

// ListObjectsResult is the result of list_objects (spec.md §4.C).
type ListObjectsResult struct {
	Objects        []*Object
	CommonPrefixes []string
	IsTruncated    bool
	NextMarker     string
}

// ListObjects implements spec.md §4.C's list_objects: sorted-key iteration,
// optional prefix filter, delimiter-based common-prefix grouping, and
// marker-based pagination. Only non-delete-marker objects are eligible.
func (s *Store) ListObjects(prefix, delimiter, startAfter string, maxKeys int) ListObjectsResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result ListObjectsResult
	seenPrefixes := make(map[string]bool)

	for _, key := range s.keys {
		if startAfter != "" && key <= startAfter {
			continue
		}
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		stack := s.versions[key]
		if len(stack) == 0 || stack[0].isDeleteMarker() {
			continue
		}
		obj := stack[0].Object

		if delimiter != "" {
			rest := key[len(prefix):]
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				cp := prefix + rest[:idx] + delimiter
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					result.CommonPrefixes = append(result.CommonPrefixes, cp)
				}
				continue
			}
		}

		if maxKeys > 0 && len(result.Objects) >= maxKeys {
			result.IsTruncated = true
			result.NextMarker = result.Objects[len(result.Objects)-1].Key
			return result
		}
		result.Objects = append(result.Objects, obj)
	}

	return result
}

// VersionEntryView is the exported shape of one emitted version, used by
// ListObjectVersions.
type VersionEntryView struct {
	Object   *Object
	Marker   *DeleteMarker
	IsLatest bool
}

// ListObjectVersionsResult is the result of list_object_versions.
type ListObjectVersionsResult struct {
	Versions            []VersionEntryView
	CommonPrefixes      []string
	IsTruncated         bool
	NextKeyMarker       string
	NextVersionIDMarker string
}

// ListObjectVersions implements spec.md §4.C's list_object_versions:
// key-marker/version-id-marker pagination, prefix/delimiter grouping
// identical to ListObjects, and is_latest flagging of position 0.
func (s *Store) ListObjectVersions(prefix, delimiter, keyMarker, versionIDMarker string, maxKeys int) ListObjectVersionsResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result ListObjectVersionsResult
	seenPrefixes := make(map[string]bool)

	for _, key := range s.keys {
		if keyMarker != "" && key < keyMarker {
			continue
		}
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}

		if delimiter != "" {
			rest := key[len(prefix):]
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				cp := prefix + rest[:idx] + delimiter
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					result.CommonPrefixes = append(result.CommonPrefixes, cp)
				}
				continue
			}
		}

		stack := s.versions[key]
		startIdx := 0
		if key == keyMarker && versionIDMarker != "" {
			// Skip versions until the marker is passed (exclusive).
			found := -1
			for i, v := range stack {
				if v.versionID() == versionIDMarker {
					found = i
					break
				}
			}
			if found >= 0 {
				startIdx = found + 1
			} else {
				startIdx = len(stack)
			}
		} else if key == keyMarker && versionIDMarker == "" {
			// key_marker with no version marker: still include this key's
			// versions from the top, matching "for that key, skip versions
			// until version_id_marker is passed" with an empty marker.
			startIdx = 0
		}

		for i := startIdx; i < len(stack); i++ {
			v := stack[i]
			if maxKeys > 0 && len(result.Versions) >= maxKeys {
				result.IsTruncated = true
				last := result.Versions[len(result.Versions)-1]
				result.NextKeyMarker = last.keyOf()
				result.NextVersionIDMarker = last.versionIDOf()
				return result
			}
			result.Versions = append(result.Versions, VersionEntryView{
				Object:   v.Object,
				Marker:   v.Marker,
				IsLatest: i == 0,
			})
		}
	}

	return result
}

func (v VersionEntryView) keyOf() string {
	if v.Object != nil {
		return v.Object.Key
	}
	return v.Marker.Key
}

func (v VersionEntryView) versionIDOf() string {
	if v.Object != nil {
		return v.Object.VersionID
	}
	return v.Marker.VersionID
}
