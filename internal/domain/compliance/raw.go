package compliance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// The stored requirements blob has accumulated several shapes: flat keys,
// nested groups, snake_case and camelCase field names, scalar shorthands and
// legacy file arrays. Everything is folded here so the rest of the package only
// sees RequirementSet.

const (
	requestsField = "hr_requests"
	// unreadableRequestsField holds request entries that cannot be read as
	// requests. They are written back untouched.
	unreadableRequestsField = "hr_requests_unreadable"
)

var groupNames = map[string]struct{}{
	"governmentids":        {},
	"govids":               {},
	"ids":                  {},
	"license":              {},
	"licenses":             {},
	"medical":              {},
	"medicalexams":         {},
	"medicals":             {},
	"personal":             {},
	"personaldocuments":    {},
	"documents":            {},
	"clearances":           {},
	"education":            {},
	"educationaldocuments": {},
}

var requestsNames = map[string]struct{}{
	"hrrequests":    {},
	"requests":      {},
	"adhocrequests": {},
}

type fieldTarget int

const (
	fieldStatus fieldTarget = iota
	fieldValue
	fieldFile
	fieldFiles
	fieldSubmittedAt
	fieldValidUntil
	fieldRemarks
	fieldValidatedAt
	fieldValidatedBy
	fieldValidatedFile
	fieldID
	fieldLabel
	fieldDeadline
	fieldPriority
	fieldRequestedBy
	fieldRequestedAt
)

// Aliases in preference order; the first present, non-empty alias wins.
var fieldAliases = map[fieldTarget][]string{
	fieldStatus:        {"status", "state", "validation_status"},
	fieldValue:         {"value", "number", "id_number", "id_no", "license_number", "license_no"},
	fieldFile:          {"file_path", "file_url", "file", "url", "path", "storage_path", "document_url"},
	fieldFiles:         {"files", "file_paths", "file_urls", "attachments"},
	fieldSubmittedAt:   {"submitted_at", "uploaded_at", "date_submitted", "updated_at"},
	fieldValidUntil:    {"valid_until", "expiry_date", "expiration_date", "expires_at", "expiry"},
	fieldRemarks:       {"remarks", "remark", "hr_remarks", "notes", "comment"},
	fieldValidatedAt:   {"validated_at", "reviewed_at", "approved_at"},
	fieldValidatedBy:   {"validated_by", "reviewed_by", "approved_by"},
	fieldValidatedFile: {"validated_file_path", "validated_file", "reviewed_file_path", "last_validated_file"},
	fieldID:            {"id", "request_id"},
	fieldLabel:         {"document_label", "label", "document", "name", "title"},
	fieldDeadline:      {"deadline", "due_date", "due"},
	fieldPriority:      {"priority"},
	fieldRequestedBy:   {"requested_by", "created_by"},
	fieldRequestedAt:   {"requested_at", "created_at"},
}

var recordTargets = []fieldTarget{
	fieldStatus, fieldValue, fieldFile, fieldFiles, fieldSubmittedAt, fieldValidUntil,
	fieldRemarks, fieldValidatedAt, fieldValidatedBy, fieldValidatedFile,
}

// DecodeRequirements reads a stored requirements blob. A malformed blob yields
// an empty set together with the decode error.
func DecodeRequirements(data []byte) (RequirementSet, error) {
	set := RequirementSet{Records: make(map[string]RequirementRecord)}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return set, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return set, fmt.Errorf("decode requirements: %w", err)
	}

	names := make([]string, 0, len(top))
	for name := range top {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := top[name]
		canon := Canonicalize(name)

		if name == unreadableRequestsField {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				items = []json.RawMessage{raw}
			}
			set.keepUnreadableRequests(items...)
			continue
		}
		if _, ok := requestsNames[canon]; ok {
			reqs, unreadable, ok := decodeRequests(name, raw)
			if !ok {
				set.keepUnreadableRequests(raw)
				continue
			}
			set.Requests = append(set.Requests, reqs...)
			set.keepUnreadableRequests(unreadable...)
			continue
		}

		fields, isObject := decodeObject(raw)
		def, isDef := LookupDefinition(name)
		_, isGroup := groupNames[canon]

		switch {
		case isDef && (!isGroup || !isObject || looksLikeRecord(fields)):
			set.merge(def.Key, decodeRecord(def, raw))
		case isGroup && isObject:
			if unknown := set.decodeGroup(fields); len(unknown) > 0 {
				set.keepExtra(name, unknown)
			}
		default:
			set.keepExtraRaw(name, raw)
		}
	}
	return set, nil
}

// EncodeRequirements writes set in the canonical flat snake_case shape.
func EncodeRequirements(set RequirementSet) ([]byte, error) {
	out := make(map[string]any, len(set.Records)+len(set.Extra)+1)
	for name, raw := range set.Extra {
		out[name] = raw
	}
	for key, rec := range set.Records {
		if rec == (RequirementRecord{}) {
			continue
		}
		out[key] = rec
	}
	requests := set.Requests
	if requests == nil {
		requests = []HrRequest{}
	}
	out[requestsField] = requests
	return json.Marshal(out)
}

func (s *RequirementSet) merge(key string, rec RequirementRecord) {
	existing, ok := s.Records[key]
	if !ok {
		s.SetRecord(key, rec)
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&existing.Status, rec.Status)
	fill(&existing.Value, rec.Value)
	fill(&existing.FilePath, rec.FilePath)
	fill(&existing.SubmittedAt, rec.SubmittedAt)
	fill(&existing.ValidUntil, rec.ValidUntil)
	fill(&existing.Remarks, rec.Remarks)
	fill(&existing.ValidatedAt, rec.ValidatedAt)
	fill(&existing.ValidatedBy, rec.ValidatedBy)
	fill(&existing.ValidatedFilePath, rec.ValidatedFilePath)
	s.Records[key] = existing
}

func (s *RequirementSet) decodeGroup(fields map[string]json.RawMessage) map[string]json.RawMessage {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var unknown map[string]json.RawMessage
	for _, name := range names {
		def, ok := LookupDefinition(name)
		if !ok {
			if unknown == nil {
				unknown = make(map[string]json.RawMessage)
			}
			unknown[name] = fields[name]
			continue
		}
		s.merge(def.Key, decodeRecord(def, fields[name]))
	}
	return unknown
}

func (s *RequirementSet) keepExtra(name string, fields map[string]json.RawMessage) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	s.keepExtraRaw(name, payload)
}

func (s *RequirementSet) keepExtraRaw(name string, raw json.RawMessage) {
	if s.Extra == nil {
		s.Extra = make(map[string]json.RawMessage)
	}
	s.Extra[name] = raw
}

func (s *RequirementSet) keepUnreadableRequests(items ...json.RawMessage) {
	if len(items) == 0 {
		return
	}
	var existing []json.RawMessage
	if raw, ok := s.Extra[unreadableRequestsField]; ok {
		if err := json.Unmarshal(raw, &existing); err != nil {
			existing = []json.RawMessage{raw}
		}
	}
	payload, err := json.Marshal(append(existing, items...))
	if err != nil {
		return
	}
	s.keepExtraRaw(unreadableRequestsField, payload)
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func looksLikeRecord(fields map[string]json.RawMessage) bool {
	index := canonicalFields(fields)
	for _, target := range recordTargets {
		for _, alias := range fieldAliases[target] {
			if _, ok := index[Canonicalize(alias)]; ok {
				return true
			}
		}
	}
	return false
}

func decodeRecord(def Definition, raw json.RawMessage) RequirementRecord {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return RequirementRecord{}
	}

	switch v := value.(type) {
	case string:
		return scalarRecord(def, v)
	case float64, bool, json.Number:
		return scalarRecord(def, stringValue(v))
	case []any:
		return RequirementRecord{FilePath: lastString(v)}
	case map[string]any:
		return recordFromFields(v)
	}
	return RequirementRecord{}
}

func scalarRecord(def Definition, value string) RequirementRecord {
	value = strings.TrimSpace(value)
	if def.AcceptsValue && !looksLikePath(value) {
		return RequirementRecord{Value: value}
	}
	return RequirementRecord{FilePath: value}
}

func looksLikePath(value string) bool {
	return strings.Contains(value, "/") || strings.Contains(value, "://") || path.Ext(value) != ""
}

func recordFromFields(fields map[string]any) RequirementRecord {
	index := make(map[string]any, len(fields))
	for name, v := range fields {
		index[Canonicalize(name)] = v
	}
	get := func(target fieldTarget) string {
		for _, alias := range fieldAliases[target] {
			if v, ok := index[Canonicalize(alias)]; ok {
				if s := stringValue(v); s != "" {
					return s
				}
			}
		}
		return ""
	}

	rec := RequirementRecord{
		Status:            get(fieldStatus),
		Value:             get(fieldValue),
		FilePath:          get(fieldFile),
		SubmittedAt:       get(fieldSubmittedAt),
		ValidUntil:        get(fieldValidUntil),
		Remarks:           get(fieldRemarks),
		ValidatedAt:       get(fieldValidatedAt),
		ValidatedBy:       get(fieldValidatedBy),
		ValidatedFilePath: get(fieldValidatedFile),
	}
	if rec.FilePath == "" {
		rec.FilePath = get(fieldFiles)
	}
	return rec
}

// decodeRequests reads a stored request list. Bare strings are label-only
// requests; entries without an id get one derived from their content and
// position. Items that cannot be read as a request are returned separately so
// they can be kept as-is.
func decodeRequests(source string, raw json.RawMessage) ([]HrRequest, []json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, false
	}
	out := make([]HrRequest, 0, len(items))
	var unreadable []json.RawMessage
	for i, item := range items {
		var value any
		if err := json.Unmarshal(item, &value); err != nil || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if label := strings.TrimSpace(v); label != "" {
				out = append(out, HrRequest{
					ID:                legacyRequestID(source, i, label, ""),
					DocumentLabel:     label,
					RequirementRecord: RequirementRecord{Status: StatusPending.Stored()},
				})
				continue
			}
		case map[string]any:
			if req, ok := requestFromFields(source, i, v); ok {
				out = append(out, req)
				continue
			}
		}
		unreadable = append(unreadable, item)
	}
	return out, unreadable, true
}

func requestFromFields(source string, index int, item map[string]any) (HrRequest, bool) {
	fields := make(map[string]any, len(item))
	for name, v := range item {
		fields[Canonicalize(name)] = v
	}
	get := func(target fieldTarget) string {
		for _, alias := range fieldAliases[target] {
			if s := stringValue(fields[Canonicalize(alias)]); s != "" {
				return s
			}
		}
		return ""
	}
	req := HrRequest{
		ID:                get(fieldID),
		DocumentLabel:     get(fieldLabel),
		Deadline:          get(fieldDeadline),
		Priority:          get(fieldPriority),
		RequestedBy:       get(fieldRequestedBy),
		RequestedAt:       get(fieldRequestedAt),
		RequirementRecord: recordFromFields(item),
	}
	if req.DocumentLabel == "" {
		return HrRequest{}, false
	}
	if req.ID == "" {
		req.ID = legacyRequestID(source, index, req.DocumentLabel, req.Deadline)
	}
	if req.Status == "" {
		req.Status = StatusPending.Stored()
	}
	return req, true
}

// legacyRequestID is stable across reads of the same blob, so an id-less
// request keeps its id until the blob is next written with it.
func legacyRequestID(source string, index int, label, deadline string) string {
	name := strings.Join([]string{source, strconv.Itoa(index), label, deadline}, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func canonicalFields(fields map[string]json.RawMessage) map[string]struct{} {
	out := make(map[string]struct{}, len(fields))
	for name := range fields {
		out[Canonicalize(name)] = struct{}{}
	}
	return out
}

// stringValue flattens the scalar shapes a field may be stored as. Nested file
// objects ({"path": ...}) and arrays (latest entry last) are unwrapped.
func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case []any:
		return lastString(value)
	case map[string]any:
		for _, key := range []string{"path", "url", "file_path", "filePath", "key"} {
			if s := stringValue(value[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

func lastString(items []any) string {
	for i := len(items) - 1; i >= 0; i-- {
		if s := stringValue(items[i]); s != "" {
			return s
		}
	}
	return ""
}
