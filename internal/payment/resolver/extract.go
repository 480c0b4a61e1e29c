package resolver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// firstNonEmpty evaluates accessors in order and returns the first non-empty
// value. Keeps field precedence explicit and testable chain-by-chain.
func firstNonEmpty(getters ...func() string) string {
	for _, get := range getters {
		if v := strings.TrimSpace(get()); v != "" {
			return v
		}
	}
	return ""
}

func firstValue(getters ...func() any) any {
	for _, get := range getters {
		if v := get(); v != nil {
			return v
		}
	}
	return nil
}

// childMap walks nested object keys and returns the map at the end of the path.
func childMap(m map[string]any, path ...string) (map[string]any, bool) {
	current := m
	for _, key := range path {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// valueAt returns the raw value at the given nested path, or nil.
func valueAt(m map[string]any, path ...string) any {
	if len(path) == 0 || m == nil {
		return nil
	}
	parent, ok := childMap(m, path[:len(path)-1]...)
	if !ok {
		return nil
	}
	v, ok := parent[path[len(path)-1]]
	if !ok {
		return nil
	}
	return v
}

// stringAt returns the value at the path rendered as a string. JSON numbers
// (ids arrive both quoted and bare) are formatted without an exponent.
func stringAt(m map[string]any, path ...string) string {
	switch v := valueAt(m, path...).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Header spellings checked for organization enrichment, in order.
var (
	orgIDHeaders     = []string{"X-Organization-Id", "X-Org-Id", "Organization-Id", "Org-Id"}
	orgNameHeaders   = []string{"X-Organization-Name", "X-Org-Name", "Organization-Name", "Org-Name"}
	orgIDQueryKeys   = []string{"organization_id", "org_id"}
	orgNameQueryKeys = []string{"organization_name", "org_name"}
)

// resolveOrganization enriches organization id and name from, in order: the
// payload (top level, nested invoice, event, payload wrappers), headers, query
// parameters, configured defaults, and finally the id↔name directory in
// whichever direction is still missing.
func (r *Resolver) resolveOrganization(payload, inv map[string]any, headers http.Header, query url.Values) (string, string) {
	orgID := firstNonEmpty(
		func() string { return stringAt(payload, "organization_id") },
		func() string { return stringAt(payload, "org_id") },
		func() string { return stringAt(payload, "organization", "id") },
		func() string { return stringAt(inv, "organization_id") },
		func() string { return stringAt(inv, "org_id") },
		func() string { return stringAt(inv, "organization", "id") },
		func() string { return stringAt(payload, "event", "organization_id") },
		func() string { return stringAt(payload, "event", "org_id") },
		func() string { return stringAt(payload, "event", "data", "organization_id") },
		func() string { return stringAt(payload, "event", "data", "org_id") },
		func() string { return stringAt(payload, "payload", "organization_id") },
		func() string { return stringAt(payload, "payload", "org_id") },
		func() string { return headerValue(headers, orgIDHeaders) },
		func() string { return queryValue(query, orgIDQueryKeys) },
		func() string { return r.DefaultOrgID },
	)

	orgName := firstNonEmpty(
		func() string { return stringAt(payload, "organization_name") },
		func() string { return stringAt(payload, "org_name") },
		func() string { return stringAt(payload, "organization", "name") },
		func() string { return stringAt(inv, "organization_name") },
		func() string { return stringAt(inv, "org_name") },
		func() string { return stringAt(inv, "organization", "name") },
		func() string { return stringAt(payload, "event", "organization_name") },
		func() string { return stringAt(payload, "event", "org_name") },
		func() string { return stringAt(payload, "event", "data", "organization_name") },
		func() string { return stringAt(payload, "event", "data", "org_name") },
		func() string { return stringAt(payload, "payload", "organization_name") },
		func() string { return stringAt(payload, "payload", "org_name") },
		func() string { return stringAt(payload, "company_name") },
		func() string { return headerValue(headers, orgNameHeaders) },
		func() string { return queryValue(query, orgNameQueryKeys) },
		func() string { return r.DefaultOrgName },
	)

	// Directory closes whichever gap remains: id known → name, name known → id.
	if orgName == "" && orgID != "" {
		orgName = r.OrgDirectory[orgID]
	}
	if orgID == "" && orgName != "" {
		for id, name := range r.OrgDirectory {
			if strings.EqualFold(name, orgName) {
				orgID = id
				break
			}
		}
	}
	return orgID, orgName
}

func headerValue(headers http.Header, names []string) string {
	if headers == nil {
		return ""
	}
	for _, name := range names {
		if v := headers.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func queryValue(query url.Values, keys []string) string {
	if query == nil {
		return ""
	}
	for _, key := range keys {
		if v := query.Get(key); v != "" {
			return v
		}
	}
	return ""
}
