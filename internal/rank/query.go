// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"strings"
)

// BuildQuery turns a user's series term into the catalog query string. A term
// that already names a volume passes through unchanged. Otherwise the query
// becomes an OR composite that keeps the plain term first and adds two
// title-scoped volume-one refinements, so the catalog surfaces first volumes
// without losing general matches:
//
//	進撃の巨人 OR intitle:"進撃の巨人 1" OR intitle:"進撃の巨人 第1巻"
//
// An empty or whitespace-only term yields an empty query.
func BuildQuery(term string) string {
	t := strings.TrimSpace(term)
	if t == "" {
		return ""
	}
	if HasExplicitVolumeNumber(t) {
		return t
	}
	return fmt.Sprintf(`%s OR intitle:"%s 1" OR intitle:"%s 第1巻"`, t, t, t)
}
