package util

import (
	"path/filepath"
	"strings"
)

// ContractID derives a contract identifier from a result file path: the base
// name without its extension. A trailing compression suffix is removed first,
// so "0xAb.json.gz" and "0xAb.json" share the id "0xAb". Case is kept.
func ContractID(path string) string {
	name := filepath.Base(path)
	for _, z := range []string{".gz", ".zst"} {
		if s := strings.TrimSuffix(name, z); s != name && s != "" {
			name = s
			break
		}
	}
	if id := strings.TrimSuffix(name, filepath.Ext(name)); id != "" {
		return id
	}
	return name
}

// NormalizeAddress lower-cases an address for rank table lookups.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
