package auditlog

import "strings"

// PathFilter, audit log'a yazılmayacak path'leri belirleyen pure predicate.
//
// Health check ve dokümantasyon endpoint'leri log'u gürültüyle doldurur —
// load balancer her birkaç saniyede /api/health'e vurur. Bu path'lerle
// başlayan istekler hiç kayda girmez.
//
// Prefix eşleşmesi kullanılır (tam eşleşme değil): "/docs" hem /docs hem
// /docs/index.html'i kapsar.
type PathFilter struct {
	prefixes []string
}

// NewPathFilter, verilen prefix listesinden filter oluşturur.
// Boş prefix'ler atlanır (boş string her path'le eşleşirdi).
func NewPathFilter(prefixes []string) *PathFilter {
	f := &PathFilter{}
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			f.prefixes = append(f.prefixes, p)
		}
	}
	return f
}

// Excluded, path'in kayıt dışı olup olmadığını döner.
// Stateful hiçbir etkisi yoktur — aynı girdi her zaman aynı sonucu verir.
func (f *PathFilter) Excluded(path string) bool {
	for _, p := range f.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
