package record

// Dedupe removes exact duplicates from the order-insignificant collections,
// keeping the first occurrence.
func (r *Record) Dedupe() {
	r.Keywords = dedupe(r.Keywords)
	r.Creators = dedupe(r.Creators)
	r.References = dedupe(r.References)
	r.Identity.AlternateNames = dedupe(r.Identity.AlternateNames)
}

func dedupe[T comparable](in []T) []T {
	if len(in) < 2 {
		return in
	}
	seen := make(map[T]struct{}, len(in))
	out := in[:0:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
