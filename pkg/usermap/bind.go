package usermap

// Bind links placements and tag-usage records by tag index.
//
// Every placement whose tag index is a valid table position gets Usage set
// to that position; all others get -1. Each resolved tag-usage record with a
// non-zero CountOnMap receives the positions of the placements whose tag
// index equals its own table position. Unresolved records collect nothing. The result does not depend on the order of either
// table; CountOnMap is advisory and does not cap the list.
func Bind(placements []Placement, usages []TagUsage) {
	for i := range usages {
		usages[i].Placements = nil
	}
	for i := range placements {
		p := &placements[i]
		p.Usage = -1
		if p.TagIndex < 0 || int(p.TagIndex) >= len(usages) {
			continue
		}
		p.Usage = int(p.TagIndex)
		u := &usages[p.TagIndex]
		if u.CountOnMap > 0 && u.Tag != nil {
			u.Placements = append(u.Placements, i)
		}
	}
}
