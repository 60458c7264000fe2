package signal

import "hash/fnv"

// palette is the fixed set of display colors assigned to diseases and
// categories. Assignment hashes the name so the same name always maps to the
// same color, across runs and across deployments.
var palette = []string{
	"#e6194b",
	"#3cb44b",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46b8b8",
	"#f032e6",
	"#9a6324",
	"#808000",
	"#000075",
}

// colorForName deterministically picks a palette color for a name.
func colorForName(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
