package shader

import "embed"

// Embedded holds the built-in shader modules under material/.
//
//go:embed material
var Embedded embed.FS
