// Package all registers every loader family adapter.
//
// Import for side effects:
//
//	import _ "github.com/packsmith/packsmith/all"
package all

import (
	_ "github.com/packsmith/packsmith/internal/fabric"
	_ "github.com/packsmith/packsmith/internal/forge"
	_ "github.com/packsmith/packsmith/internal/neoforge"
	_ "github.com/packsmith/packsmith/internal/vanilla"
)
