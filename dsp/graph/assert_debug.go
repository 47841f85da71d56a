//go:build graphdebug

package graph

func debugAssert(cond bool, msg string) {
	if !cond {
		panic("graph: assertion failed: " + msg)
	}
}
