//go:build !graphdebug

package graph

func debugAssert(bool, string) {}
