//go:build !debug

package main

const defaultPort uint16 = 8889
