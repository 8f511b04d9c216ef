//go:build !linux

package perfectmap

func prefaultLayout([]byte) {}
