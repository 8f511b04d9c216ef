//go:build !linux

package perfectmap

func fadviseSequential(int, int64) {}
