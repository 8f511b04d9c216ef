package perfectmap

import "github.com/cockroachdb/swiss"

type backupState uint8

const (
	backupInactive backupState = iota // no unknown key inserted yet
	backupActive
)

// backupStore holds keys outside the known key set. The underlying table is
// allocated on the first put.
type backupStore[K comparable, V any] struct {
	state backupState
	m     *swiss.Map[K, V]
}

func (b *backupStore[K, V]) activate() {
	if b.state == backupInactive {
		b.m = swiss.New[K, V](0)
		b.state = backupActive
	}
}

func (b *backupStore[K, V]) get(key K) (V, bool) {
	if b.state != backupActive {
		var zero V
		return zero, false
	}
	return b.m.Get(key)
}

func (b *backupStore[K, V]) put(key K, v V) (V, bool) {
	b.activate()
	prev, had := b.m.Get(key)
	b.m.Put(key, v)
	return prev, had
}

func (b *backupStore[K, V]) remove(key K) (V, bool) {
	if b.state != backupActive {
		var zero V
		return zero, false
	}
	prev, had := b.m.Get(key)
	if had {
		b.m.Delete(key)
	}
	return prev, had
}

func (b *backupStore[K, V]) len() int {
	if b.state != backupActive {
		return 0
	}
	return b.m.Len()
}

func (b *backupStore[K, V]) all(yield func(K, V) bool) bool {
	if b.state != backupActive {
		return true
	}
	cont := true
	b.m.All(func(k K, v V) bool {
		cont = yield(k, v)
		return cont
	})
	return cont
}
