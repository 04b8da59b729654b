package jsengine

// Config tunes the engine's own behavior. It is not part of the
// reconciler's contract — swapping these values changes nothing the
// reconciler asserts, only how the resulting Web Audio graph sounds.
type Config struct {
	MasterVolume float64
}

// DefaultConfig matches the teacher's own master-volume default.
var DefaultConfig = Config{MasterVolume: 1.0}
