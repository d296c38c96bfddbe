package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	cache  = make(map[string]any)
	envDot sync.Once
)

// Load parses environment variables into the config struct. The first
// call for a given type does the parsing; later calls return the cached
// value so every package sees identical configuration.
func Load[T any](v *T) error {
	envDot.Do(func() {
		// A missing .env file is fine; real environments set vars directly.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeName[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad works like Load but panics on failure. Used for configuration
// the service cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
