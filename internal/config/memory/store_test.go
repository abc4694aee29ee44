package memory

import (
	"testing"

	"gramsift/internal/config"
	"gramsift/internal/config/storetest"
)

func TestConformance(t *testing.T) {
	storetest.TestStore(t, func(t *testing.T) config.Store {
		return NewStore()
	})
}
