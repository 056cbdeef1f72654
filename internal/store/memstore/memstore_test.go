package memstore

import (
	"testing"

	"github.com/kaezarrex/regularity/internal/store"
	"github.com/kaezarrex/regularity/internal/store/storetest"
)

func TestMemStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
