package docstore_test

import (
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, docstore.NewMemory())
}
