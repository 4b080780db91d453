package memory_test

import (
	"testing"

	"github.com/kouellette/rcv/storage/memory"
	"github.com/kouellette/rcv/storage/storagetest"
)

func TestBackendConformsToStorageContract(t *testing.T) {
	storagetest.Backend(t, memory.New())
}
