package mongodoc_test

import (
	"testing"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/docstoretest"
	"github.com/dalemusser/influencerhub/internal/testutil"
)

func TestContract(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		return testutil.SetupMongoStore(t)
	})
}
