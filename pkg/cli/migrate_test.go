package cli

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := getIndexConfig("blobs")

	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("blobs")
	gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Indexes[0].Fields).Equal([]fireconf.IndexField{
		{Path: "Dir", Order: fireconf.OrderAscending},
		{Path: "Key", Order: fireconf.OrderAscending},
	})
}
