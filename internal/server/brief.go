package server

import (
	"bytes"

	"github.com/bytedance/sonic"

	"github.com/tensorplex-labs/pridano/internal/core"
)

// parseBrief decodes body over the default brief so absent fields keep their
// defaults. An empty body yields the default brief.
func parseBrief(body []byte) (core.Brief, error) {
	brief := core.DefaultBrief()
	if len(bytes.TrimSpace(body)) == 0 {
		return brief, nil
	}
	if err := sonic.Unmarshal(body, &brief); err != nil {
		return core.Brief{}, err
	}
	return brief, nil
}
