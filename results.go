package custody

import (
	"strings"

	"github.com/tendermint/tendermint/libs/common"
)

// CallResult captures any immediate result of one dispatched call.
type CallResult struct {
	// Data is the opaque return payload of the call.
	Data []byte
	// Log is a human readable note on the execution.
	Log string
	// Tags enable the host to index this result.
	Tags []common.KVPair
}

// CombineResults merges the results of a call batch into one, joining
// the log messages and concatenating all tags.
func CombineResults(results []CallResult) CallResult {
	logs := make([]string, len(results))
	var tags []common.KVPair
	for i, r := range results {
		logs[i] = r.Log
		if len(r.Tags) > 0 {
			tags = append(tags, r.Tags...)
		}
	}
	return CallResult{
		Log:  strings.Join(logs, "\n"),
		Tags: tags,
	}
}
