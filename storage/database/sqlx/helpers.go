package sqlxrepos

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// jsonb marshals v for a JSONB column.
func jsonb(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding JSONB")
	}
	return buf, nil
}

// unjsonb decodes a JSONB column into dst; empty columns leave dst untouched.
func unjsonb(buf []byte, dst interface{}) error {
	if len(buf) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(buf, dst), "decoding JSONB")
}

func getExec(repoExec core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repoExec
}
