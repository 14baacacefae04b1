package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// page is the paginated list shape
type page[T any] struct {
	Results []T `json:"results"`
}

// DecodeList reads either a bare JSON array or a {"results": [...]} page. An empty body
// is an empty list.
func DecodeList[T any](body Body) ([]T, error) {
	switch body.kind {
	case BodyEmpty:
		return []T{}, nil
	case BodyText:
		return nil, ErrNotJSON
	}

	if bytes.HasPrefix(body.raw, []byte("[")) {
		var items []T
		if err := json.Unmarshal(body.raw, &items); err != nil {
			return nil, errors.Wrap(err, "[gateway.DecodeList] array")
		}
		return items, nil
	}

	var pg page[T]
	if err := json.Unmarshal(body.raw, &pg); err != nil {
		return nil, errors.Wrap(err, "[gateway.DecodeList] page")
	}
	if pg.Results == nil {
		return []T{}, nil
	}
	return pg.Results, nil
}
