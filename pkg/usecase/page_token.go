package usecase

import (
	"encoding/base64"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000

	// listBatchSize is how many candidates are pulled from the store per
	// round while filtering search results in-process
	listBatchSize = 256
)

// pageToken is the decoded form of the opaque continuation token. It only
// carries the last returned key, so tokens are stateless: no server-side
// cursor exists that could leak or expire.
type pageToken struct {
	After string `json:"after"`
}

func encodePageToken(tok pageToken) string {
	raw, _ := json.Marshal(tok)
	return base64.URLEncoding.EncodeToString(raw)
}

func decodePageToken(s string) (pageToken, error) {
	var tok pageToken
	if s == "" {
		return tok, nil
	}

	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return tok, goerr.Wrap(err, "page token is not valid base64",
			goerr.T(apperr.ErrTagInvalidToken),
			goerr.TV(apperr.PageTokenKey, s))
	}

	if err := json.Unmarshal(raw, &tok); err != nil {
		return tok, goerr.Wrap(err, "page token payload is malformed",
			goerr.T(apperr.ErrTagInvalidToken),
			goerr.TV(apperr.PageTokenKey, s))
	}

	return tok, nil
}

// normalizeLimit applies the default and the hard cap to a requested page size
func normalizeLimit(maxResults int) (int, error) {
	switch {
	case maxResults < 0:
		return 0, goerr.New("max_results must be non-negative",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("max_results", maxResults))
	case maxResults == 0:
		return defaultPageSize, nil
	case maxResults > maxPageSize:
		return maxPageSize, nil
	default:
		return maxResults, nil
	}
}
