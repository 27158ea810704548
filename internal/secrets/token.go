package secrets

import (
	"errors"
	"os"
	"strings"
)

// APITokenName is the store entry holding the analysis backend token.
const APITokenName = "analysis-api"

// ResolveToken picks the API token: the env var named by envName first, then
// the store, then fallback (usually the config file value).
func ResolveToken(envName string, store *Store, fallback string) (string, error) {
	if envName != "" {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			return v, nil
		}
	}
	if store != nil {
		tok, err := store.FetchToken(APITokenName)
		switch {
		case err == nil && tok != "":
			return tok, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return strings.TrimSpace(fallback), err
		}
	}
	return strings.TrimSpace(fallback), nil
}
