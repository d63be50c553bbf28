package runtime

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Genesis file format
type Genesis struct {
	ChainID  string            `json:"chain_id"`
	AppState tokenswap.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "loading genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many programs with one function
func ChainInitializers(inits ...tokenswap.Initializer) tokenswap.Initializer {
	return chainInitializer(inits)
}

type chainInitializer []tokenswap.Initializer

// FromGenesis passes the options to all initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts tokenswap.Options, accounts tokenswap.AccountStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, accounts); err != nil {
			return err
		}
	}
	return nil
}
