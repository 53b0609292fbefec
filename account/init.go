package account

import (
	"encoding/hex"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto/bech32"
	"github.com/iov-one/custody/errors"
)

// Initializer fulfils the custody.Initializer interface to load data from
// the deployment options.
type Initializer struct{}

var _ custody.Initializer = (*Initializer)(nil)

// FromGenesis initializes the account state from the "account" options:
//
//	"account": {
//	  "name": "my-wallet",
//	  "threshold": 2,
//	  "signers": ["<hex or bech32>", ...],
//	  "code": "<hex>"
//	}
//
// The configuration must satisfy the registry invariants or deployment
// fails, a fresh account is never left in an unguarded state.
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf struct {
		Name      string   `json:"name"`
		Threshold int      `json:"threshold"`
		Signers   []string `json:"signers"`
		Code      string   `json:"code"`
	}
	if len(opts["account"]) == 0 {
		return nil
	}
	if err := opts.ReadOptions("account", &conf); err != nil {
		return err
	}

	signers := make([]custody.SignerID, len(conf.Signers))
	for i, s := range conf.Signers {
		id, err := decodeSignerString(s)
		if err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
		signers[i] = id
	}
	if err := validateConfiguration(conf.Threshold, len(signers)); err != nil {
		return err
	}

	reg := NewSignerRegistry()
	if err := reg.Add(db, signers, nil); err != nil {
		return err
	}
	if err := setThreshold(db, conf.Threshold); err != nil {
		return err
	}

	name := conf.Name
	if name == "" {
		name = DefaultName
	}
	if err := setName(db, name); err != nil {
		return err
	}

	if conf.Code != "" {
		raw, err := hex.DecodeString(conf.Code)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "code: %s", err)
		}
		if err := setActiveCode(db, custody.CodeID(raw)); err != nil {
			return err
		}
	}
	return nil
}

// decodeSignerString accepts a signer identifier as hex or as a bech32
// string with any human readable part, eg. "signer1...".
func decodeSignerString(s string) (custody.SignerID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		_, raw, err = bech32.Decode(s)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "neither hex nor bech32: %q", s)
		}
	}
	id := custody.SignerID(raw)
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return id, nil
}
