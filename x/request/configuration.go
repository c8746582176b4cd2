package request

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const (
	// CancelAllow lets the creator cancel Completed and Canceled
	// requests. This is the default.
	CancelAllow = "allow"
	// CancelDeny rejects cancellation of Completed and Canceled
	// requests with ErrCannotCancel.
	CancelDeny = "deny"
)

const confPkg = "request"

// Configuration of the request extension.
type Configuration struct {
	// Owner is allowed to update the configuration.
	Owner custody.Address `json:"owner"`
	// FinalizedCancel is either "allow" or "deny". Empty means allow.
	FinalizedCancel string `json:"finalized_cancel"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if c.Owner != nil {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	switch c.FinalizedCancel {
	case "", CancelAllow, CancelDeny:
	default:
		return errors.Wrapf(errors.ErrInput, "unknown finalized cancel policy %q", c.FinalizedCancel)
	}
	return nil
}

func (c *Configuration) GetOwner() custody.Address {
	return c.Owner
}

// AllowFinalizedCancel returns true unless cancellation of finalized
// requests is denied.
func (c *Configuration) AllowFinalizedCancel() bool {
	return c.FinalizedCancel != CancelDeny
}

// LoadConfiguration returns the stored configuration, or the defaults if
// none was stored.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{}, nil
	default:
		return nil, err
	}
}
