package monitor

import (
	"net"
	"time"

	"github.com/nodewatch/nodewatch/pkg/errors"
)

// validateParams checks the daemon's construction parameters before any
// IO is performed: heartbeatInterval and failureTolerance must both be
// strictly positive.
func validateParams(heartbeatInterval time.Duration, failureTolerance int) error {
	if heartbeatInterval <= 0 {
		return errors.NewValidationError(
			"heartbeatIntervalMs must be strictly positive",
			map[string]interface{}{"heartbeatInterval": heartbeatInterval.String()},
		)
	}
	if failureTolerance <= 0 {
		return errors.NewValidationError(
			"failureTolerance must be strictly positive",
			map[string]interface{}{"failureTolerance": failureTolerance},
		)
	}
	return nil
}

// NodeSpec is the shape of one entry in an /add request payload.
type NodeSpec struct {
	Address    string `json:"address"`
	ReviveCmd  string `json:"reviveCmd"`
	ReviveArgs string `json:"reviveArgs"`
}

// validateNodeSpec enforces the /add payload contract: all three fields
// must be non-empty strings and Address must parse as host:port.
func validateNodeSpec(spec NodeSpec) error {
	if spec.Address == "" || spec.ReviveCmd == "" || spec.ReviveArgs == "" {
		return errors.NewValidationError(
			"address, reviveCmd, and reviveArgs must all be non-empty",
			map[string]interface{}{"address": spec.Address},
		)
	}

	if _, _, err := net.SplitHostPort(spec.Address); err != nil {
		return errors.NewValidationError(
			"address must be a valid host:port string",
			map[string]interface{}{"address": spec.Address},
		)
	}

	return nil
}
