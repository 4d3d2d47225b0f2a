package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hussein-Mazeh/shroombrella/auth"
	"github.com/Hussein-Mazeh/shroombrella/internal/config"
	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
)

const breachCheckTimeout = 5 * time.Second

// policyOptions builds the master password rules from the config.
func policyOptions(cfg *config.Config) auth.ValidateOptions {
	opts := auth.DefaultValidateOptions()
	opts.MinZXCVBNScore = cfg.MinPasswordScore
	return opts
}

// checkNewMaster applies the configured policy to a new master password.
// A breach lookup that cannot reach the service is logged and skipped.
func checkNewMaster(cfg *config.Config, log *logger.Logger, pw *secret.Buffer) error {
	if err := auth.ValidateMasterPassword(pw.Bytes(), policyOptions(cfg)); err != nil {
		if errors.Is(err, auth.ErrEmptyInput) {
			return userError{msg: "the master password cannot be empty"}
		}
		return userError{msg: fmt.Sprintf("password does not meet policy requirements: %v", err)}
	}
	if !cfg.BreachCheck {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), breachCheckTimeout)
	defer cancel()
	res, err := auth.CheckHIBP(ctx, pw.Bytes())
	if err != nil {
		log.Warn().Err(err).Msg("breach check unavailable")
		return nil
	}
	if res.Found {
		return userError{msg: fmt.Sprintf("%v (seen %d times); choose another", auth.ErrBreached, res.Count)}
	}
	return nil
}
