package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// requireArgs accepts between min and max positional args; max < 0 means
// no upper bound.
func requireArgs(min, max int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min || (max >= 0 && len(args) > max) {
			return errors.New(message)
		}
		return nil
	}
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return requireArgs(count, count, message)
}

func requireAtLeastOneID(cmd *cobra.Command, args []string) error {
	return requireArgs(1, -1, "at least one record id is required")(cmd, args)
}
