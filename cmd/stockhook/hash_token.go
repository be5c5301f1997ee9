package main

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"stockhook/internal/auth"
)

func newHashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print a bcrypt hash for auth.token_hash",
		Long:  "Print a bcrypt hash of the token. The token is read from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("token is required")
				}
				token = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}
			return writePlain("%s\n", hash)
		},
	}
}
