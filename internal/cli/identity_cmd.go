package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Show or reset the client identifier",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored client identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			id, ok, err := e.identities().Peek()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("(none yet; one is created on first connect)")
				return nil
			}
			fmt.Println(id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the client identifier; the next connect starts a new session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.identities().Reset(); err != nil {
				return err
			}
			fmt.Println("Client identifier cleared")
			return nil
		},
	})

	return cmd
}
