package cli

import (
	"fmt"

	"github.com/soyeahso/agentchat/internal/store"
	"github.com/soyeahso/agentchat/internal/theme"
	"github.com/spf13/cobra"
)

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color theme",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := theme.Resolve(e.prefs, theme.DetectTerminal)
			if err != nil {
				return err
			}
			_, stored, _ := e.prefs.Get(store.KeyTheme)
			source := "terminal"
			if stored {
				source = "saved"
			}
			fmt.Printf("%s (%s)\n", t, source)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <dark|light>",
		Short:     "Save a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.Dark), string(theme.Light)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := theme.Parse(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := theme.Set(e.prefs, t); err != nil {
				return err
			}
			fmt.Printf("Theme set to %s\n", t)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := theme.Toggle(e.prefs, theme.DetectTerminal)
			if err != nil {
				return err
			}
			fmt.Printf("Theme set to %s\n", t)
			return nil
		},
	})

	return cmd
}
