package mail

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured mail providers in selection order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, d, err := loadDispatcher(cmd)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "strategy: %s\n\n", cfg.Mail.Strategy)
		fmt.Fprintln(w, "PROVIDER\tREADY\tBREAKER")
		for _, s := range d.Providers() {
			fmt.Fprintf(w, "%s\t%t\t%s\n", s.Name, s.Ready, s.Breaker)
		}
		return w.Flush()
	},
}
